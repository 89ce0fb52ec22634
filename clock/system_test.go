package clock_test

import (
	"sloverify/clock"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("System Clock", func() {
	sut := systemClockSUT{}

	It("should sleep for given time", func() {
		sut.ForSystemClock()
		now := sut.Now()
		afterSleep := sut.Sleep()
		Expect(afterSleep.After(now)).To(BeTrue())
	})

	It("should report time in UTC", func() {
		sut.ForSystemClock()
		Expect(sut.Now().Location()).To(Equal(time.UTC))
	})
})

type systemClockSUT struct {
	clock *clock.SystemClock
}

func (s *systemClockSUT) ForSystemClock() {
	s.clock = clock.NewSystemClock()
}

func (s *systemClockSUT) Sleep() time.Time {
	s.clock.Sleep(1 * time.Millisecond)
	return s.clock.Now()
}

func (s *systemClockSUT) Now() time.Time {
	return s.clock.Now()
}
