package clock

import "time"

type SystemClock struct {
}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (m *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (m *SystemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
