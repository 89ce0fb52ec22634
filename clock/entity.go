package clock

import "time"

type NowFunc func() time.Time

type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

func ParseTime(nowString string) time.Time {
	now, _ := time.Parse(time.RFC3339, nowString)
	return now
}
