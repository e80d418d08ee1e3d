package viz

import "time"

// Countdown is the time left until a target, split into display units.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Total   time.Duration
	Expired bool
}

// Remaining returns the time from now until target, clamped at zero.
func Remaining(now, target time.Time) Countdown {
	d := target.Sub(now)
	if d <= 0 {
		return Countdown{Expired: true}
	}
	secs := int64(d / time.Second)
	return Countdown{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
		Seconds: int(secs % 60),
		Total:   d,
	}
}
