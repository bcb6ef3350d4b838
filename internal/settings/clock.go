package settings

import "time"

// Timer is the subset of *time.Timer used for debouncing.
type Timer interface {
	Stop() bool
}

// Clock creates debounce timers. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
