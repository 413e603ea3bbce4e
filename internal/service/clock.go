package service

import "time"

// NowFunc supplies the current time to decision services. Tests substitute a
// fixed clock; production uses DefaultNow.
type NowFunc func() time.Time

func DefaultNow() time.Time {
	return time.Now()
}
