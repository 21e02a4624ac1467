package game

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and one-shot delayed callbacks.
// Callbacks may run on another goroutine.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall clock backed by time.AfterFunc.
var SystemClock Clock = realClock{}
