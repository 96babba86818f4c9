package controllers

import (
	"time"

	"fyne.io/fyne/v2"
)

// Scheduler arms one-shot deferred callbacks on the UI goroutine.
type Scheduler interface {
	After(delay time.Duration, fn func())
}

// UIScheduler waits at least delay, then hands fn to the fyne event loop.
// Callbacks never overlap because they all run on the UI goroutine.
type UIScheduler struct{}

func (UIScheduler) After(delay time.Duration, fn func()) {
	time.AfterFunc(delay, func() {
		fyne.Do(fn)
	})
}
