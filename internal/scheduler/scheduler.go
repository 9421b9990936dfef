// Package scheduler abstracts the frame callback and timers the engine runs on.
//
// The engine never touches wall-clock primitives directly. Production code
// uses [Loop], which turns expirations into Bubble Tea messages so every
// callback runs on the program's update goroutine. Tests use [Manual], which
// only moves when told to.
package scheduler

import "time"

// Handle identifies a pending frame request or timer. The zero Handle is
// never issued, so it can mean "nothing scheduled".
type Handle uint64

// Scheduler is the minimal timing contract of the engine.
type Scheduler interface {
	RequestFrame(cb func(now time.Time)) Handle
	CancelFrame(h Handle)
	SetTimer(d time.Duration, cb func()) Handle
	ClearTimer(h Handle)
	Now() time.Time
}

// FrameInterval converts a frame rate into the delay between frames.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
