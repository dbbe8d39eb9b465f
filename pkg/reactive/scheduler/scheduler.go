package scheduler

import (
	"time"

	"github.com/zoobzio/clockz"

	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// Scheduler is the clock every time-aware operator is driven by.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// After runs fn once d has elapsed. Unsubscribing the returned handle
	// cancels fn if it has not started yet. A non-positive d runs fn as soon
	// as the scheduler allows, never synchronously inside After.
	After(d time.Duration, fn func()) *subscription.Subscription
}

// Real is the wall-clock scheduler.
var Real Scheduler = FromClock(clockz.RealClock)

// FromClock adapts a clockz.Clock, such as clockz.RealClock or a
// clockz fake clock, into a Scheduler.
func FromClock(clock clockz.Clock) Scheduler {
	return &clockScheduler{clock: clock}
}

type clockScheduler struct {
	clock clockz.Clock
}

func (c *clockScheduler) Now() time.Time {
	return c.clock.Now()
}

func (c *clockScheduler) After(d time.Duration, fn func()) *subscription.Subscription {
	if d < 0 {
		d = 0
	}
	timer := c.clock.AfterFunc(d, fn)
	return subscription.New(func() error {
		timer.Stop()
		return nil
	})
}

// OrReal returns s, or Real when s is nil.
func OrReal(s Scheduler) Scheduler {
	if s == nil {
		return Real
	}
	return s
}
