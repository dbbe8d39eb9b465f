/*
Package scheduler provides the injectable clock used by rxflow's time-aware
operators (time-based buffering, timeouts, delayed repeat).

A Scheduler offers two operations: Now, and After, which schedules a callback
and returns a *subscription.Subscription that cancels it. Operators add the
returned handle to their own subscription, so cancelling an operator cancels
every pending timer it owns.

Two implementations are provided:

  - FromClock adapts a github.com/zoobzio/clockz Clock. Real, the default
    used when a configuration leaves its Scheduler nil, wraps
    clockz.RealClock.
  - Virtual is a deterministic scheduler for tests. Time moves only when
    Advance is called and due callbacks run synchronously, in order, on the
    caller's goroutine:

	sched := scheduler.NewVirtual(time.Time{})
	sched.After(100*time.Millisecond, func() { fmt.Println("fired") })
	sched.Advance(99 * time.Millisecond) // nothing
	sched.Advance(time.Millisecond)      // prints "fired"
*/
package scheduler
