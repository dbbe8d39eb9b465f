package observable

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// Notifier is a stream whose values only matter as signals.
type Notifier = Observable[any]

// Create builds an Observable from a producer function.
func Create[T any](produce func(sink *Sink[T])) Observable[T] {
	return Observable[T](produce)
}

// Of emits values in order, then completes.
func Of[T any](values ...T) Observable[T] {
	return FromSlice(values)
}

// FromSlice emits the elements of values in order, then completes.
func FromSlice[T any](values []T) Observable[T] {
	return func(sink *Sink[T]) {
		for _, v := range values {
			if !sink.Active() {
				return
			}
			sink.Next(v)
		}
		sink.Complete()
	}
}

// Empty completes immediately.
func Empty[T any]() Observable[T] {
	return func(sink *Sink[T]) {
		sink.Complete()
	}
}

// Throw fails immediately with err.
func Throw[T any](err error) Observable[T] {
	return func(sink *Sink[T]) {
		sink.Error(err)
	}
}

// Never emits nothing and never terminates.
func Never[T any]() Observable[T] {
	return func(*Sink[T]) {}
}

// Defer calls factory on every subscription and subscribes to its result.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return func(sink *Sink[T]) {
		factory()(sink)
	}
}

// FromChannel emits every value received from ch and completes when ch is
// closed. Cancelling the subscription stops the reading goroutine.
func FromChannel[T any](ch <-chan T) Observable[T] {
	return func(sink *Sink[T]) {
		done := make(chan struct{})
		sink.AddTeardown(func() error {
			close(done)
			return nil
		})
		go func() {
			for {
				select {
				case <-done:
					return
				case v, ok := <-ch:
					if !ok {
						sink.Complete()
						return
					}
					sink.Next(v)
				}
			}
		}()
	}
}

// Timer emits the scheduler time once d has elapsed, then completes.
func Timer(sched scheduler.Scheduler, d time.Duration) Observable[time.Time] {
	sched = scheduler.OrReal(sched)
	return func(sink *Sink[time.Time]) {
		sink.Add(sched.After(d, func() {
			sink.Next(sched.Now())
			sink.Complete()
		}))
	}
}

// Interval emits 0, 1, 2, ... every period. It never completes.
func Interval(sched scheduler.Scheduler, period time.Duration) Observable[int] {
	sched = scheduler.OrReal(sched)
	return func(sink *Sink[int]) {
		chain := &timerChain{sched: sched, owner: sink.Subscription}
		n := 0
		var tick func()
		tick = func() {
			if !sink.Active() {
				return
			}
			sink.Next(n)
			n++
			chain.schedule(period, tick)
		}
		chain.schedule(period, tick)
	}
}

// Cron emits the scheduled time at every activation of a standard cron
// expression ("*/5 * * * *", "@hourly", ...), measured on sched. It never
// completes unless the schedule has no further activations.
func Cron(sched scheduler.Scheduler, expr string) (Observable[time.Time], error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, rferrors.NewValidationError("observable", "cron", expr, err.Error()).
			WithHint("use a five-field expression or a descriptor such as @hourly")
	}

	sched = scheduler.OrReal(sched)
	return func(sink *Sink[time.Time]) {
		chain := &timerChain{sched: sched, owner: sink.Subscription}
		var arm func(from time.Time)
		arm = func(from time.Time) {
			next := schedule.Next(from)
			if next.IsZero() {
				sink.Complete()
				return
			}
			chain.schedule(next.Sub(sched.Now()), func() {
				if !sink.Active() {
					return
				}
				sink.Next(next)
				arm(next)
			})
		}
		arm(sched.Now())
	}, nil
}

// timerChain keeps the one pending timer of a self-rescheduling source
// attached to its owner. A callback never starts before schedule has
// recorded its handle.
type timerChain struct {
	mu      sync.Mutex
	sched   scheduler.Scheduler
	owner   *subscription.Subscription
	pending *subscription.Subscription
}

func (c *timerChain) schedule(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.owner.Remove(c.pending)
	c.pending = c.sched.After(d, func() {
		c.mu.Lock()
		c.mu.Unlock() //nolint:staticcheck // wait for schedule to return
		fn()
	})
	c.owner.Add(c.pending)
}

// ToNotifier discards the type of o's values so it can be used as a
// boundary signal.
func ToNotifier[T any](o Observable[T]) Notifier {
	return func(sink *Sink[any]) {
		o.SubscribeWithin(sink.Subscription, ObserverFuncs[T]{
			Next:     func(v T) { sink.Next(v) },
			Error:    sink.Error,
			Complete: sink.Complete,
		})
	}
}
