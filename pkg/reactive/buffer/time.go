package buffer

import (
	"time"

	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// TimeConfig configures time-based buffering.
type TimeConfig struct {
	// Span is how long each buffer stays open. Must be positive.
	Span time.Duration

	// Interval is the time between buffer starts. Zero or negative frames
	// buffers back to back: the next opens the moment the previous closes.
	// A positive Interval opens a buffer every Interval, so buffers overlap
	// when it is shorter than Span and leave gaps when it is longer.
	Interval time.Duration

	// MaxSize closes a buffer early once it holds this many values.
	// Zero means unbounded.
	MaxSize int

	// Scheduler drives the buffer timers. Nil means scheduler.Real.
	Scheduler scheduler.Scheduler

	Options observable.Options
}

// DefaultTimeConfig returns back-to-back one-second buffers of unbounded size.
func DefaultTimeConfig() TimeConfig {
	return TimeConfig{Span: time.Second}
}

func (c TimeConfig) validate() error {
	if err := validation.ValidatePositiveDuration("buffer", "span", c.Span); err != nil {
		return err
	}
	return validation.ValidateNonNegative("buffer", "maxSize", c.MaxSize)
}

// Time buffers source into back-to-back windows of span. An invalid span is
// reported as the stream's error on subscribe.
func Time[T any](source observable.Observable[T], span time.Duration, sched scheduler.Scheduler) observable.Observable[[]T] {
	op, err := NewTime(source, TimeConfig{Span: span, Scheduler: sched})
	if err != nil {
		return observable.Throw[[]T](err)
	}
	return op
}

// NewTime is Time with full configuration. It returns a
// *errors.ValidationError for an invalid configuration.
//
// The first buffer opens on subscribe. Each buffer closes Span after it
// opened, or earlier once it reaches MaxSize; in back-to-back mode a closing
// buffer is immediately replaced. Every value goes to every open buffer.
// When the source completes the open buffers are emitted oldest first.
func NewTime[T any](source observable.Observable[T], cfg TimeConfig) (observable.Observable[[]T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sched := scheduler.OrReal(cfg.Scheduler)
	periodic := cfg.Interval > 0

	return func(out *observable.Sink[[]T]) {
		set := newBufferSet(out, cfg.Options, "buffer_time")

		var openWindow func()
		closeWindow := func(e *entry[T]) {
			if set.close(e) && !periodic {
				openWindow()
			}
		}
		openWindow = func() {
			e := set.open(nil)
			set.attach(e, sched.After(cfg.Span, func() {
				set.do(func() { closeWindow(e) })
			}))
		}

		var (
			opener   *subscription.Subscription
			schedule func()
		)
		schedule = func() {
			out.Remove(opener)
			opener = sched.After(cfg.Interval, func() {
				set.do(func() {
					openWindow()
					schedule()
				})
			})
			out.Add(opener)
		}

		set.do(func() {
			openWindow()
			if periodic {
				schedule()
			}
			set.subscribe(source, func(v T) {
				set.push(v)
				if cfg.MaxSize == 0 {
					return
				}
				// Back to back there is only ever one buffer open.
				if len(set.closeFull(cfg.MaxSize)) > 0 && !periodic && out.Active() {
					openWindow()
				}
			})
		})
	}, nil
}
