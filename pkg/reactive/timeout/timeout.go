package timeout

import (
	"time"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
)

// Info describes the stream at the moment a deadline fired.
type Info[T any] struct {
	// Meta is Config.Meta.
	Meta any

	// LastValue is the most recent value forwarded, the zero value if Seen is 0.
	LastValue T

	// Seen is the number of values forwarded before the deadline.
	Seen int
}

// Config configures a timeout monitor. At least one of First, FirstAt or
// Each must be set.
type Config[T any] struct {
	// First is the deadline for the first value, relative to subscription.
	First time.Duration

	// FirstAt is the deadline for the first value as an absolute time.
	// It cannot be combined with First.
	FirstAt time.Time

	// Each is the deadline for every value, relative to the previous one.
	// Without First or FirstAt it also bounds the wait for the first value.
	Each time.Duration

	// With returns the stream that replaces the source once a deadline
	// fires. Nil means failing with a *errors.TimeoutError.
	With func(Info[T]) observable.Observable[T]

	// Scheduler drives the deadlines. Nil means scheduler.Real.
	Scheduler scheduler.Scheduler

	// Meta is passed to With and carried by the default TimeoutError.
	Meta any

	Options observable.Options
}

// DefaultConfig fails a stream that stays silent for 30 seconds.
func DefaultConfig[T any]() Config[T] {
	return Config[T]{Each: 30 * time.Second}
}

func (c Config[T]) validate() error {
	if err := validation.ValidateNonNegativeDuration("timeout", "first", c.First); err != nil {
		return err
	}
	if err := validation.ValidateNonNegativeDuration("timeout", "each", c.Each); err != nil {
		return err
	}
	if c.First > 0 && !c.FirstAt.IsZero() {
		return rferrors.NewValidationError("timeout", "firstAt", c.FirstAt, "cannot be combined with first").
			WithHint("set either a relative or an absolute first deadline")
	}
	if c.First == 0 && c.FirstAt.IsZero() && c.Each == 0 {
		return rferrors.NewValidationError("timeout", "each", c.Each, "no deadline configured").
			WithHint("set first, firstAt or each")
	}
	return nil
}

// Each fails source with a *errors.TimeoutError if it goes d without
// emitting. An invalid d is reported as the stream's error on subscribe.
func Each[T any](source observable.Observable[T], d time.Duration, sched scheduler.Scheduler) observable.Observable[T] {
	op, err := New(source, Config[T]{Each: d, Scheduler: sched})
	if err != nil {
		return observable.Throw[T](err)
	}
	return op
}

// With switches to fallback if source goes d without emitting.
func With[T any](source observable.Observable[T], d time.Duration, fallback observable.Observable[T], sched scheduler.Scheduler) observable.Observable[T] {
	op, err := New(source, Config[T]{
		Each:      d,
		Scheduler: sched,
		With:      func(Info[T]) observable.Observable[T] { return fallback },
	})
	if err != nil {
		return observable.Throw[T](err)
	}
	return op
}

// New mirrors source until a deadline passes without a value, then
// unsubscribes from source and continues with the stream returned by
// cfg.With. Values, errors and completion of source pass through
// unchanged. It returns a *errors.ValidationError for an invalid
// configuration.
func New[T any](source observable.Observable[T], cfg Config[T]) (observable.Observable[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sched := scheduler.OrReal(cfg.Scheduler)

	return func(out *observable.Sink[T]) {
		m := &monitor[T]{
			cfg:   cfg,
			sched: sched,
			out:   out,
			log:   cfg.Options.Log("timeout"),
			rec:   cfg.Options.Recorder("timeout"),
		}
		release := m.rec.Subscribed()
		out.AddTeardown(func() error {
			release()
			return nil
		})
		m.do(func() { m.start(source) })
	}, nil
}
