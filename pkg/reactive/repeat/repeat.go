package repeat

import (
	"math"
	"time"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
)

// Unbounded repeats a source until it fails or the output is cancelled.
const Unbounded = math.MaxInt

// Config configures a repeat controller.
type Config struct {
	// Count is the total number of subscriptions to the source, the first
	// one included. Unlike most zero values here, a zero Count means zero
	// attempts: the output completes without subscribing to the source.
	// Start from DefaultConfig, whose Count is Unbounded, to repeat forever.
	Count int

	// Delay is a fixed wait between a completion and the next subscription.
	// Zero resubscribes immediately.
	Delay time.Duration

	// DelayFunc returns the stream to wait on after attempt completed
	// subscriptions; its first value triggers the next subscription and its
	// completion without a value ends the output. It cannot be combined
	// with Delay.
	DelayFunc func(attempt int) observable.Notifier

	// Scheduler drives Delay. Nil means scheduler.Real.
	Scheduler scheduler.Scheduler

	Options observable.Options
}

// DefaultConfig repeats forever without delay.
func DefaultConfig() Config {
	return Config{Count: Unbounded}
}

func (c Config) validate() error {
	if err := validation.ValidateNonNegativeDuration("repeat", "delay", c.Delay); err != nil {
		return err
	}
	if c.Delay > 0 && c.DelayFunc != nil {
		return rferrors.NewValidationError("repeat", "delayFunc", "set", "cannot be combined with delay").
			WithHint("use either a fixed delay or a delay function")
	}
	return nil
}

// Times subscribes to source count times in a row, forwarding every value,
// and completes after the last completion.
func Times[T any](source observable.Observable[T], count int) observable.Observable[T] {
	op, err := New(source, Config{Count: count})
	if err != nil {
		return observable.Throw[T](err)
	}
	return op
}

// Delayed is Times with a fixed wait between subscriptions. A negative delay
// is reported as the stream's error on subscribe.
func Delayed[T any](source observable.Observable[T], count int, delay time.Duration, sched scheduler.Scheduler) observable.Observable[T] {
	op, err := New(source, Config{Count: count, Delay: delay, Scheduler: sched})
	if err != nil {
		return observable.Throw[T](err)
	}
	return op
}

// New resubscribes to source every time it completes, up to cfg.Count
// subscriptions, optionally waiting between them. Values pass through
// unchanged. The first error from the source or a delay stream ends the
// output and stops any further attempt. It returns a
// *errors.ValidationError for an invalid configuration.
func New[T any](source observable.Observable[T], cfg Config) (observable.Observable[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Count <= 0 {
		return observable.Empty[T](), nil
	}
	sched := scheduler.OrReal(cfg.Scheduler)

	return func(out *observable.Sink[T]) {
		c := &controller[T]{
			source: source,
			cfg:    cfg,
			sched:  sched,
			out:    out,
			log:    cfg.Options.Log("repeat"),
			rec:    cfg.Options.Recorder("repeat"),
		}
		release := c.rec.Subscribed()
		out.AddTeardown(func() error {
			release()
			return nil
		})
		c.subscribe()
	}, nil
}
