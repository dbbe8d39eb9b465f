package repeat

import (
	"fmt"
	"log/slog"
	"sync"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/metrics"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// controller drives the attempts of one subscription. At most one attempt
// or one delay is live at a time.
type controller[T any] struct {
	source observable.Observable[T]
	cfg    Config
	sched  scheduler.Scheduler
	out    *observable.Sink[T]
	log    *slog.Logger
	rec    *metrics.Recorder

	mu        sync.Mutex
	completed int
	current   *subscription.Subscription
	delay     *subscription.Subscription

	// subscribing is set while the source's producer runs. A completion
	// arriving then sets pendingRestart instead of subscribing again from
	// inside the producer; subscribe picks the flag up once it returns.
	subscribing    bool
	pendingRestart bool
}

func (c *controller[T]) subscribe() {
	for {
		c.mu.Lock()
		if !c.out.Active() {
			c.mu.Unlock()
			return
		}
		prev := c.current
		c.current = nil
		c.subscribing = true
		c.pendingRestart = false
		c.mu.Unlock()

		if prev != nil {
			_ = prev.Unsubscribe()
		}
		c.rec.RepeatAttempt()

		sub := c.source.SubscribeWithin(c.out.Subscription, observable.ObserverFuncs[T]{
			Next:     c.out.Next,
			Error:    c.fail,
			Complete: c.onComplete,
		})

		c.mu.Lock()
		c.subscribing = false
		c.current = sub
		restart := c.pendingRestart
		c.pendingRestart = false
		c.mu.Unlock()

		if !restart {
			return
		}
	}
}

// restart starts the next attempt, or defers it to the subscribe call that
// is still running.
func (c *controller[T]) restart() {
	c.mu.Lock()
	if c.subscribing {
		c.pendingRestart = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.subscribe()
}

func (c *controller[T]) onComplete() {
	c.mu.Lock()
	c.completed++
	attempt := c.completed
	c.mu.Unlock()

	c.log.Debug("attempt completed", slog.Int("attempt", attempt))
	if attempt >= c.cfg.Count {
		c.out.Complete()
		return
	}
	if c.cfg.Delay == 0 && c.cfg.DelayFunc == nil {
		c.restart()
		return
	}
	c.wait(attempt)
}

// wait subscribes to the delay stream for attempt, replacing any previous
// one, and restarts on its first value.
func (c *controller[T]) wait(attempt int) {
	var notifier observable.Notifier
	if c.cfg.DelayFunc != nil {
		notifier = c.cfg.DelayFunc(attempt)
	} else {
		notifier = observable.ToNotifier(observable.Timer(c.sched, c.cfg.Delay))
	}
	if notifier == nil {
		c.fail(rferrors.NewOperationError("repeat", "DelayFunc", rferrors.ErrInvalidConfiguration).
			WithContext(fmt.Sprintf("nil delay stream for attempt %d", attempt)))
		return
	}

	var delay *observable.Sink[any]
	delay = observable.NewSink[any](observable.ObserverFuncs[any]{
		Next: func(any) {
			_ = delay.Unsubscribe()
			c.restart()
		},
		Error: c.fail,
		Complete: func() {
			c.log.Debug("delay stream completed without a value", slog.Int("attempt", attempt))
			c.out.Complete()
		},
	})

	c.mu.Lock()
	prev := c.delay
	c.delay = delay.Subscription
	c.mu.Unlock()
	if prev != nil {
		c.out.Remove(prev)
		_ = prev.Unsubscribe()
	}

	c.out.Add(delay.Subscription)
	notifier(delay)
}

func (c *controller[T]) fail(err error) {
	c.rec.Error()
	c.log.Debug("repeat failed", slog.Any("err", err))
	c.out.Error(err)
}
