package timeout

import (
	"fmt"
	"log/slog"
	"time"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/metrics"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// monitor is the state of one subscription. It moves from armed to either
// fired or done; all fields are owned by loop.
type monitor[T any] struct {
	loop  observable.Serial
	cfg   Config[T]
	sched scheduler.Scheduler
	out   *observable.Sink[T]
	log   *slog.Logger
	rec   *metrics.Recorder

	upstream   *subscription.Subscription
	deadline   *subscription.Subscription
	generation uint64
	lastValue  T
	seen       int
	fired      bool
}

// do runs fn on the loop while the monitor is still mirroring the source.
func (m *monitor[T]) do(fn func()) {
	m.loop.Do(func() {
		if m.out.Active() && !m.fired {
			fn()
		}
	})
}

func (m *monitor[T]) start(source observable.Observable[T]) {
	m.upstream = source.SubscribeWithin(m.out.Subscription, observable.ObserverFuncs[T]{
		Next:     func(v T) { m.do(func() { m.onNext(v) }) },
		Error:    func(err error) { m.do(func() { m.onError(err) }) },
		Complete: func() { m.do(m.onComplete) },
	})

	// Values the source emitted synchronously are queued behind this call
	// and will cancel the first deadline as they arrive.
	switch {
	case m.cfg.First > 0:
		m.arm(m.cfg.First)
	case !m.cfg.FirstAt.IsZero():
		m.arm(m.cfg.FirstAt.Sub(m.sched.Now()))
	default:
		m.arm(m.cfg.Each)
	}
}

func (m *monitor[T]) onNext(v T) {
	m.cancel()
	m.lastValue = v
	m.seen++
	m.out.Next(v)
	if m.cfg.Each > 0 && m.out.Active() {
		m.arm(m.cfg.Each)
	}
}

func (m *monitor[T]) onError(err error) {
	m.cancel()
	m.rec.Error()
	m.log.Debug("source failed", slog.Int("seen", m.seen), slog.Any("err", err))
	m.out.Error(err)
}

func (m *monitor[T]) onComplete() {
	m.cancel()
	var zero T
	m.lastValue = zero
	m.out.Complete()
}

// arm replaces the pending deadline with one d from now.
func (m *monitor[T]) arm(d time.Duration) {
	m.cancel()
	gen := m.generation
	m.deadline = m.sched.After(d, func() {
		m.do(func() {
			if gen == m.generation {
				m.fire()
			}
		})
	})
	m.out.Add(m.deadline)
}

// cancel drops the pending deadline. Bumping the generation also disarms a
// callback that is already queued behind the current event.
func (m *monitor[T]) cancel() {
	m.generation++
	if m.deadline == nil {
		return
	}
	m.out.Remove(m.deadline)
	_ = m.deadline.Unsubscribe()
	m.deadline = nil
}

func (m *monitor[T]) fire() {
	m.fired = true
	m.cancel()
	_ = m.upstream.Unsubscribe()

	m.rec.TimeoutFired()
	m.log.Debug("deadline fired", slog.Int("seen", m.seen))

	info := Info[T]{Meta: m.cfg.Meta, LastValue: m.lastValue, Seen: m.seen}
	replacement := m.fallback(info)
	if replacement == nil {
		m.rec.Error()
		m.out.Error(rferrors.NewOperationError("timeout", "With", rferrors.ErrInvalidConfiguration).
			WithContext(fmt.Sprintf("fallback returned nil after %d value(s)", m.seen)))
		return
	}
	replacement(m.out)
}

func (m *monitor[T]) fallback(info Info[T]) observable.Observable[T] {
	if m.cfg.With != nil {
		return m.cfg.With(info)
	}
	err := &rferrors.TimeoutError{Meta: info.Meta, Seen: info.Seen}
	if info.Seen > 0 {
		err.LastValue = info.LastValue
	}
	return observable.Throw[T](err)
}
