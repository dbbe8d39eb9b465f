package observable

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/vnykmshr/rxflow/pkg/metrics"
	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// Observer consumes the three events of a stream.
type Observer[T any] interface {
	// OnNext receives a value.
	OnNext(value T)

	// OnError receives the terminal error.
	OnError(err error)

	// OnComplete signals successful termination.
	OnComplete()
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are no-ops.
type ObserverFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// OnNext calls Next if set.
func (f ObserverFuncs[T]) OnNext(value T) {
	if f.Next != nil {
		f.Next(value)
	}
}

// OnError calls Error if set.
func (f ObserverFuncs[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// OnComplete calls Complete if set.
func (f ObserverFuncs[T]) OnComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

// Sink is the producer side of a subscription. It forwards events to an
// Observer and guarantees that nothing is delivered after a terminal event
// or after the subscription is cancelled.
//
// A Sink unsubscribes itself before it delivers Error or Complete, which
// releases every resource the producer attached to it.
type Sink[T any] struct {
	*subscription.Subscription

	observer Observer[T]
	stopped  atomic.Bool
}

// NewSink wraps observer in an open Sink.
func NewSink[T any](observer Observer[T]) *Sink[T] {
	s := &Sink[T]{
		Subscription: subscription.New(nil),
		observer:     observer,
	}
	s.AddTeardown(func() error {
		s.stopped.Store(true)
		return nil
	})
	return s
}

// Active reports whether the sink still accepts events. Producers emitting
// in a loop should stop once it returns false.
func (s *Sink[T]) Active() bool {
	return !s.stopped.Load()
}

// Next delivers value unless the sink is stopped.
func (s *Sink[T]) Next(value T) {
	if s.stopped.Load() {
		return
	}
	s.observer.OnNext(value)
}

// Error delivers err as the terminal event. Only the first terminal event
// is delivered, and every resource attached to the sink is released before
// the observer sees it.
func (s *Sink[T]) Error(err error) {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	_ = s.Unsubscribe()
	s.observer.OnError(err)
}

// Complete delivers completion as the terminal event. Like Error, it
// releases the sink's resources first.
func (s *Sink[T]) Complete() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	_ = s.Unsubscribe()
	s.observer.OnComplete()
}

// Observable is a cold stream. Calling it with a Sink starts the producer,
// which emits into the sink and attaches its resources to it.
type Observable[T any] func(sink *Sink[T])

// Subscribe starts the stream and returns the handle that cancels it.
func (o Observable[T]) Subscribe(observer Observer[T]) *subscription.Subscription {
	sink := NewSink(observer)
	o(sink)
	return sink.Subscription
}

// SubscribeWithin starts the stream as a child of parent. The child is
// attached before the producer runs, so cancelling parent stops even a
// producer that emits synchronously.
func (o Observable[T]) SubscribeWithin(parent *subscription.Subscription, observer Observer[T]) *subscription.Subscription {
	sink := NewSink(observer)
	parent.Add(sink.Subscription)
	o(sink)
	return sink.Subscription
}

// Options carries the ambient collaborators shared by every operator.
type Options struct {
	// Name identifies the operator instance in logs and metrics.
	Name string

	// Logger receives debug-level lifecycle events. Nil discards them.
	Logger *slog.Logger

	// Metrics records operator activity. Nil disables metrics.
	Metrics *metrics.Registry
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Log returns a logger tagged with the operator kind and instance name.
func (o Options) Log(operator string) *slog.Logger {
	logger := o.Logger
	if logger == nil {
		logger = discard
	}
	name := o.Name
	if name == "" {
		name = operator
	}
	return logger.With(slog.String("operator", operator), slog.String("name", name))
}

// Recorder returns the metrics recorder for the operator, nil when metrics
// are disabled.
func (o Options) Recorder(operator string) *metrics.Recorder {
	return metrics.NewRecorder(o.Metrics, operator, o.Name)
}
