package buffer

import (
	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
)

// NotifiedConfig configures buffering on a shared notifier.
type NotifiedConfig struct {
	// Notifier closes the open buffer and opens the next with every value.
	// Its completion is ignored.
	Notifier observable.Notifier

	Options observable.Options
}

// Notified keeps exactly one buffer open and emits it every time notifier
// emits. Source completion emits the last buffer.
func Notified[T any](source observable.Observable[T], notifier observable.Notifier) observable.Observable[[]T] {
	op, err := NewNotified(source, NotifiedConfig{Notifier: notifier})
	if err != nil {
		return observable.Throw[[]T](err)
	}
	return op
}

// NewNotified is Notified with full configuration.
func NewNotified[T any](source observable.Observable[T], cfg NotifiedConfig) (observable.Observable[[]T], error) {
	if cfg.Notifier == nil {
		return nil, validation.Missing("buffer", "notifier")
	}

	return func(out *observable.Sink[[]T]) {
		set := newBufferSet(out, cfg.Options, "buffer_notified")

		set.do(func() {
			current := set.open(nil)
			set.subscribe(source, set.push)
			cfg.Notifier.SubscribeWithin(out.Subscription, observable.ObserverFuncs[any]{
				Next: func(any) {
					set.do(func() {
						set.close(current)
						if out.Active() {
							current = set.open(nil)
						}
					})
				},
				Error: func(err error) { set.do(func() { set.fail(err) }) },
			})
		})
	}, nil
}

// WhenConfig configures buffering on a sequence of closing notifiers.
type WhenConfig struct {
	// Closing returns the notifier for each new buffer. The notifier's first
	// value closes the buffer and opens the next one with a fresh notifier.
	// Its completion is ignored.
	Closing func() observable.Notifier

	Options observable.Options
}

// When keeps exactly one buffer open, closing it when the notifier made for
// it emits, then immediately opening the next.
func When[T any](source observable.Observable[T], closing func() observable.Notifier) observable.Observable[[]T] {
	op, err := NewWhen(source, WhenConfig{Closing: closing})
	if err != nil {
		return observable.Throw[[]T](err)
	}
	return op
}

// NewWhen is When with full configuration.
func NewWhen[T any](source observable.Observable[T], cfg WhenConfig) (observable.Observable[[]T], error) {
	if cfg.Closing == nil {
		return nil, validation.Missing("buffer", "closing")
	}

	return func(out *observable.Sink[[]T]) {
		set := newBufferSet(out, cfg.Options, "buffer_when")

		var openWindow func()
		openWindow = func() {
			e := set.open(nil)
			notifier := cfg.Closing()
			if notifier == nil {
				set.fail(rferrors.NewOperationError("buffer", "When", rferrors.ErrInvalidConfiguration).
					WithContext("closing selector returned nil"))
				return
			}
			e.closing = notifier.SubscribeWithin(out.Subscription, observable.ObserverFuncs[any]{
				Next: func(any) {
					set.do(func() {
						if set.close(e) && out.Active() {
							openWindow()
						}
					})
				},
				Error: func(err error) { set.do(func() { set.fail(err) }) },
			})
		}

		set.do(func() {
			openWindow()
			if out.Active() {
				set.subscribe(source, set.push)
			}
		})
	}, nil
}
