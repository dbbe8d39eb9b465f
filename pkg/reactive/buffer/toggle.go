package buffer

import (
	"fmt"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/common/validation"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
)

// ToggleConfig configures signal-driven buffering.
type ToggleConfig[T, O any] struct {
	// Openings opens a new buffer with every value it emits. Its completion
	// stops new buffers from opening but does not end the operator.
	Openings observable.Observable[O]

	// Closing returns the notifier for the buffer opened by an opening
	// value. The notifier's first value or its completion closes the buffer.
	Closing func(O) observable.Notifier

	// Seed optionally returns the initial contents of the buffer opened by
	// an opening value. Without it buffers start empty, so when Openings is
	// derived from the source itself the triggering value is not included.
	Seed func(O) []T

	Options observable.Options
}

func (c ToggleConfig[T, O]) validate() error {
	if c.Openings == nil {
		return validation.Missing("buffer", "openings")
	}
	if c.Closing == nil {
		return validation.Missing("buffer", "closing")
	}
	return nil
}

// Toggle buffers source between externally signalled boundaries: every
// value from openings opens a buffer, which closing(value) closes.
// A nil argument is reported as the stream's error on subscribe.
func Toggle[T, O any](source observable.Observable[T], openings observable.Observable[O], closing func(O) observable.Notifier) observable.Observable[[]T] {
	op, err := NewToggle(source, ToggleConfig[T, O]{Openings: openings, Closing: closing})
	if err != nil {
		return observable.Throw[[]T](err)
	}
	return op
}

// NewToggle is Toggle with full configuration. It returns a
// *errors.ValidationError for an invalid configuration.
//
// Buffers are emitted in the order they close. Completion of the source
// emits the buffers still open in the order they opened. An error from the
// source, the openings or any closing notifier discards every open buffer
// and is propagated unchanged.
func NewToggle[T, O any](source observable.Observable[T], cfg ToggleConfig[T, O]) (observable.Observable[[]T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return func(out *observable.Sink[[]T]) {
		set := newBufferSet(out, cfg.Options, "buffer_toggle")

		open := func(o O) {
			var seed []T
			if cfg.Seed != nil {
				seed = cfg.Seed(o)
			}
			e := set.open(seed)

			notifier := cfg.Closing(o)
			if notifier == nil {
				set.fail(rferrors.NewOperationError("buffer", "Toggle", rferrors.ErrInvalidConfiguration).
					WithContext(fmt.Sprintf("closing selector returned nil for %v", o)))
				return
			}
			closeEntry := func() { set.do(func() { set.close(e) }) }
			e.closing = notifier.SubscribeWithin(out.Subscription, observable.ObserverFuncs[any]{
				Next:     func(any) { closeEntry() },
				Error:    func(err error) { set.do(func() { set.fail(err) }) },
				Complete: closeEntry,
			})
		}

		set.do(func() {
			set.subscribe(source, set.push)
			cfg.Openings.SubscribeWithin(out.Subscription, observable.ObserverFuncs[O]{
				Next:  func(o O) { set.do(func() { open(o) }) },
				Error: func(err error) { set.do(func() { set.fail(err) }) },
			})
		})
	}, nil
}
