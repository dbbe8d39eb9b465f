package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
)

// Recorder is an Observer that records every event it receives, including
// events that break the stream contract.
type Recorder[T any] struct {
	mu         sync.Mutex
	values     []T
	err        error
	completed  bool
	terminals  int
	violations []string
	done       chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{done: make(chan struct{})}
}

// OnNext records value.
func (r *Recorder[T]) OnNext(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminals > 0 {
		r.violations = append(r.violations, fmt.Sprintf("next(%v) after terminal", value))
	}
	r.values = append(r.values, value)
}

// OnError records err.
func (r *Recorder[T]) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminal(fmt.Sprintf("error(%v)", err))
	if r.terminals == 1 {
		r.err = err
	}
}

// OnComplete records completion.
func (r *Recorder[T]) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminal("complete")
	if r.terminals == 1 {
		r.completed = true
	}
}

func (r *Recorder[T]) terminal(event string) {
	r.terminals++
	if r.terminals > 1 {
		r.violations = append(r.violations, event+" after terminal")
		return
	}
	close(r.done)
}

// Values returns a copy of the values received so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

// Err returns the first terminal error, if any.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completed reports whether the first terminal event was a completion.
func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminated reports whether any terminal event arrived.
func (r *Recorder[T]) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminals > 0
}

// Done is closed by the first terminal event.
func (r *Recorder[T]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the first terminal event, failing the test after
// TestTimeout.
func (r *Recorder[T]) Wait(t *testing.T) {
	t.Helper()
	ctx, cancel := WithTimeout(t)
	defer cancel()
	select {
	case <-r.done:
	case <-ctx.Done():
		t.Fatalf("stream did not terminate within %v", TestTimeout)
	}
}

// AssertContract fails the test if any event arrived after a terminal one.
func (r *Recorder[T]) AssertContract(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.violations) > 0 {
		t.Fatalf("stream contract violated: %v", r.violations)
	}
}

// Spy wraps a source and counts the subscriptions made to it and the ones
// that have been released, by cancellation or termination.
type Spy[T any] struct {
	source       observable.Observable[T]
	subscribed   atomic.Int64
	unsubscribed atomic.Int64
}

// NewSpy wraps source.
func NewSpy[T any](source observable.Observable[T]) *Spy[T] {
	return &Spy[T]{source: source}
}

// Observable returns the instrumented stream.
func (s *Spy[T]) Observable() observable.Observable[T] {
	return func(sink *observable.Sink[T]) {
		s.subscribed.Add(1)
		sink.AddTeardown(func() error {
			s.unsubscribed.Add(1)
			return nil
		})
		s.source(sink)
	}
}

// Subscribed returns the number of subscriptions made.
func (s *Spy[T]) Subscribed() int {
	return int(s.subscribed.Load())
}

// Unsubscribed returns the number of subscriptions released.
func (s *Spy[T]) Unsubscribed() int {
	return int(s.unsubscribed.Load())
}

// Active returns the number of live subscriptions.
func (s *Spy[T]) Active() int {
	return s.Subscribed() - s.Unsubscribed()
}
