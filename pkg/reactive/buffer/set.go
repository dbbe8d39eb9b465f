package buffer

import (
	"log/slog"

	"github.com/vnykmshr/rxflow/pkg/metrics"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// entry is one open buffer and the handle that will close it, if any.
type entry[T any] struct {
	values  []T
	closing *subscription.Subscription
}

// bufferSet owns the open buffers of one subscription of a buffering
// operator. Every method must run on loop; strategies reach it through do.
type bufferSet[T any] struct {
	loop    observable.Serial
	out     *observable.Sink[[]T]
	entries []*entry[T]
	log     *slog.Logger
	rec     *metrics.Recorder
}

func newBufferSet[T any](out *observable.Sink[[]T], opts observable.Options, operator string) *bufferSet[T] {
	b := &bufferSet[T]{
		out: out,
		log: opts.Log(operator),
		rec: opts.Recorder(operator),
	}

	release := b.rec.Subscribed()
	out.AddTeardown(func() error {
		release()
		b.loop.Do(b.discard)
		return nil
	})
	return b
}

// do runs fn on the loop unless the downstream has already terminated or
// been cancelled.
func (b *bufferSet[T]) do(fn func()) {
	b.loop.Do(func() {
		if b.out.Active() {
			fn()
		}
	})
}

// subscribe attaches source to the operator. Values go to onValue, errors
// fail the operator and completion flushes it.
func (b *bufferSet[T]) subscribe(source observable.Observable[T], onValue func(T)) {
	source.SubscribeWithin(b.out.Subscription, observable.ObserverFuncs[T]{
		Next:     func(v T) { b.do(func() { onValue(v) }) },
		Error:    func(err error) { b.do(func() { b.fail(err) }) },
		Complete: func() { b.do(b.flush) },
	})
}

// open starts a new buffer holding a copy of seed.
func (b *bufferSet[T]) open(seed []T) *entry[T] {
	e := &entry[T]{values: append(make([]T, 0, len(seed)), seed...)}
	b.entries = append(b.entries, e)
	b.rec.BufferOpened()
	return e
}

// attach makes closing the handle that close releases for e and ties it
// to the downstream subscription.
func (b *bufferSet[T]) attach(e *entry[T], closing *subscription.Subscription) {
	e.closing = closing
	b.out.Add(closing)
}

// push appends v to every open buffer. A value that arrives while no buffer
// is open belongs to none and is dropped.
func (b *bufferSet[T]) push(v T) {
	if len(b.entries) == 0 {
		b.rec.ValueDropped()
		return
	}
	for _, e := range b.entries {
		e.values = append(e.values, v)
	}
}

// close removes e, releases its closing handle and emits it. It reports
// false if e was no longer open.
func (b *bufferSet[T]) close(e *entry[T]) bool {
	for i, open := range b.entries {
		if open != e {
			continue
		}
		copy(b.entries[i:], b.entries[i+1:])
		b.entries[len(b.entries)-1] = nil
		b.entries = b.entries[:len(b.entries)-1]

		b.release(e)
		b.emit(e)
		return true
	}
	return false
}

// closeFull emits every buffer holding at least size values, oldest first.
func (b *bufferSet[T]) closeFull(size int) []*entry[T] {
	var full []*entry[T]
	for _, e := range b.entries {
		if len(e.values) >= size {
			full = append(full, e)
		}
	}
	for _, e := range full {
		if !b.out.Active() {
			break
		}
		b.close(e)
	}
	return full
}

// flush emits the remaining buffers in open order and completes downstream.
func (b *bufferSet[T]) flush() {
	entries := b.entries
	b.entries = nil
	for _, e := range entries {
		b.release(e)
		b.emit(e)
	}
	b.log.Debug("operator completed", slog.Int("flushed", len(entries)))
	b.out.Complete()
}

// fail drops every open buffer and propagates err. Nothing partial is emitted.
func (b *bufferSet[T]) fail(err error) {
	entries := b.entries
	b.entries = nil
	for _, e := range entries {
		b.release(e)
	}
	b.rec.BuffersDiscarded(len(entries))
	b.rec.Error()
	b.log.Debug("operator failed", slog.Int("discarded", len(entries)), slog.Any("err", err))
	b.out.Error(err)
}

// discard forgets buffers left open by cancellation. Their closing handles
// are children of out and have already been released.
func (b *bufferSet[T]) discard() {
	if len(b.entries) == 0 {
		return
	}
	b.rec.BuffersDiscarded(len(b.entries))
	b.log.Debug("operator cancelled", slog.Int("discarded", len(b.entries)))
	b.entries = nil
}

func (b *bufferSet[T]) release(e *entry[T]) {
	if e.closing == nil {
		return
	}
	b.out.Remove(e.closing)
	_ = e.closing.Unsubscribe()
}

func (b *bufferSet[T]) emit(e *entry[T]) {
	b.rec.BufferEmitted(len(e.values))
	b.log.Debug("buffer emitted", slog.Int("size", len(e.values)))
	b.out.Next(e.values)
}
