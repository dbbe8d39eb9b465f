/*
Package buffer groups the values of a stream into slices.

Every operator in the package feeds the same buffer manager and differs only
in the policy that opens and closes buffers:

  - Count: a buffer every Stride values, emitted once it holds Size values.
  - Time: buffers that live for a fixed Span, back to back or opened every
    Interval, optionally cut short at MaxSize values.
  - Toggle: a buffer per value of an openings stream, each closed by its own
    notifier.
  - Notified: one buffer at a time, rotated by every value of a notifier.
  - When: one buffer at a time, each closed by a fresh notifier.

All operators share these rules. Each value is appended to every buffer open
when it arrives; a value that arrives while no buffer is open is dropped.
Buffers are emitted in the order they close. When the source completes the
buffers still open are emitted in the order they opened, then the output
completes. An error from the source or from any boundary stream discards the
open buffers and is propagated unchanged. Cancelling the output releases
every boundary subscription and timer the operator holds.

Example:

	batches := buffer.Count(events, 100, 0)
	sub := batches.Subscribe(observable.ObserverFuncs[[]Event]{
		Next: func(batch []Event) { store.Write(batch) },
	})
	defer sub.Unsubscribe()

Each operator has a New* variant taking a config struct, which also carries
observable.Options for logging and metrics, and returns configuration errors
directly instead of through the stream.
*/
package buffer
