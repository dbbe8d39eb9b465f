/*
Package rxflow provides push-based stream operators for buffering, timeouts,
and delayed resubscription.

Core (pkg/reactive):
  - subscription: Cancellable, composable handles with exactly-once teardown
  - observable: Observable, Sink, Subject and basic sources (Of, Interval, Cron, ...)
  - scheduler: Real and virtual time for timer-driven operators

Operators:
  - buffer: Count, Time, Toggle, Notified and When buffering
  - timeout: Deadlines on the first value, each value, or an absolute time
  - repeat: Resubscription with an optional delay between attempts

Integration:
  - redisstream: Redis pub/sub sources and list sinks
  - metrics: Prometheus metrics for every operator

Example usage:

	import (
		"github.com/vnykmshr/rxflow/pkg/reactive/buffer"
		"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	)

	batches := buffer.Count(observable.Of(1, 2, 3, 4, 5), 2, 0)
	batches.Subscribe(observable.ObserverFuncs[[]int]{
		Next: func(batch []int) { fmt.Println(batch) }, // [1 2] [3 4] [5]
	})
*/
package rxflow
