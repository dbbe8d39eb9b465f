/*
Package observable is the stream substrate the rxflow operators are built on.

An Observable[T] is a function that starts a producer for one subscriber. The
subscriber is represented by a *Sink[T], which carries the subscription handle
and enforces the stream contract: values arrive through Next until the first
Error or Complete, and nothing arrives after that or after cancellation.

	sub := observable.Of(1, 2, 3).Subscribe(observable.ObserverFuncs[int]{
		Next:     func(v int) { fmt.Println(v) },
		Complete: func() { fmt.Println("done") },
	})
	defer sub.Unsubscribe()

Operators serialise all of their event handling through a Serial, so events
that arrive from timer goroutines, from several upstream sources, or
reentrantly from inside another callback are processed one at a time in
arrival order.

The package also provides a small set of sources (Of, FromSlice, FromChannel,
Timer, Interval, Cron, Subject) and Collect, which gathers a finite stream
into a slice.
*/
package observable
