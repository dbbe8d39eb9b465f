// Package timeout switches a stream to a fallback when it stays silent past
// a deadline.
//
// A monitor arms a deadline when it is subscribed: Config.First or
// Config.FirstAt for the first value, otherwise Config.Each. Every value
// cancels the pending deadline and, when Each is set, arms a new one. If a
// deadline fires the monitor unsubscribes from the source and subscribes the
// stream returned by Config.With to its output; from then on the monitor
// does nothing. Without With the output fails with a *errors.TimeoutError.
//
//	guarded, err := timeout.New(ticks, timeout.Config[Tick]{
//		First: 5 * time.Second,
//		Each:  time.Second,
//		With: func(info timeout.Info[Tick]) observable.Observable[Tick] {
//			return observable.Of(info.LastValue)
//		},
//	})
package timeout
