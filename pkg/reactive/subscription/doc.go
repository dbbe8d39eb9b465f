/*
Package subscription provides the cancellable, composable handle every rxflow
operator is built on.

A Subscription owns teardown callbacks and child subscriptions. Unsubscribing
a parent unsubscribes every child exactly once, and the call is idempotent:

	parent := subscription.New(nil)
	timer := subscription.New(func() error {
		t.Stop()
		return nil
	})
	parent.Add(timer)

	_ = parent.Unsubscribe() // stops the timer
	_ = parent.Unsubscribe() // no-op

Teardown is total even under partial failure. If a teardown returns an error
or panics, the remaining teardowns still run and the failures are returned
afterwards as a *errors.TeardownError:

	err := parent.Unsubscribe()
	var terr *errors.TeardownError
	if errors.As(err, &terr) {
		log.Printf("first teardown failure: %v", terr.First())
	}

Children that unsubscribe on their own detach from their parents, so a
long-lived parent (for example the subscription of a buffering operator that
opens and closes many windows) does not accumulate dead handles.
*/
package subscription
