package observable

import (
	"context"
	"sync"
)

// Collect subscribes to o and blocks until it terminates or ctx is done.
// It returns every value received and the terminal error, if any. When ctx
// ends first the subscription is cancelled and ctx.Err() is returned with
// the values received so far.
func Collect[T any](ctx context.Context, o Observable[T]) ([]T, error) {
	var (
		mu     sync.Mutex
		values []T
		result error
	)
	done := make(chan struct{})

	sub := o.Subscribe(ObserverFuncs[T]{
		Next: func(v T) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		},
		Error: func(err error) {
			mu.Lock()
			result = err
			mu.Unlock()
			close(done)
		},
		Complete: func() {
			close(done)
		},
	})

	select {
	case <-done:
	case <-ctx.Done():
		_ = sub.Unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		// The stream may have terminated while we were cancelling.
		select {
		case <-done:
			return values, result
		default:
		}
		return values, ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	return values, result
}
