package repeat_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/rxflow/internal/testutil"
	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/metrics"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/repeat"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
)

var errBoom = errors.New("boom")

func TestRepeat_BoundedWithDelay(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})

	var subscribedAt []time.Duration
	source := observable.Defer(func() observable.Observable[int] {
		subscribedAt = append(subscribedAt, sched.Now().Sub(scheduler.Epoch))
		return observable.Empty[int]()
	})

	rec := testutil.NewRecorder[int]()
	repeat.Delayed(source, 3, 10*time.Millisecond, sched).Subscribe(rec)

	sched.Flush(100)

	testutil.AssertValues(t, subscribedAt, []time.Duration{0, 10 * time.Millisecond, 20 * time.Millisecond})
	for i := 1; i < len(subscribedAt); i++ {
		if gap := subscribedAt[i] - subscribedAt[i-1]; gap < 10*time.Millisecond {
			t.Errorf("gap between attempts %d and %d = %v, want >= 10ms", i, i+1, gap)
		}
	}
	testutil.AssertEqual(t, rec.Completed(), true)
	testutil.AssertEqual(t, sched.Pending(), 0)
	rec.AssertContract(t)
}

func TestRepeat_ForwardsValues(t *testing.T) {
	rec := testutil.NewRecorder[string]()
	repeat.Times(observable.Of("a", "b"), 3).Subscribe(rec)

	testutil.AssertValues(t, rec.Values(), []string{"a", "b", "a", "b", "a", "b"})
	testutil.AssertEqual(t, rec.Completed(), true)
}

func TestRepeat_SynchronousCompletionDoesNotRecurse(t *testing.T) {
	const attempts = 10000
	depth, maxDepth, subscriptions := 0, 0, 0

	source := observable.Create(func(s *observable.Sink[int]) {
		subscriptions++
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		s.Next(subscriptions)
		s.Complete()
		depth--
	})

	rec := testutil.NewRecorder[int]()
	repeat.Times(source, attempts).Subscribe(rec)

	testutil.AssertEqual(t, subscriptions, attempts)
	testutil.AssertEqual(t, maxDepth, 1)
	testutil.AssertEqual(t, len(rec.Values()), attempts)
	testutil.AssertEqual(t, rec.Completed(), true)
}

func TestRepeat_CountEdgeCases(t *testing.T) {
	for _, count := range []int{0, -1} {
		spy := testutil.NewSpy(observable.Of(1))
		rec := testutil.NewRecorder[int]()
		repeat.Times(spy.Observable(), count).Subscribe(rec)

		testutil.AssertEqual(t, rec.Completed(), true)
		testutil.AssertEqual(t, len(rec.Values()), 0)
		testutil.AssertEqual(t, spy.Subscribed(), 0)
	}

	rec := testutil.NewRecorder[int]()
	repeat.Times(observable.Of(1), 1).Subscribe(rec)
	testutil.AssertValues(t, rec.Values(), []int{1})
}

func TestRepeat_ZeroConfigMeansNoAttempts(t *testing.T) {
	spy := testutil.NewSpy(observable.Of(1))
	op, err := repeat.New(spy.Observable(), repeat.Config{})
	testutil.AssertNoError(t, err)

	rec := testutil.NewRecorder[int]()
	op.Subscribe(rec)
	testutil.AssertEqual(t, rec.Completed(), true)
	testutil.AssertEqual(t, spy.Subscribed(), 0)

	testutil.AssertEqual(t, repeat.DefaultConfig().Count, repeat.Unbounded)
}

func TestRepeat_Unbounded(t *testing.T) {
	attempts := 0
	deferred := observable.Defer(func() observable.Observable[int] {
		attempts++
		if attempts == 50 {
			return observable.Throw[int](errBoom)
		}
		return observable.Of(attempts)
	})

	op, err := repeat.New(deferred, repeat.DefaultConfig())
	testutil.AssertNoError(t, err)

	rec := testutil.NewRecorder[int]()
	op.Subscribe(rec)

	testutil.AssertEqual(t, attempts, 50)
	testutil.AssertEqual(t, len(rec.Values()), 49)
	testutil.AssertErrorIs(t, rec.Err(), errBoom)
}

func TestRepeat_ErrorsStopAttempts(t *testing.T) {
	t.Run("source error", func(t *testing.T) {
		sched := scheduler.NewVirtual(time.Time{})
		spy := testutil.NewSpy(observable.Create(func(s *observable.Sink[int]) {
			s.Next(1)
			s.Error(errBoom)
		}))

		rec := testutil.NewRecorder[int]()
		repeat.Delayed(spy.Observable(), 5, time.Millisecond, sched).Subscribe(rec)
		sched.Flush(100)

		testutil.AssertEqual(t, spy.Subscribed(), 1)
		testutil.AssertEqual(t, rec.Err(), errBoom)
		testutil.AssertEqual(t, rferrors.KindOf(rec.Err()), rferrors.KindUpstream)
		testutil.AssertEqual(t, sched.Pending(), 0)
	})

	t.Run("delay stream error", func(t *testing.T) {
		spy := testutil.NewSpy(observable.Empty[int]())
		op, err := repeat.New(spy.Observable(), repeat.Config{
			Count: 5,
			DelayFunc: func(int) observable.Notifier {
				return observable.Throw[any](errBoom)
			},
		})
		testutil.AssertNoError(t, err)

		rec := testutil.NewRecorder[int]()
		op.Subscribe(rec)

		testutil.AssertEqual(t, spy.Subscribed(), 1)
		testutil.AssertEqual(t, rec.Err(), errBoom)
	})
}

func TestRepeat_DelayFunc(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})

	var attemptsSeen []int
	var subscribedAt []time.Duration
	source := observable.Defer(func() observable.Observable[int] {
		subscribedAt = append(subscribedAt, sched.Now().Sub(scheduler.Epoch))
		return observable.Empty[int]()
	})

	op, err := repeat.New(source, repeat.Config{
		Count: 4,
		DelayFunc: func(attempt int) observable.Notifier {
			attemptsSeen = append(attemptsSeen, attempt)
			// Linear backoff: 10ms, 20ms, 30ms.
			return observable.ToNotifier(observable.Timer(sched, time.Duration(attempt)*10*time.Millisecond))
		},
	})
	testutil.AssertNoError(t, err)

	rec := testutil.NewRecorder[int]()
	op.Subscribe(rec)
	sched.Flush(100)

	testutil.AssertValues(t, attemptsSeen, []int{1, 2, 3})
	testutil.AssertValues(t, subscribedAt, []time.Duration{0, 10 * time.Millisecond, 30 * time.Millisecond, 60 * time.Millisecond})
	testutil.AssertEqual(t, rec.Completed(), true)
}

func TestRepeat_DelayFuncSynchronous(t *testing.T) {
	subscriptions := 0
	source := observable.Defer(func() observable.Observable[int] {
		subscriptions++
		return observable.Empty[int]()
	})

	op, err := repeat.New(source, repeat.Config{
		Count:     5,
		DelayFunc: func(int) observable.Notifier { return observable.Of[any](struct{}{}) },
	})
	testutil.AssertNoError(t, err)

	rec := testutil.NewRecorder[int]()
	op.Subscribe(rec)

	testutil.AssertEqual(t, subscriptions, 5)
	testutil.AssertEqual(t, rec.Completed(), true)
}

func TestRepeat_DelayCompletionWithoutValue(t *testing.T) {
	spy := testutil.NewSpy(observable.Of(1))
	op, err := repeat.New(spy.Observable(), repeat.Config{
		Count:     repeat.Unbounded,
		DelayFunc: func(int) observable.Notifier { return observable.Empty[any]() },
	})
	testutil.AssertNoError(t, err)

	rec := testutil.NewRecorder[int]()
	op.Subscribe(rec)

	testutil.AssertValues(t, rec.Values(), []int{1})
	testutil.AssertEqual(t, rec.Completed(), true)
	testutil.AssertEqual(t, spy.Subscribed(), 1)
}

func TestRepeat_CancelDuringDelay(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})
	spy := testutil.NewSpy(observable.Of(1))

	rec := testutil.NewRecorder[int]()
	sub := repeat.Delayed(spy.Observable(), repeat.Unbounded, time.Second, sched).Subscribe(rec)
	testutil.AssertEqual(t, sched.Pending(), 1)

	testutil.AssertNoError(t, sub.Unsubscribe())
	testutil.AssertEqual(t, sched.Pending(), 0)
	testutil.AssertEqual(t, sub.Len(), 0)

	sched.Advance(time.Hour)
	testutil.AssertEqual(t, spy.Subscribed(), 1)
	testutil.AssertEqual(t, rec.Terminated(), false)
}

func TestRepeat_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  repeat.Config
	}{
		{name: "negative delay", cfg: repeat.Config{Count: 2, Delay: -time.Second}},
		{
			name: "delay and delay func",
			cfg: repeat.Config{
				Count:     2,
				Delay:     time.Second,
				DelayFunc: func(int) observable.Notifier { return observable.Never[any]() },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repeat.New(observable.Of(1), tt.cfg)
			testutil.AssertEqual(t, rferrors.IsValidationError(err), true)
		})
	}

	rec := testutil.NewRecorder[int]()
	repeat.Delayed(observable.Of(1), 2, -time.Second, nil).Subscribe(rec)
	testutil.AssertErrorIs(t, rec.Err(), rferrors.ErrInvalidConfiguration)

	nilDelay := testutil.NewRecorder[int]()
	op, err := repeat.New(observable.Of(1), repeat.Config{
		Count:     2,
		DelayFunc: func(int) observable.Notifier { return nil },
	})
	testutil.AssertNoError(t, err)
	op.Subscribe(nilDelay)
	testutil.AssertErrorIs(t, nilDelay.Err(), rferrors.ErrInvalidConfiguration)
}

func TestRepeat_Metrics(t *testing.T) {
	registry := metrics.NewRegistry(prometheus.NewRegistry())
	op, err := repeat.New(observable.Of(1), repeat.Config{
		Count:   4,
		Options: observable.Options{Name: "poller", Metrics: registry},
	})
	testutil.AssertNoError(t, err)

	op.Subscribe(testutil.NewRecorder[int]())

	testutil.AssertEqual(t, promtest.ToFloat64(registry.RepeatAttempts.WithLabelValues("poller")), 4.0)
	testutil.AssertEqual(t, promtest.ToFloat64(registry.ActiveSubscriptions.WithLabelValues("repeat", "poller")), 0.0)
	testutil.AssertEqual(t, repeat.DefaultConfig().Count, repeat.Unbounded)
}
