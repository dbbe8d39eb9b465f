package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/vnykmshr/rxflow/internal/testutil"
	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/reactive/buffer"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/repeat"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
	"github.com/vnykmshr/rxflow/pkg/reactive/timeout"
)

var errUpstream = errors.New("upstream failed")

// TestPollingPipeline tests repeat -> time buffer on virtual time: a poller
// that yields two readings per poll, polled every 10ms, batched per 25ms.
func TestPollingPipeline(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})
	polls := 0
	poll := observable.Defer(func() observable.Observable[int] {
		polls++
		return observable.Of(polls*10+1, polls*10+2)
	})

	batches := buffer.Time(repeat.Delayed(poll, 5, 10*time.Millisecond, sched), 25*time.Millisecond, sched)

	rec := testutil.NewRecorder[[]int]()
	batches.Subscribe(rec)
	sched.Flush(100)

	// Polls run at 0, 10, 20, 30 and 40ms.
	testutil.AssertBuffers(t, rec.Values(), [][]int{
		{11, 12, 21, 22, 31, 32},
		{41, 42, 51, 52},
	})
	testutil.AssertEqual(t, rec.Completed(), true)
	testutil.AssertEqual(t, sched.Pending(), 0)
}

// TestHeartbeatFailover tests timeout -> repeat: a primary feed that stalls
// is replaced by a bounded polling fallback that knows the last value seen.
func TestHeartbeatFailover(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})
	primary := observable.NewSubject[int]()
	spy := testutil.NewSpy(primary.Observable())

	guarded, err := timeout.New(spy.Observable(), timeout.Config[int]{
		First:     100 * time.Millisecond,
		Each:      30 * time.Millisecond,
		Scheduler: sched,
		Meta:      "primary",
		With: func(info timeout.Info[int]) observable.Observable[int] {
			next := info.LastValue
			return repeat.Delayed(observable.Defer(func() observable.Observable[int] {
				next++
				return observable.Of(next)
			}), 3, 50*time.Millisecond, sched)
		},
	})
	testutil.AssertNoError(t, err)

	rec := testutil.NewRecorder[int]()
	guarded.Subscribe(rec)

	sched.Advance(90 * time.Millisecond)
	primary.Next(1)
	sched.Advance(20 * time.Millisecond)
	primary.Next(2)
	sched.Advance(30 * time.Millisecond) // stall: deadline at 140ms
	testutil.AssertEqual(t, spy.Active(), 0)

	sched.Flush(100)
	testutil.AssertValues(t, rec.Values(), []int{1, 2, 3, 4, 5})
	testutil.AssertEqual(t, rec.Completed(), true)
	testutil.AssertEqual(t, sched.Pending(), 0)
}

// TestCronWindows tests cron openings -> toggle buffering: a buffer opens at
// every minute and collects events for the following 30 seconds.
func TestCronWindows(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})
	events := observable.NewSubject[string]()

	minutes, err := observable.Cron(sched, "* * * * *")
	testutil.AssertNoError(t, err)

	windows := buffer.Toggle(events.Observable(), minutes, func(time.Time) observable.Notifier {
		return observable.ToNotifier(observable.Timer(sched, 30*time.Second))
	})

	rec := testutil.NewRecorder[[]string]()
	sub := windows.Subscribe(rec)

	at := func(d time.Duration, event string) {
		sched.AdvanceTo(scheduler.Epoch.Add(d))
		events.Next(event)
	}
	at(10*time.Second, "before first window")
	at(65*time.Second, "a")
	at(80*time.Second, "b")
	at(100*time.Second, "outside")
	at(125*time.Second, "c")
	sched.AdvanceTo(scheduler.Epoch.Add(3 * time.Minute))

	// The window opened at 3m is still open and is discarded on unsubscribe.
	testutil.AssertBuffers(t, rec.Values(), [][]string{{"a", "b"}, {"c"}})
	testutil.AssertNoError(t, sub.Unsubscribe())
	testutil.AssertEqual(t, sched.Pending(), 0)
}

// TestErrorTaxonomy checks how errors from each layer are classified.
func TestErrorTaxonomy(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})

	cfgErr := testutil.NewRecorder[[]int]()
	buffer.Count(observable.Of(1), 0, 0).Subscribe(cfgErr)
	testutil.AssertEqual(t, rferrors.KindOf(cfgErr.Err()), rferrors.KindInvalidConfiguration)

	timedOut := testutil.NewRecorder[[]int]()
	buffer.Count(timeout.Each(observable.Never[int](), time.Second, sched), 2, 0).Subscribe(timedOut)
	sched.Advance(time.Second)
	testutil.AssertEqual(t, rferrors.KindOf(timedOut.Err()), rferrors.KindTimeout)

	upstream := testutil.NewRecorder[int]()
	repeat.Times(observable.Throw[int](errUpstream), 3).Subscribe(upstream)
	testutil.AssertEqual(t, upstream.Err(), errUpstream)
	testutil.AssertEqual(t, rferrors.KindOf(upstream.Err()), rferrors.KindUpstream)
}
