package buffer_test

import (
	"testing"
	"time"

	"github.com/vnykmshr/rxflow/internal/testutil"
	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
	"github.com/vnykmshr/rxflow/pkg/reactive/buffer"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
	"github.com/vnykmshr/rxflow/pkg/reactive/scheduler"
)

func TestNotified(t *testing.T) {
	source := observable.NewSubject[int]()
	notifier := observable.NewSubject[any]()

	rec := testutil.NewRecorder[[]int]()
	buffer.Notified(source.Observable(), notifier.Observable()).Subscribe(rec)

	source.Next(1)
	source.Next(2)
	notifier.Next(nil)
	notifier.Next(nil)
	source.Next(3)
	notifier.Complete()
	source.Next(4)
	source.Complete()

	testutil.AssertBuffers(t, rec.Values(), [][]int{{1, 2}, {}, {3, 4}})
	testutil.AssertEqual(t, rec.Completed(), true)
}

func TestNotified_NotifierError(t *testing.T) {
	source := observable.NewSubject[int]()
	notifier := observable.NewSubject[any]()

	rec := testutil.NewRecorder[[]int]()
	buffer.Notified(source.Observable(), notifier.Observable()).Subscribe(rec)

	source.Next(1)
	notifier.Error(errBoom)

	testutil.AssertEqual(t, len(rec.Values()), 0)
	testutil.AssertErrorIs(t, rec.Err(), errBoom)
	testutil.AssertEqual(t, source.Observers(), 0)
}

func TestWhen(t *testing.T) {
	sched := scheduler.NewVirtual(time.Time{})
	source := observable.NewSubject[int]()
	made := 0

	closing := func() observable.Notifier {
		made++
		return observable.ToNotifier(observable.Timer(sched, 10*time.Millisecond))
	}

	rec := testutil.NewRecorder[[]int]()
	sub := buffer.When(source.Observable(), closing).Subscribe(rec)

	source.Next(1)
	sched.Advance(5 * time.Millisecond)
	source.Next(2)
	sched.Advance(5 * time.Millisecond)
	source.Next(3)
	sched.Advance(20 * time.Millisecond)

	testutil.AssertBuffers(t, rec.Values(), [][]int{{1, 2}, {3}, {}})
	testutil.AssertEqual(t, made, 4)
	testutil.AssertEqual(t, sched.Pending(), 1)

	testutil.AssertNoError(t, sub.Unsubscribe())
	testutil.AssertEqual(t, sched.Pending(), 0)
	testutil.AssertEqual(t, source.Observers(), 0)
}

func TestWhen_NotifierCompletionIgnored(t *testing.T) {
	source := observable.NewSubject[int]()

	rec := testutil.NewRecorder[[]int]()
	buffer.When(source.Observable(), func() observable.Notifier { return observable.Empty[any]() }).Subscribe(rec)

	source.Next(1)
	source.Next(2)
	source.Complete()

	testutil.AssertBuffers(t, rec.Values(), [][]int{{1, 2}})
}

func TestNotifiedAndWhen_InvalidConfiguration(t *testing.T) {
	_, err := buffer.NewNotified(observable.Never[int](), buffer.NotifiedConfig{})
	testutil.AssertEqual(t, rferrors.IsValidationError(err), true)

	_, err = buffer.NewWhen(observable.Never[int](), buffer.WhenConfig{})
	testutil.AssertEqual(t, rferrors.IsValidationError(err), true)

	rec := testutil.NewRecorder[[]int]()
	spy := testutil.NewSpy(observable.Never[int]())
	buffer.When(spy.Observable(), func() observable.Notifier { return nil }).Subscribe(rec)
	testutil.AssertErrorIs(t, rec.Err(), rferrors.ErrInvalidConfiguration)
	testutil.AssertEqual(t, spy.Subscribed(), 0)
}
