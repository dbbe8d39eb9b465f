package observable_test

import (
	"errors"
	"testing"

	"github.com/vnykmshr/rxflow/internal/testutil"
	"github.com/vnykmshr/rxflow/pkg/reactive/observable"
)

func TestSink_TerminalIsFinal(t *testing.T) {
	tests := []struct {
		name      string
		events    func(s *observable.Sink[int])
		values    []int
		completed bool
		err       error
	}{
		{
			name: "complete then error",
			events: func(s *observable.Sink[int]) {
				s.Next(1)
				s.Complete()
				s.Error(errors.New("late"))
				s.Next(2)
			},
			values:    []int{1},
			completed: true,
		},
		{
			name: "error then complete",
			events: func(s *observable.Sink[int]) {
				s.Error(errBoom)
				s.Complete()
				s.Next(2)
			},
			err: errBoom,
		},
		{
			name: "double complete",
			events: func(s *observable.Sink[int]) {
				s.Complete()
				s.Complete()
			},
			completed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder[int]()
			sink := observable.NewSink[int](rec)
			tt.events(sink)

			rec.AssertContract(t)
			testutil.AssertValues(t, rec.Values(), tt.values)
			testutil.AssertEqual(t, rec.Completed(), tt.completed)
			testutil.AssertEqual(t, rec.Err(), tt.err)
			testutil.AssertEqual(t, sink.IsClosed(), true)
			testutil.AssertEqual(t, sink.Active(), false)
		})
	}
}

func TestSink_UnsubscribeStopsDelivery(t *testing.T) {
	rec := testutil.NewRecorder[int]()
	sink := observable.NewSink[int](rec)

	sink.Next(1)
	testutil.AssertNoError(t, sink.Unsubscribe())
	sink.Next(2)
	sink.Complete()

	testutil.AssertValues(t, rec.Values(), []int{1})
	testutil.AssertEqual(t, rec.Terminated(), false)
}

func TestSink_TerminalReleasesResources(t *testing.T) {
	released := 0
	source := observable.Create(func(s *observable.Sink[int]) {
		s.AddTeardown(func() error {
			released++
			return nil
		})
		s.Next(1)
		s.Complete()
	})

	source.Subscribe(testutil.NewRecorder[int]())
	testutil.AssertEqual(t, released, 1)
}

func TestSink_TerminalReleasesBeforeDelivery(t *testing.T) {
	tests := []struct {
		name     string
		terminal func(s *observable.Sink[int])
	}{
		{name: "error", terminal: func(s *observable.Sink[int]) { s.Error(errBoom) }},
		{name: "complete", terminal: func(s *observable.Sink[int]) { s.Complete() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			released := false
			releasedAtTerminal := false
			source := observable.Create(func(s *observable.Sink[int]) {
				s.AddTeardown(func() error {
					released = true
					return nil
				})
				tt.terminal(s)
			})

			source.Subscribe(observable.ObserverFuncs[int]{
				Error:    func(error) { releasedAtTerminal = released },
				Complete: func() { releasedAtTerminal = released },
			})
			testutil.AssertEqual(t, releasedAtTerminal, true)
		})
	}
}

func TestObservable_CancelDuringSynchronousEmission(t *testing.T) {
	var sub interface{ Unsubscribe() error }
	var got []int
	emitted := 0

	source := observable.Create(func(s *observable.Sink[int]) {
		sub = s
		for i := 0; s.Active(); i++ {
			emitted++
			s.Next(i)
		}
	})

	source.Subscribe(observable.ObserverFuncs[int]{
		Next: func(v int) {
			got = append(got, v)
			if v == 2 {
				_ = sub.Unsubscribe()
			}
		},
	})

	testutil.AssertValues(t, got, []int{0, 1, 2})
	testutil.AssertEqual(t, emitted, 3)
}

func TestObservable_SubscribeWithin(t *testing.T) {
	parent := observable.NewSink[int](testutil.NewRecorder[int]())
	spy := testutil.NewSpy(observable.Never[string]())

	child := spy.Observable().SubscribeWithin(parent.Subscription, testutil.NewRecorder[string]())
	testutil.AssertEqual(t, parent.Len(), 1)
	testutil.AssertEqual(t, spy.Active(), 1)

	testutil.AssertNoError(t, parent.Unsubscribe())
	testutil.AssertEqual(t, child.IsClosed(), true)
	testutil.AssertEqual(t, spy.Active(), 0)
}

func TestObserverFuncs_NilFieldsAreNoops(t *testing.T) {
	var obs observable.ObserverFuncs[int]
	obs.OnNext(1)
	obs.OnError(errBoom)
	obs.OnComplete()
}

var errBoom = errors.New("boom")
