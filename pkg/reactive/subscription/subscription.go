package subscription

import (
	"fmt"
	"sync"

	rferrors "github.com/vnykmshr/rxflow/pkg/common/errors"
)

// Subscription is a cancellable, composable handle on an active resource.
// It owns zero or more teardown callbacks and child subscriptions; all of
// them run exactly once, on the first call to Unsubscribe.
//
// A Subscription is safe for concurrent use. Teardowns run without any lock
// held, so they may freely call back into the same or related handles.
type Subscription struct {
	mu        sync.Mutex
	closed    bool
	teardowns []func() error
	children  []*Subscription
	parents   []*Subscription
}

// New creates an open Subscription. teardown may be nil.
func New(teardown func() error) *Subscription {
	s := &Subscription{}
	if teardown != nil {
		s.teardowns = append(s.teardowns, teardown)
	}
	return s
}

// Closed returns a Subscription that has already been unsubscribed.
func Closed() *Subscription {
	return &Subscription{closed: true}
}

// IsClosed reports whether Unsubscribe has been called.
func (s *Subscription) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Len returns the number of live children.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.children)
}

// Add makes child a dependent of s: unsubscribing s unsubscribes child.
// If s is already closed, child is unsubscribed immediately.
// A child that unsubscribes on its own removes itself from s.
func (s *Subscription) Add(child *Subscription) {
	if child == nil || child == s {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = child.Unsubscribe()
		return
	}

	child.mu.Lock()
	if child.closed {
		child.mu.Unlock()
		s.mu.Unlock()
		return
	}
	child.parents = append(child.parents, s)
	child.mu.Unlock()

	s.children = append(s.children, child)
	s.mu.Unlock()
}

// AddTeardown registers fn to run on Unsubscribe. If s is already closed,
// fn runs immediately.
func (s *Subscription) AddTeardown(fn func() error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = runTeardown(fn)
		return
	}
	s.teardowns = append(s.teardowns, fn)
	s.mu.Unlock()
}

// Remove detaches child from s without unsubscribing it.
func (s *Subscription) Remove(child *Subscription) {
	if child == nil {
		return
	}

	s.mu.Lock()
	s.children = removeSub(s.children, child)
	s.mu.Unlock()

	child.mu.Lock()
	child.parents = removeSub(child.parents, s)
	child.mu.Unlock()
}

// Unsubscribe releases the resource. It is idempotent: only the first call
// does any work. Every teardown and child runs even if some of them fail or
// panic; the failures are returned together as a *errors.TeardownError with
// the first captured failure first.
func (s *Subscription) Unsubscribe() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	parents := s.parents
	teardowns := s.teardowns
	children := s.children
	s.parents = nil
	s.teardowns = nil
	s.children = nil
	s.mu.Unlock()

	for _, p := range parents {
		p.mu.Lock()
		p.children = removeSub(p.children, s)
		p.mu.Unlock()
	}

	var errs []error
	for _, fn := range teardowns {
		if err := runTeardown(fn); err != nil {
			errs = append(errs, err)
		}
	}
	for _, child := range children {
		child.mu.Lock()
		child.parents = removeSub(child.parents, s)
		child.mu.Unlock()
		if err := child.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}

	return rferrors.NewTeardownError(errs)
}

func runTeardown(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("teardown panicked: %v", r)
		}
	}()
	return fn()
}

func removeSub(list []*Subscription, target *Subscription) []*Subscription {
	for i, sub := range list {
		if sub == target {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
