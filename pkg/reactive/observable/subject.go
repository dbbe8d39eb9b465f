package observable

import "sync"

// Subject is a hot stream that multicasts the values pushed into it to every
// current subscriber. Subscribers that arrive after termination receive the
// terminal event immediately.
//
// Subject is safe for concurrent use. It is mostly useful as a hand-driven
// source or boundary signal in tests and glue code.
type Subject[T any] struct {
	mu    sync.Mutex
	sinks []*Sink[T]
	done  bool
	err   error
}

// NewSubject creates an open Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Observable returns the subscribable side of the subject.
func (s *Subject[T]) Observable() Observable[T] {
	return func(sink *Sink[T]) {
		s.mu.Lock()
		if s.done {
			err := s.err
			s.mu.Unlock()
			if err != nil {
				sink.Error(err)
			} else {
				sink.Complete()
			}
			return
		}
		s.sinks = append(s.sinks, sink)
		s.mu.Unlock()

		sink.AddTeardown(func() error {
			s.remove(sink)
			return nil
		})
	}
}

// Observers returns the number of live subscribers.
func (s *Subject[T]) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sinks)
}

// Next pushes value to every live subscriber.
func (s *Subject[T]) Next(value T) {
	for _, sink := range s.snapshot(false, nil) {
		sink.Next(value)
	}
}

// Error terminates the subject with err.
func (s *Subject[T]) Error(err error) {
	for _, sink := range s.snapshot(true, err) {
		sink.Error(err)
	}
}

// Complete terminates the subject successfully.
func (s *Subject[T]) Complete() {
	for _, sink := range s.snapshot(true, nil) {
		sink.Complete()
	}
}

func (s *Subject[T]) snapshot(terminate bool, err error) []*Sink[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	sinks := append([]*Sink[T](nil), s.sinks...)
	if terminate {
		s.done = true
		s.err = err
		s.sinks = nil
	}
	return sinks
}

func (s *Subject[T]) remove(target *Sink[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sink := range s.sinks {
		if sink == target {
			s.sinks = append(s.sinks[:i], s.sinks[i+1:]...)
			return
		}
	}
}
