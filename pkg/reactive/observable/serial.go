package observable

import "sync"

// Serial runs functions one at a time in submission order.
//
// Do runs fn immediately when nothing else is running. A call made while
// another function is running, whether reentrantly from inside it or from
// another goroutine, queues fn and returns at once; the goroutine already
// draining runs it next. Operators route every upstream event and timer
// callback through one Serial so their state needs no further locking.
type Serial struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

// Do runs or queues fn.
func (s *Serial) Do(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

func (s *Serial) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.queue = nil
			s.draining = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		next()
	}
}
