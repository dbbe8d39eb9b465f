package scheduler

import (
	"sync"
	"time"

	"github.com/vnykmshr/rxflow/pkg/reactive/subscription"
)

// Epoch is the start time of a Virtual scheduler created with a zero time.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Virtual is a deterministic Scheduler for tests. Time only moves when
// Advance or AdvanceTo is called, and due callbacks run synchronously on the
// calling goroutine in due-time order (ties in scheduling order). While a
// callback runs, Now reports its due time.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*virtualTimer
}

type virtualTimer struct {
	due time.Time
	seq uint64
	fn  func()
}

// NewVirtual creates a Virtual scheduler starting at start, or at Epoch if
// start is zero.
func NewVirtual(start time.Time) *Virtual {
	if start.IsZero() {
		start = Epoch
	}
	return &Virtual{now: start}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// After schedules fn at Now()+d.
func (v *Virtual) After(d time.Duration, fn func()) *subscription.Subscription {
	if d < 0 {
		d = 0
	}

	v.mu.Lock()
	v.seq++
	t := &virtualTimer{due: v.now.Add(d), seq: v.seq, fn: fn}
	v.timers = append(v.timers, t)
	v.mu.Unlock()

	return subscription.New(func() error {
		v.cancel(t)
		return nil
	})
}

// Pending returns the number of scheduled callbacks that have neither run
// nor been cancelled.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// Advance moves time forward by d, running every callback that falls due.
func (v *Virtual) Advance(d time.Duration) {
	v.AdvanceTo(v.Now().Add(d))
}

// AdvanceTo moves time forward to target, running every callback that falls
// due. Callbacks scheduled by callbacks run too if they fall due by target.
func (v *Virtual) AdvanceTo(target time.Time) {
	for {
		v.mu.Lock()
		next := v.nextDue(target)
		if next == nil {
			if target.After(v.now) {
				v.now = target
			}
			v.mu.Unlock()
			return
		}
		v.timers = removeTimer(v.timers, next)
		if next.due.After(v.now) {
			v.now = next.due
		}
		v.mu.Unlock()

		next.fn()
	}
}

// Flush runs callbacks until none remain, advancing time as needed.
// Periodic work reschedules itself forever, so callers bound it with limit;
// Flush returns the number of callbacks it ran.
func (v *Virtual) Flush(limit int) int {
	ran := 0
	for ran < limit {
		v.mu.Lock()
		next := v.nextDue(time.Time{})
		if next == nil {
			v.mu.Unlock()
			return ran
		}
		v.timers = removeTimer(v.timers, next)
		if next.due.After(v.now) {
			v.now = next.due
		}
		v.mu.Unlock()

		next.fn()
		ran++
	}
	return ran
}

// nextDue returns the earliest timer due at or before target, or the
// earliest timer overall when target is zero. Must be called with v.mu held.
func (v *Virtual) nextDue(target time.Time) *virtualTimer {
	var next *virtualTimer
	for _, t := range v.timers {
		if !target.IsZero() && t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (v *Virtual) cancel(t *virtualTimer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.timers = removeTimer(v.timers, t)
}

func removeTimer(list []*virtualTimer, target *virtualTimer) []*virtualTimer {
	for i, t := range list {
		if t == target {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
