package engagement

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs deferred UI work on the widget's event loop.
type Scheduler interface {
	// NextFrame runs fn before the next paint.
	NextFrame(fn func())
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func())
}

type scheduledTask struct {
	due time.Duration
	seq int
	fn  func()
}

// ManualScheduler queues work until the owner drives it. Tests use it to step
// through toast and pulse lifecycles; the server host uses it to settle the
// first frame before serializing a fragment.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	frames []func()
	tasks  []scheduledTask
}

// NewManualScheduler returns a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) NextFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, fn)
}

func (s *ManualScheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.tasks = append(s.tasks, scheduledTask{due: s.now + d, seq: s.seq, fn: fn})
}

// RunFrames runs queued frame callbacks, including ones queued while running.
func (s *ManualScheduler) RunFrames() {
	for {
		s.mu.Lock()
		frames := s.frames
		s.frames = nil
		s.mu.Unlock()

		if len(frames) == 0 {
			return
		}
		for _, fn := range frames {
			fn()
		}
	}
}

// Advance moves time forward by d, running pending frames first and then every
// timer that falls due, in due order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.RunFrames()

	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		sort.Slice(s.tasks, func(i, j int) bool {
			if s.tasks[i].due == s.tasks[j].due {
				return s.tasks[i].seq < s.tasks[j].seq
			}
			return s.tasks[i].due < s.tasks[j].due
		})
		if len(s.tasks) == 0 || s.tasks[0].due > target {
			s.now = target
			s.mu.Unlock()
			return
		}
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		s.now = task.due
		s.mu.Unlock()

		task.fn()
		s.RunFrames()
	}
}

// Pending returns the number of queued timers.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
