package chat

import (
	"sync"
	"time"
)

// slidingWindow caps how many messages a single session may send within a
// rolling time window. Messages over the cap are dropped by the caller with
// a warning, never a disconnect.
type slidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   []time.Time
	now    func() time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &slidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether one more message fits in the current window and
// records it if so.
func (s *slidingWindow) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)
	kept := s.hits[:0]
	for _, t := range s.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.hits = kept

	if len(s.hits) >= s.limit {
		return false
	}
	s.hits = append(s.hits, now)
	return true
}
