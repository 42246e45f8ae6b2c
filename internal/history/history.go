// Package history keeps the bounded list of recently processed job IDs shown
// on the UI surface. Advisory state only: created at process start, cleared
// on restart, never consulted by the ranking core.
package history

import "sync"

// DefaultLimit is the number of recent job IDs retained.
const DefaultLimit = 10

// RecentJobs is a bounded, insertion-ordered job-ID list. Re-adding an
// existing ID moves it to the front; the oldest entry is evicted at capacity.
type RecentJobs struct {
	mu    sync.Mutex
	limit int
	ids   []string
}

// New creates a RecentJobs with the given capacity (DefaultLimit if <= 0).
func New(limit int) *RecentJobs {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RecentJobs{limit: limit}
}

// Add records a job ID as most recent.
func (r *RecentJobs) Add(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, id := range r.ids {
		if id == jobID {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	r.ids = append([]string{jobID}, r.ids...)
	if len(r.ids) > r.limit {
		r.ids = r.ids[:r.limit]
	}
}

// List returns the IDs most recent first.
func (r *RecentJobs) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}
