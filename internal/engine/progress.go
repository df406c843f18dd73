package engine

import (
	"sync/atomic"

	"github.com/maxvaer/dirbust/internal/filter"
)

// Progress holds the live counters of a scan. Workers update it
// concurrently; readers take a Snapshot.
type Progress struct {
	total    atomic.Int64
	found    atomic.Int64
	filtered atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
}

// Snapshot is a point-in-time copy of the counters. Attempted is always
// Found + Filtered + Failed.
type Snapshot struct {
	Total     int64
	Attempted int64
	Found     int64
	Filtered  int64
	Failed    int64
	Skipped   int64
	Remaining int64
}

// Record counts one published result in exactly one bucket.
func (p *Progress) Record(v filter.Verdict) {
	switch v {
	case filter.Found:
		p.found.Add(1)
	case filter.Filtered:
		p.filtered.Add(1)
	default:
		p.failed.Add(1)
	}
}

func (p *Progress) skip() {
	p.skipped.Add(1)
}

// SetTotal sets the expected number of candidates. 0 means unknown.
func (p *Progress) SetTotal(n int64) {
	p.total.Store(n)
}

// Snapshot reads the counters. Individual counters are read atomically;
// the set as a whole may straddle a concurrent update.
func (p *Progress) Snapshot() Snapshot {
	s := Snapshot{
		Total:    p.total.Load(),
		Found:    p.found.Load(),
		Filtered: p.filtered.Load(),
		Failed:   p.failed.Load(),
		Skipped:  p.skipped.Load(),
	}
	s.Attempted = s.Found + s.Filtered + s.Failed
	if s.Total > 0 {
		s.Remaining = max(0, s.Total-s.Attempted-s.Skipped)
	}
	return s
}
