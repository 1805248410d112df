package search

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/atomic"
)

// Counter is the read side of a worker's progress.
type Counter interface {
	Checked() uint64
	Done() bool
}

// Snapshot is an eventually consistent view of every worker. Counters are
// read without coordination, so it is low-resolution progress and not a
// synchronization primitive.
type Snapshot struct {
	Checked uint64 `json:"checked"`
	Done    bool   `json:"done"`
	Workers int    `json:"workers"`
}

// Progress adds timing estimates to a Snapshot.
type Progress struct {
	Snapshot
	Total          float64       `json:"total"`
	Last           uint64        `json:"last"`
	Percent        float64       `json:"percent"`
	Elapsed        time.Duration `json:"elapsed"`
	Remaining      time.Duration `json:"remaining"`
	RemainingKnown bool          `json:"remaining_known"`
}

// Monitor aggregates worker counters. It never writes worker state.
type Monitor struct {
	total    float64
	last     uint64
	counters []Counter
	started  atomic.Int64
	now      func() time.Time
}

// NewMonitor watches counters working through the tap values of r.
func NewMonitor(r Chunk, counters []Counter) *Monitor {
	return &Monitor{
		total:    float64(r.Last-r.First) + 1,
		last:     r.Last,
		counters: counters,
		now:      time.Now,
	}
}

// Start records the beginning of the search for elapsed time estimates.
func (m *Monitor) Start() {
	m.started.Store(m.now().UnixNano())
}

// Poll sums the counters. Done is true only when every worker has finished.
//
// Done is loaded before Checked: a worker stores its final count before
// setting done, so a finished worker always contributes its full count.
func (m *Monitor) Poll() Snapshot {
	s := Snapshot{Done: true, Workers: len(m.counters)}
	for _, c := range m.counters {
		if !c.Done() {
			s.Done = false
		}
		s.Checked += c.Checked()
	}
	return s
}

func (m *Monitor) Progress() Progress {
	p := Progress{Snapshot: m.Poll(), Total: m.total, Last: m.last}
	if m.total > 0 {
		p.Percent = float64(p.Checked) * 100 / m.total
	}
	if started := m.started.Load(); started != 0 {
		p.Elapsed = m.now().Sub(time.Unix(0, started))
	}

	switch {
	case p.Done:
		p.RemainingKnown = true
	case p.Percent > 0:
		fraction := p.Percent / 100
		remaining := float64(p.Elapsed) * (1 - fraction) / fraction
		if remaining < math.MaxInt64 {
			p.Remaining = time.Duration(remaining)
			p.RemainingKnown = true
		}
	}
	return p
}

func (p Progress) String() string {
	remaining := "--:--"
	if p.RemainingKnown {
		remaining = clock(p.Remaining)
	}
	return fmt.Sprintf("Test progress: %016x/%016x (%.1f%%); Elapsed: %s Remaining: %s",
		p.Checked, p.Last, p.Percent, clock(p.Elapsed), remaining)
}

// clock renders d as HH:MM.
func clock(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%02d:%02d", h, m)
}
