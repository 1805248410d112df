package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfsrcrack/internal/lfsr"
)

type fakeCounter struct {
	checked uint64
	done    bool
}

func (f fakeCounter) Checked() uint64 { return f.checked }
func (f fakeCounter) Done() bool      { return f.done }

func TestMonitorHalfway(t *testing.T) {
	for _, w := range []lfsr.Width{lfsr.Width8, lfsr.Width64} {
		half := uint64(1) << (w - 1)
		m := NewMonitor(FullRange(w), []Counter{
			fakeCounter{checked: half / 4},
			fakeCounter{checked: half / 4, done: true},
			fakeCounter{checked: half / 2},
		})
		p := m.Progress()
		assert.Equal(t, half, p.Checked)
		assert.False(t, p.Done)
		assert.Equal(t, 3, p.Workers)
		assert.InDelta(t, 50.0, p.Percent, 1e-9, "width %d", w)
	}
}

func TestMonitorRemainingEstimate(t *testing.T) {
	now := time.Unix(1000, 0)
	m := NewMonitor(FullRange(lfsr.Width8), []Counter{fakeCounter{checked: 64}})
	m.now = func() time.Time { return now }
	m.Start()
	now = now.Add(10 * time.Minute)

	p := m.Progress()
	require.True(t, p.RemainingKnown)
	assert.Equal(t, 10*time.Minute, p.Elapsed)
	assert.Equal(t, 30*time.Minute, p.Remaining)
	assert.Equal(t, "Test progress: 0000000000000040/00000000000000ff (25.0%); Elapsed: 00:10 Remaining: 00:30", p.String())
}

func TestMonitorZeroProgress(t *testing.T) {
	m := NewMonitor(FullRange(lfsr.Width64), []Counter{fakeCounter{}, fakeCounter{}})
	m.Start()
	p := m.Progress()
	assert.Zero(t, p.Percent)
	assert.False(t, p.RemainingKnown)
	assert.Contains(t, p.String(), "Remaining: --:--")
}

func TestMonitorTinyFractionDoesNotOverflow(t *testing.T) {
	now := time.Unix(0, 1)
	m := NewMonitor(FullRange(lfsr.Width64), []Counter{fakeCounter{checked: 1}})
	m.now = func() time.Time { return now }
	m.Start()
	now = now.Add(time.Hour)

	p := m.Progress()
	assert.False(t, p.RemainingKnown)
}

func TestMonitorAllDone(t *testing.T) {
	m := NewMonitor(FullRange(lfsr.Width8), []Counter{
		fakeCounter{checked: 128, done: true},
		fakeCounter{checked: 128, done: true},
	})
	p := m.Progress()
	assert.True(t, p.Done)
	assert.True(t, p.RemainingKnown)
	assert.Zero(t, p.Remaining)
	assert.InDelta(t, 100.0, p.Percent, 1e-9)
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:00", clock(0))
	assert.Equal(t, "01:05", clock(65*time.Minute))
	assert.Equal(t, "27:59", clock(27*time.Hour+59*time.Minute+59*time.Second))
}

// finishingCounter completes its chunk the moment its count is read, which
// is the worst interleaving for a reader that loads the two fields apart.
type finishingCounter struct {
	checked uint64
	done    bool
}

func (f *finishingCounter) Checked() uint64 {
	f.checked, f.done = 256, true
	return f.checked
}

func (f *finishingCounter) Done() bool { return f.done }

func TestMonitorNeverReportsDoneWithStaleCount(t *testing.T) {
	m := NewMonitor(FullRange(lfsr.Width8), []Counter{&finishingCounter{}})

	first := m.Poll()
	assert.False(t, first.Done)
	assert.Equal(t, uint64(256), first.Checked)

	second := m.Poll()
	assert.True(t, second.Done)
	assert.Equal(t, uint64(256), second.Checked)
}

func TestMonitorSubRangeTotals(t *testing.T) {
	m := NewMonitor(Chunk{First: 0x100, Last: 0x1ff}, []Counter{fakeCounter{checked: 0x80}})
	p := m.Progress()
	assert.Equal(t, 256.0, p.Total)
	assert.Equal(t, uint64(0x1ff), p.Last)
	assert.InDelta(t, 50.0, p.Percent, 1e-9)
	assert.Contains(t, p.String(), "0000000000000080/00000000000001ff (50.0%)")
}
