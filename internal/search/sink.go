package search

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Sink receives accepted candidates. Workers call Hit concurrently.
type Sink interface {
	Hit(Hit)
}

type SinkFunc func(Hit)

func (f SinkFunc) Hit(h Hit) { f(h) }

// Sinks fans a hit out to every member in order.
type Sinks []Sink

func (s Sinks) Hit(h Hit) {
	for _, sink := range s {
		sink.Hit(h)
	}
}

// LogSink writes each hit to lg.
func LogSink(lg *zap.SugaredLogger) Sink {
	return SinkFunc(func(h Hit) {
		lg.Infow("tap configuration accepted", "taps", h.TapsHex(), "plaintext", h.Plaintext, "worker", h.Worker)
	})
}

// Collector keeps every hit in memory.
type Collector struct {
	mu   sync.Mutex
	hits []Hit
}

func (c *Collector) Hit(h Hit) {
	c.mu.Lock()
	c.hits = append(c.hits, h)
	c.mu.Unlock()
}

// Hits returns a copy of the collected hits ordered by tap value.
func (c *Collector) Hits() []Hit {
	c.mu.Lock()
	out := make([]Hit, len(c.hits))
	copy(out, c.hits)
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Taps < out[j].Taps })
	return out
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hits)
}
