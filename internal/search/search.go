// Package search brute-forces the tap configuration of an LFSR stream cipher
// by splitting the tap space across one OS thread per worker.
package search

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"lfsrcrack/internal/lfsr"
)

const DefaultInterval = time.Second

var (
	ErrSpawn      = errors.New("search: failed to start worker")
	ErrAlreadyRun = errors.New("search: already run")
)

type Options struct {
	Width      lfsr.Width
	Ciphertext []byte
	Initial    uint64
	// Workers defaults to runtime.NumCPU().
	Workers int
	// Range restricts the search to a sub-range of the tap space.
	Range *Chunk
	// Interval between progress reports, DefaultInterval when zero.
	Interval time.Duration
	Logger   *zap.SugaredLogger
}

// Summary describes a finished search.
type Summary struct {
	Workers int           `json:"workers"`
	Checked uint64        `json:"checked"`
	Hits    int64         `json:"hits"`
	Elapsed time.Duration `json:"elapsed"`
}

type Search struct {
	opts    Options
	lg      *zap.SugaredLogger
	workers []*Worker
	monitor *Monitor
	hits    atomic.Int64
	ran     atomic.Bool
}

// New partitions the search space and prepares one worker per chunk. Any
// worker that cannot be prepared fails the whole search, since running
// without it would leave part of the space unexamined.
func New(opts Options) (*Search, error) {
	if err := opts.Width.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Ciphertext) == 0 {
		return nil, lfsr.ErrEmptyCiphertext
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}

	r := FullRange(opts.Width)
	if opts.Range != nil {
		r = *opts.Range
		if !opts.Width.Contains(r.Last) {
			return nil, fmt.Errorf("search: range %s outside %d-bit tap space", r, uint(opts.Width))
		}
	}
	chunks, err := PartitionRange(r, opts.Workers)
	if err != nil {
		return nil, err
	}
	if len(chunks) < opts.Workers {
		lg.Infow("fewer chunks than workers", "workers", opts.Workers, "chunks", len(chunks))
	}

	// Copy so that callers cannot mutate the ciphertext under running workers.
	ct := append([]byte(nil), opts.Ciphertext...)

	s := &Search{opts: opts, lg: lg}
	counters := make([]Counter, 0, len(chunks))
	for i, c := range chunks {
		w, err := NewWorker(Task{ID: i, Chunk: c, Width: opts.Width, Ciphertext: ct, Initial: opts.Initial})
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrSpawn, i, err)
		}
		s.workers = append(s.workers, w)
		counters = append(counters, w)
	}
	s.monitor = NewMonitor(r, counters)
	return s, nil
}

func (s *Search) Monitor() *Monitor { return s.monitor }

func (s *Search) Chunks() []Chunk {
	out := make([]Chunk, len(s.workers))
	for i, w := range s.workers {
		out[i] = w.Chunk()
	}
	return out
}

// Run starts every worker, reports progress each interval until all of them
// have exhausted their chunks, then joins them. There is no early exit: the
// search always covers the whole range.
func (s *Search) Run(sink Sink) (Summary, error) {
	if !s.ran.CAS(false, true) {
		return Summary{}, ErrAlreadyRun
	}
	counted := SinkFunc(func(h Hit) {
		s.hits.Inc()
		sink.Hit(h)
	})

	s.lg.Infow("starting search",
		"width", uint(s.opts.Width),
		"initial", fmt.Sprintf("0x%0*x", s.opts.Width.HexDigits(), s.opts.Initial),
		"ciphertext", fmt.Sprintf("%x", s.opts.Ciphertext),
		"workers", len(s.workers),
	)
	s.monitor.Start()

	var wg sync.WaitGroup
	for _, w := range s.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			w.Run(counted)
		}(w)
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	var p Progress
	for {
		p = s.monitor.Progress()
		s.lg.Infow(p.String(),
			"checked", p.Checked,
			"percent", p.Percent,
			"elapsed", p.Elapsed,
		)
		if p.Done {
			break
		}
		<-ticker.C
	}
	wg.Wait()
	// Every worker has been joined, so this read sees final counts.
	p.Snapshot = s.monitor.Poll()

	sum := Summary{
		Workers: len(s.workers),
		Checked: p.Checked,
		Hits:    s.hits.Load(),
		Elapsed: p.Elapsed,
	}
	s.lg.Infow("all workers done", "checked", sum.Checked, "hits", sum.Hits, "elapsed", sum.Elapsed)
	return sum, nil
}
