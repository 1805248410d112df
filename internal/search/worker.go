package search

import (
	"fmt"

	"go.uber.org/atomic"

	"lfsrcrack/internal/lfsr"
)

// publishEvery is how many attempts a worker makes between stores of its
// checked counter. The final count is always published before done is set.
const publishEvery = 1 << 12

// Hit is a tap configuration whose decryption passed the printability filter.
type Hit struct {
	Worker    int        `json:"worker"`
	Width     lfsr.Width `json:"width"`
	Taps      uint64     `json:"taps"`
	Plaintext string     `json:"plaintext"`
}

// TapsHex formats the tap mask zero-padded to the register width.
func (h Hit) TapsHex() string {
	return fmt.Sprintf("0x%0*x", h.Width.HexDigits(), h.Taps)
}

// Task is everything a worker needs, handed over once at spawn time.
type Task struct {
	ID         int
	Chunk      Chunk
	Width      lfsr.Width
	Ciphertext []byte
	Initial    uint64
}

// Worker exhausts one chunk. Its counter and done flag are written only by
// the worker goroutine and read by the Monitor.
type Worker struct {
	task    Task
	dec     *lfsr.Decrypter
	checked atomic.Uint64
	done    atomic.Bool
}

func NewWorker(task Task) (*Worker, error) {
	if task.Chunk.Last < task.Chunk.First || !task.Width.Contains(task.Chunk.Last) {
		return nil, fmt.Errorf("search: chunk %s outside %d-bit tap space", task.Chunk, uint(task.Width))
	}
	dec, err := lfsr.NewDecrypter(task.Width, task.Ciphertext, task.Initial)
	if err != nil {
		return nil, err
	}
	return &Worker{task: task, dec: dec}, nil
}

// Run tries every tap value of the chunk in ascending order and reports
// accepted ones to sink.
func (w *Worker) Run(sink Sink) {
	var checked uint64
	for taps := w.task.Chunk.First; ; taps++ {
		if out, ok := w.dec.Try(taps); ok {
			sink.Hit(Hit{
				Worker:    w.task.ID,
				Width:     w.task.Width,
				Taps:      taps,
				Plaintext: string(out),
			})
		}
		checked++
		if checked%publishEvery == 0 {
			w.checked.Store(checked)
		}
		if taps == w.task.Chunk.Last {
			break
		}
	}
	w.checked.Store(checked)
	w.done.Store(true)
}

func (w *Worker) Checked() uint64 { return w.checked.Load() }

func (w *Worker) Done() bool { return w.done.Load() }

func (w *Worker) Chunk() Chunk { return w.task.Chunk }
