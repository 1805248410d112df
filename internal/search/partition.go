package search

import (
	"errors"
	"fmt"
	"math/bits"

	"lfsrcrack/internal/lfsr"
)

var ErrNoWorkers = errors.New("search: worker count must be positive")

// Chunk is a contiguous run of tap configurations. Both bounds are inclusive
// so that a chunk can end at the top of a 64-bit space, where the exclusive
// bound 2^64 is not representable.
type Chunk struct {
	First uint64
	Last  uint64
}

// Len is the number of tap values in c. A chunk spanning the whole 64-bit
// space reports 0, since 2^64 overflows.
func (c Chunk) Len() uint64 {
	return c.Last - c.First + 1
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%#x, %#x]", c.First, c.Last)
}

// FullRange covers every tap configuration of width w.
func FullRange(w lfsr.Width) Chunk {
	return Chunk{First: 0, Last: w.Max()}
}

// Partition splits the whole tap space of width w into at most n chunks.
// See PartitionRange.
func Partition(w lfsr.Width, n int) ([]Chunk, error) {
	return PartitionRange(FullRange(w), n)
}

// PartitionRange splits r into at most n contiguous chunks of
// ceil(len(r)/n) values. Rounding up means the final chunk may be short, and
// fewer than n chunks are returned when r holds too few values to give every
// worker one.
func PartitionRange(r Chunk, n int) ([]Chunk, error) {
	if n <= 0 {
		return nil, ErrNoWorkers
	}
	if r.Last < r.First {
		return nil, fmt.Errorf("search: empty range %s", r)
	}

	// Count is r.Last-r.First+1 as a 65-bit value (hi:lo).
	lo, hi := bits.Add64(r.Last-r.First, 1, 0)
	if hi >= uint64(n) {
		// n == 1 over the whole 64-bit space.
		return []Chunk{r}, nil
	}
	size, rem := bits.Div64(hi, lo, uint64(n))
	if rem > 0 {
		size++
	}

	chunks := make([]Chunk, 0, n)
	start := r.First
	for i := 0; i < n; i++ {
		last, carry := bits.Add64(start, size-1, 0)
		if carry != 0 || last > r.Last {
			last = r.Last
		}
		chunks = append(chunks, Chunk{First: start, Last: last})
		if last == r.Last {
			break
		}
		start = last + 1
	}
	return chunks, nil
}
