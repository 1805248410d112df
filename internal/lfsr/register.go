// Package lfsr models a Fibonacci linear-feedback shift register used as the
// keystream generator of a bitwise stream cipher.
//
// Registers of every supported width are carried in a uint64; only the low
// Width bits are ever set.
package lfsr

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// Width is the number of bits in the shift register.
type Width uint

const (
	Width8  Width = 8
	Width64 Width = 64
)

var ErrUnsupportedWidth = errors.New("lfsr: unsupported register width")

// ParseWidth converts a bit count into a Width.
func ParseWidth(n int) (Width, error) {
	w := Width(n)
	if err := w.Validate(); err != nil {
		return 0, err
	}
	return w, nil
}

func (w Width) Validate() error {
	switch w {
	case Width8, Width64:
		return nil
	}
	return fmt.Errorf("%w: %d (want 8 or 64)", ErrUnsupportedWidth, uint(w))
}

// Max is the largest register value (and tap mask) representable in w bits.
func (w Width) Max() uint64 {
	if w >= 64 {
		return math.MaxUint64
	}
	return 1<<w - 1
}

// Space is 2^w as a float, the size of the tap configuration space.
func (w Width) Space() float64 {
	return math.Ldexp(1, int(w))
}

// Contains reports whether v fits in w bits.
func (w Width) Contains(v uint64) bool {
	return v&^w.Max() == 0
}

// HexDigits is the number of hex digits needed to print a full register.
func (w Width) HexDigits() int {
	return int(w+3) / 4
}

// Feedback returns the parity of reg&taps, i.e. the XOR of every register
// bit selected by the tap mask.
func Feedback(reg, taps uint64) uint64 {
	return uint64(bits.OnesCount64(reg&taps) & 1)
}

// FeedbackFold computes the same bit as Feedback one tap at a time.
func FeedbackFold(reg, taps uint64) uint64 {
	var state uint64
	for taps != 0 {
		state ^= reg & taps & 1
		reg >>= 1
		taps >>= 1
	}
	return state
}

// Step advances the register by one position. The feedback bit enters at
// bit w-1 and the register shifts towards bit 0.
func (w Width) Step(reg, taps uint64) (next, feedback uint64) {
	reg &= w.Max()
	feedback = Feedback(reg, taps)
	next = reg>>1 | feedback<<(w-1)
	return next, feedback
}
