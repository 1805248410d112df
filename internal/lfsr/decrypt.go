package lfsr

import (
	"errors"
	"fmt"
	"math/bits"
)

// Terminator follows the last plaintext byte in every decryption buffer.
const Terminator byte = 0x00

var ErrEmptyCiphertext = errors.New("lfsr: empty ciphertext")

// Printable reports whether c is plausible plaintext: visible 7-bit ASCII,
// CR, LF or NUL.
func Printable(c byte) bool {
	if c >= 0x20 && c < 0x7f {
		return true
	}
	return c == '\r' || c == '\n' || c == 0
}

// PrintableString reports whether every byte of s passes Printable.
func PrintableString(s []byte) bool {
	for _, c := range s {
		if !Printable(c) {
			return false
		}
	}
	return true
}

// Decrypt runs the keystream over ciphertext, MSB first, one register step
// per bit. It stops at the first decrypted byte that fails Printable.
//
// The result is len(ciphertext)+1 bytes long and always ends in Terminator.
// On rejection every byte after the failing one is zero. dst is reused when
// it has enough capacity.
func Decrypt(w Width, ciphertext []byte, initial, taps uint64, dst []byte) ([]byte, bool) {
	n := len(ciphertext)
	if cap(dst) < n+1 {
		dst = make([]byte, n+1)
	}
	dst = dst[:n+1]

	top := uint(w) - 1
	reg := initial & w.Max()
	for i, c := range ciphertext {
		var out byte
		for bit := 7; bit >= 0; bit-- {
			fb := uint64(bits.OnesCount64(reg&taps) & 1)
			reg = reg>>1 | fb<<top
			ks := byte(reg >> top)
			out |= (ks ^ (c>>uint(bit))&1) << uint(bit)
		}
		dst[i] = out
		if !Printable(out) {
			clear(dst[i+1:])
			return dst, false
		}
	}
	dst[n] = Terminator
	return dst, true
}

// Apply XORs src with the keystream for (initial, taps) without any
// filtering. The cipher is symmetric so Apply both encrypts and decrypts.
func Apply(w Width, src []byte, initial, taps uint64) []byte {
	out := make([]byte, len(src))
	top := uint(w) - 1
	reg := initial & w.Max()
	for i, c := range src {
		for bit := 7; bit >= 0; bit-- {
			reg, _ = w.Step(reg, taps)
			ks := byte(reg>>top) & 1
			out[i] |= (ks ^ (c>>uint(bit))&1) << uint(bit)
		}
	}
	return out
}

// Decrypter binds a ciphertext and initial value to a reusable output buffer.
// It is not safe for concurrent use; each worker owns one.
type Decrypter struct {
	width      Width
	ciphertext []byte
	initial    uint64
	buf        []byte
}

func NewDecrypter(w Width, ciphertext []byte, initial uint64) (*Decrypter, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 {
		return nil, ErrEmptyCiphertext
	}
	if !w.Contains(initial) {
		return nil, fmt.Errorf("lfsr: initial value %#x does not fit in %d bits", initial, uint(w))
	}
	return &Decrypter{
		width:      w,
		ciphertext: ciphertext,
		initial:    initial,
		buf:        make([]byte, len(ciphertext)+1),
	}, nil
}

// Try decrypts with taps. The returned slice excludes the terminator and is
// only valid until the next call.
func (d *Decrypter) Try(taps uint64) ([]byte, bool) {
	out, ok := Decrypt(d.width, d.ciphertext, d.initial, taps, d.buf)
	return out[:len(d.ciphertext)], ok
}

func (d *Decrypter) Width() Width { return d.width }
