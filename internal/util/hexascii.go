package util

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ParseHexBytes accepts "2bfc8e", "2B FC 8E" or "0x2B, 0xFC, 0x8E".
func ParseHexBytes(s string) ([]byte, error) {
	s = strings.NewReplacer("0x", "", "0X", "", ",", "", " ", "", "\n", "", "\t", "").Replace(strings.TrimSpace(s))
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hex input has odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hex input: %w", err)
	}
	return b, nil
}

// ParseUint accepts decimal, 0x hex, 0o octal or 0b binary, with optional
// underscores between digits.
func ParseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

// IsASCII reports whether every byte of b is visible 7-bit ASCII.
func IsASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c >= 0x7f {
			return false
		}
	}
	return true
}

// Quote prints b as text when it is plain ASCII and as hex otherwise.
func Quote(b []byte) string {
	if IsASCII(b) {
		return strconv.Quote(string(b))
	}
	return hex.EncodeToString(b)
}
