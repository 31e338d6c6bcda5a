package idgen

import (
	"errors"
	"fmt"
	"math"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	radix    = uint64(len(alphabet))

	// MaxEncodedLen is the length of math.MaxUint64 in base62.
	MaxEncodedLen = 11
)

var (
	ErrEmptyInput       = errors.New("base62: empty input")
	ErrInvalidCharacter = errors.New("base62: invalid character")
	ErrOverflow         = errors.New("base62: value overflows uint64")
)

const invalidDigit = 0xff

// charIndex maps a byte to its digit value, or invalidDigit.
var charIndex = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = invalidDigit
	}
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = byte(i)
	}
	return t
}()

// Encode returns the base62 form of n, most significant digit first.
// Zero encodes to "0".
func Encode(n uint64) string {
	var buf [MaxEncodedLen]byte
	i := len(buf)
	for {
		i--
		buf[i] = alphabet[n%radix]
		n /= radix
		if n == 0 {
			break
		}
	}
	return string(buf[i:])
}

// Decode parses a base62 string produced by Encode (or padded with leading
// zeros). It fails on empty input, on bytes outside the alphabet, and when the
// value does not fit in a uint64.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, ErrEmptyInput
	}

	var n uint64
	for i := 0; i < len(s); i++ {
		d, ok := decodeDigit(s[i])
		if !ok {
			return 0, fmt.Errorf("%w %q at position %d", ErrInvalidCharacter, s[i], i)
		}
		if n > (math.MaxUint64-uint64(d))/radix {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
		}
		n = n*radix + uint64(d)
	}
	return n, nil
}

func decodeDigit(c byte) (byte, bool) {
	d := charIndex[c]
	return d, d != invalidDigit
}

// pad left-pads s with the zero digit up to width.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	b := make([]byte, width)
	n := width - len(s)
	for i := 0; i < n; i++ {
		b[i] = alphabet[0]
	}
	copy(b[n:], s)
	return string(b)
}
