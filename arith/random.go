package arith

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomBits returns a uniform sample in [0, 2^bits) drawn from the
// system's cryptographically strong entropy source.
func RandomBits(bits int) (*big.Int, error) {
	if bits < 0 {
		return nil, ErrBadRange
	}
	if bits == 0 {
		return new(big.Int), nil
	}
	buf := make([]byte, (bits+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	if rem := bits % 8; rem != 0 {
		buf[0] &= byte(0xff >> (8 - rem))
	}
	return new(big.Int).SetBytes(buf), nil
}

// RandomRange returns a uniform sample in [min, max) by rejection
// sampling over the bit width of max-min.
func RandomRange(min, max *big.Int) (*big.Int, error) {
	if min == nil || max == nil || max.Cmp(min) <= 0 {
		return nil, ErrBadRange
	}
	span := new(big.Int).Sub(max, min)
	bits := span.BitLen()
	for {
		r, err := RandomBits(bits)
		if err != nil {
			return nil, err
		}
		if r.Cmp(span) < 0 {
			return r.Add(r, min), nil
		}
	}
}
