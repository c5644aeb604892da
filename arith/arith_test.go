package arith

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestModPow(t *testing.T) {
	tests := []struct {
		name    string
		b, e, m int64
		want    int64
	}{
		{"small", 4, 13, 497, 445},
		{"base zero", 0, 5, 7, 0},
		{"exponent zero", 9, 0, 7, 1},
		{"modulus one", 12, 34, 1, 0},
		{"negative base reduced", -2, 3, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ModPow(bi(tt.b), bi(tt.e), bi(tt.m))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestModPowBadInput(t *testing.T) {
	_, err := ModPow(bi(2), bi(3), bi(0))
	assert.ErrorIs(t, err, ErrBadRange)

	_, err = ModPow(bi(2), bi(-1), bi(7))
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestExtGCD(t *testing.T) {
	tests := []struct {
		a, b, g int64
	}{
		{240, 46, 2},
		{46, 240, 2},
		{17, 5, 1},
		{0, 9, 9},
		{9, 0, 9},
	}
	for _, tt := range tests {
		g, x, y := ExtGCD(bi(tt.a), bi(tt.b))
		assert.Equal(t, tt.g, g.Int64(), "gcd(%d,%d)", tt.a, tt.b)

		// a*x + b*y = g
		lhs := new(big.Int).Mul(bi(tt.a), x)
		lhs.Add(lhs, new(big.Int).Mul(bi(tt.b), y))
		assert.Zero(t, lhs.Cmp(g), "Bezout identity for (%d,%d)", tt.a, tt.b)
	}
}

func TestModInverse(t *testing.T) {
	inv, err := ModInverse(bi(3), bi(11))
	require.NoError(t, err)
	assert.Equal(t, int64(4), inv.Int64())

	inv, err = ModInverse(bi(-3), bi(11))
	require.NoError(t, err)
	prod := new(big.Int).Mul(inv, bi(-3))
	prod.Mod(prod, bi(11))
	assert.Equal(t, int64(1), prod.Int64())

	_, err = ModInverse(bi(6), bi(9))
	assert.ErrorIs(t, err, ErrNoInverse)

	_, err = ModInverse(bi(3), bi(0))
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestGCDLCM(t *testing.T) {
	assert.Equal(t, int64(6), GCD(bi(12), bi(18)).Int64())
	assert.Equal(t, int64(7), GCD(bi(0), bi(7)).Int64())
	assert.Equal(t, int64(7), GCD(bi(7), bi(0)).Int64())
	assert.Equal(t, int64(4), GCD(bi(-8), bi(12)).Int64())

	assert.Equal(t, int64(36), LCM(bi(12), bi(18)).Int64())
	assert.Equal(t, int64(0), LCM(bi(0), bi(5)).Int64())
	assert.Equal(t, int64(0), LCM(bi(5), bi(0)).Int64())
}

func TestBitLength(t *testing.T) {
	assert.Equal(t, 0, BitLength(bi(0)))
	assert.Equal(t, 1, BitLength(bi(1)))
	assert.Equal(t, 8, BitLength(bi(255)))
	assert.Equal(t, 9, BitLength(bi(256)))
}

func TestL(t *testing.T) {
	// L(x) = (x-1)/n for x = 1 (mod n)
	n := bi(21)
	x := bi(64) // 64 = 1 + 3*21
	assert.Equal(t, int64(3), L(x, n).Int64())
	assert.Equal(t, int64(0), L(bi(1), n).Int64())
}

func TestRandomBits(t *testing.T) {
	for _, bits := range []int{1, 7, 8, 9, 64, 257} {
		r, err := RandomBits(bits)
		require.NoError(t, err)
		assert.LessOrEqual(t, r.BitLen(), bits)
	}

	r, err := RandomBits(0)
	require.NoError(t, err)
	assert.Zero(t, r.Sign())

	_, err = RandomBits(-1)
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestRandomRange(t *testing.T) {
	min, max := bi(100), bi(108)
	seen := make(map[int64]bool)
	for i := 0; i < 400; i++ {
		r, err := RandomRange(min, max)
		require.NoError(t, err)
		assert.True(t, r.Cmp(min) >= 0 && r.Cmp(max) < 0, "sample %v outside [100,108)", r)
		seen[r.Int64()] = true
	}
	// 400 draws over 8 values should hit every one of them.
	assert.Len(t, seen, 8)

	_, err := RandomRange(bi(5), bi(5))
	assert.ErrorIs(t, err, ErrBadRange)

	_, err = RandomRange(bi(6), bi(5))
	assert.ErrorIs(t, err, ErrBadRange)
}
