// Package arith provides the number-theory primitives the Paillier engine
// and the proof layer are built on: modular exponentiation and inversion,
// gcd/lcm, probabilistic primality testing and uniform random sampling.
//
// Every modular result lies in [0, m); failures are reported as the named
// sentinel errors below and can be matched with errors.Is.
package arith

import (
	"errors"
	"math/big"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

var (
	// ErrBadRange reports an empty or inverted sampling range, a negative
	// bit count, or a modulus below 1.
	ErrBadRange = errors.New("arith: bad range")

	// ErrNoInverse reports that gcd(a, m) != 1, so a has no inverse mod m.
	ErrNoInverse = errors.New("arith: no modular inverse")

	// ErrEntropyUnavailable reports that the system entropy source failed.
	ErrEntropyUnavailable = errors.New("arith: entropy source unavailable")
)

// ModPow returns b^e mod m for m >= 1 and e >= 0. ModPow(b, e, 1) is 0.
func ModPow(b, e, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() < 1 {
		return nil, ErrBadRange
	}
	if e == nil || e.Sign() < 0 {
		return nil, ErrBadRange
	}
	if m.Cmp(one) == 0 {
		return new(big.Int), nil
	}
	base := new(big.Int).Mod(b, m)
	return base.Exp(base, e, m), nil
}

// ExtGCD returns (g, x, y) such that a*x + b*y = g with g >= 0.
func ExtGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	for r.Sign() != 0 {
		q := new(big.Int).Quo(oldR, r)
		oldR, r = r, new(big.Int).Sub(oldR, new(big.Int).Mul(q, r))
		oldS, s = s, new(big.Int).Sub(oldS, new(big.Int).Mul(q, s))
		oldT, t = t, new(big.Int).Sub(oldT, new(big.Int).Mul(q, t))
	}
	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModInverse returns a^-1 mod m in [0, m). It fails with ErrNoInverse
// when gcd(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() < 1 {
		return nil, ErrBadRange
	}
	reduced := new(big.Int).Mod(a, m)
	g, x, _ := ExtGCD(reduced, m)
	if g.Cmp(one) != 0 {
		return nil, ErrNoInverse
	}
	return x.Mod(x, m), nil
}

// GCD returns the greatest common divisor of |a| and |b|.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	if x.Sign() == 0 {
		return y
	}
	if y.Sign() == 0 {
		return x
	}
	return new(big.Int).GCD(nil, nil, x, y)
}

// LCM returns the least common multiple of |a| and |b|; LCM(0, x) is 0.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	l := new(big.Int).Div(new(big.Int).Abs(a), GCD(a, b))
	return l.Mul(l, new(big.Int).Abs(b))
}

// BitLength returns the length of n in bits; BitLength(0) is 0.
func BitLength(n *big.Int) int {
	return n.BitLen()
}

// L computes the Paillier decryption auxiliary (x-1)/n. The caller
// guarantees x = 1 (mod n) so the division is exact.
func L(x, n *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Sub(x, one), n)
}
