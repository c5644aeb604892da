package arith

import "math/big"

// DefaultMillerRabinRounds bounds the false-positive probability of
// IsProbablePrime at 4^-10.
const DefaultMillerRabinRounds = 10

// IsProbablePrime runs Miller-Rabin with k witnesses drawn uniformly
// from [2, n-1). It answers immediately for n < 4 and even n.
func IsProbablePrime(n *big.Int, k int) (bool, error) {
	if n == nil || n.Cmp(two) < 0 {
		return false, nil
	}
	if n.Cmp(two) == 0 || n.Cmp(three) == 0 {
		return true, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}
	if k <= 0 {
		k = DefaultMillerRabinRounds
	}

	// n-1 = d * 2^r with d odd.
	nMinusOne := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nMinusOne)
	r := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		r++
	}

	x := new(big.Int)
	for i := 0; i < k; i++ {
		a, err := RandomRange(two, nMinusOne)
		if err != nil {
			return false, err
		}
		x.Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinusOne) == 0 {
			continue
		}
		composite := true
		for j := 0; j < r-1; j++ {
			x.Mul(x, x)
			x.Mod(x, n)
			if x.Cmp(nMinusOne) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false, nil
		}
	}
	return true, nil
}

// GeneratePrime samples random candidates of exactly the requested bit
// length, forcing the top and bottom bits, until one passes Miller-Rabin.
func GeneratePrime(bits, rounds int) (*big.Int, error) {
	if bits < 2 {
		return nil, ErrBadRange
	}
	for {
		p, err := RandomBits(bits)
		if err != nil {
			return nil, err
		}
		p.SetBit(p, bits-1, 1)
		p.SetBit(p, 0, 1)
		ok, err := IsProbablePrime(p, rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return p, nil
		}
	}
}

// GenerateTwoPrimes generates two independent primes of the given bit
// length, rejecting the (vanishingly unlikely) collision p = q.
func GenerateTwoPrimes(bits, rounds int) (p, q *big.Int, err error) {
	p, err = GeneratePrime(bits, rounds)
	if err != nil {
		return nil, nil, err
	}
	for {
		q, err = GeneratePrime(bits, rounds)
		if err != nil {
			return nil, nil, err
		}
		if p.Cmp(q) != 0 {
			return p, q, nil
		}
	}
}
