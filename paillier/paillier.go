// Package paillier implements the Paillier public-key cryptosystem:
// key generation, probabilistic encryption, decryption, and the additive
// homomorphic operations the encrypted-ballot flow relies on.
package paillier

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/arith"
)

var one = big.NewInt(1)

var (
	ErrKeygenFailure        = errors.New("paillier: key generation failed")
	ErrPlaintextOutOfRange  = errors.New("paillier: plaintext out of range")
	ErrCiphertextOutOfRange = errors.New("paillier: ciphertext out of range")
	ErrEmptyInput           = errors.New("paillier: empty ciphertext list")
	ErrNoPublicKey          = errors.New("paillier: no public key loaded")
	ErrNoPrivateKey         = errors.New("paillier: no private key loaded")
)

// PublicKey holds n = p*q, g = n+1 and the cached n².
type PublicKey struct {
	N        *big.Int
	G        *big.Int
	NSquared *big.Int
}

// PrivateKey holds lambda = lcm(p-1, q-1) and mu = L(g^lambda mod n²)^-1 mod n.
// The primes themselves are discarded at key generation.
type PrivateKey struct {
	Lambda *big.Int
	Mu     *big.Int
	N      *big.Int
}

// Encryption couples a ciphertext with the randomness that produced it.
// The randomness is consumed once more by proof generation and must be
// discarded afterwards; it must never be persisted or serialized.
type Encryption struct {
	Ciphertext *big.Int
	Randomness *big.Int
}

// GenerateKeyPair produces a fresh key pair from two distinct primes of
// keyBits/2 bits each whose product n has exactly keyBits bits. keyBits
// must be even and at least 16; mrRounds <= 0 selects the default
// Miller-Rabin round count.
func GenerateKeyPair(keyBits, mrRounds int) (*PublicKey, *PrivateKey, error) {
	if keyBits < 16 || keyBits%2 != 0 {
		return nil, nil, fmt.Errorf("%w: key size %d must be even and at least 16 bits", ErrKeygenFailure, keyBits)
	}
	if mrRounds <= 0 {
		mrRounds = arith.DefaultMillerRabinRounds
	}

	// The product of two k-bit primes has 2k-1 or 2k bits; redraw until
	// the modulus has the full key size.
	var p, q, n *big.Int
	for {
		var err error
		p, q, err = arith.GenerateTwoPrimes(keyBits/2, mrRounds)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrKeygenFailure, err)
		}
		n = new(big.Int).Mul(p, q)
		if n.BitLen() == keyBits {
			break
		}
	}

	nSquared := new(big.Int).Mul(n, n)
	g := new(big.Int).Add(n, one)

	pMinusOne := new(big.Int).Sub(p, one)
	qMinusOne := new(big.Int).Sub(q, one)
	lambda := arith.LCM(pMinusOne, qMinusOne)

	u, err := arith.ModPow(g, lambda, nSquared)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKeygenFailure, err)
	}
	mu, err := arith.ModInverse(arith.L(u, n), n)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKeygenFailure, err)
	}

	pub := &PublicKey{N: n, G: g, NSquared: nSquared}
	priv := &PrivateKey{Lambda: lambda, Mu: mu, N: n}
	return pub, priv, nil
}

// Encrypt produces c = g^m * r^n mod n² for m in [0, n), with r drawn
// uniformly from the units of Z_n. The randomness is returned alongside
// the ciphertext for later proof generation.
func Encrypt(pk *PublicKey, m *big.Int) (*Encryption, error) {
	if pk == nil {
		return nil, ErrNoPublicKey
	}
	if m == nil || m.Sign() < 0 || m.Cmp(pk.N) >= 0 {
		return nil, ErrPlaintextOutOfRange
	}

	r, err := sampleUnit(pk.N)
	if err != nil {
		return nil, err
	}

	gm, err := arith.ModPow(pk.G, m, pk.NSquared)
	if err != nil {
		return nil, err
	}
	rn, err := arith.ModPow(r, pk.N, pk.NSquared)
	if err != nil {
		return nil, err
	}

	c := gm.Mul(gm, rn)
	c.Mod(c, pk.NSquared)
	return &Encryption{Ciphertext: c, Randomness: r}, nil
}

// Decrypt recovers m = L(c^lambda mod n²) * mu mod n.
func Decrypt(sk *PrivateKey, c *big.Int) (*big.Int, error) {
	if sk == nil {
		return nil, ErrNoPrivateKey
	}
	nSquared := new(big.Int).Mul(sk.N, sk.N)
	if c == nil || c.Sign() <= 0 || c.Cmp(nSquared) >= 0 {
		return nil, ErrCiphertextOutOfRange
	}

	u, err := arith.ModPow(c, sk.Lambda, nSquared)
	if err != nil {
		return nil, err
	}
	m := arith.L(u, sk.N)
	m.Mul(m, sk.Mu)
	m.Mod(m, sk.N)
	return m, nil
}

// AddCiphertexts multiplies two ciphertexts mod n²; the result decrypts
// to (m1 + m2) mod n.
func AddCiphertexts(pk *PublicKey, c1, c2 *big.Int) (*big.Int, error) {
	if pk == nil {
		return nil, ErrNoPublicKey
	}
	if !IsValidCiphertext(pk, c1) || !IsValidCiphertext(pk, c2) {
		return nil, ErrCiphertextOutOfRange
	}
	sum := new(big.Int).Mul(c1, c2)
	return sum.Mod(sum, pk.NSquared), nil
}

// ScalarMul raises a ciphertext to a nonnegative scalar mod n²; the
// result decrypts to (k * m) mod n.
func ScalarMul(pk *PublicKey, c, k *big.Int) (*big.Int, error) {
	if pk == nil {
		return nil, ErrNoPublicKey
	}
	if !IsValidCiphertext(pk, c) {
		return nil, ErrCiphertextOutOfRange
	}
	return arith.ModPow(c, k, pk.NSquared)
}

// SumCiphertexts folds AddCiphertexts over a non-empty slice.
func SumCiphertexts(pk *PublicKey, cs []*big.Int) (*big.Int, error) {
	if len(cs) == 0 {
		return nil, ErrEmptyInput
	}
	sum := new(big.Int).Set(cs[0])
	for _, c := range cs[1:] {
		var err error
		sum, err = AddCiphertexts(pk, sum, c)
		if err != nil {
			return nil, err
		}
	}
	if !IsValidCiphertext(pk, sum) {
		return nil, ErrCiphertextOutOfRange
	}
	return sum, nil
}

// IsValidCiphertext reports whether 0 < c < n².
func IsValidCiphertext(pk *PublicKey, c *big.Int) bool {
	return c != nil && c.Sign() > 0 && c.Cmp(pk.NSquared) < 0
}

// sampleUnit draws r uniformly from [1, n) rejecting gcd(r, n) != 1.
func sampleUnit(n *big.Int) (*big.Int, error) {
	for {
		r, err := arith.RandomRange(one, n)
		if err != nil {
			return nil, err
		}
		if arith.GCD(r, n).Cmp(one) == 0 {
			return r, nil
		}
	}
}
