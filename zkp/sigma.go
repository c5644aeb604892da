// Package zkp produces and verifies the non-interactive zero-knowledge
// proofs attached to an encrypted ballot: a disjunctive 0/1 proof per
// ciphertext slot and a sum-equals-one proof over their homomorphic
// product, both made non-interactive with the Fiat-Shamir transform.
package zkp

import (
	"errors"
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/arith"
	"github.com/macanepa/client-side-voting-encryption/paillier"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

var (
	ErrLengthMismatch = errors.New("zkp: ciphertexts, values and randomness differ in length")
	ErrNotABit        = errors.New("zkp: slot value is not 0 or 1")
	ErrSumNotOne      = errors.New("zkp: slot values do not sum to one")
)

// Proof type tags; these are wire-stable and appear in the submission
// payload unchanged.
const (
	TypeBitValue     = "bit-value"
	TypeSumEqualsOne = "sum-equals-one"
	TypeVoteProof    = "complete-vote-proof"
)

// Verification failure reasons reported by the structured verdicts.
const (
	ReasonMalformed         = "malformed"
	ReasonChallengeMismatch = "challenge-mismatch"
	ReasonVerifyFailed      = "verify-failed"
	ReasonSumMismatch       = "encrypted-sum-mismatch"
)

// SigmaTriple is one branch of a sigma-protocol transcript: commitment a,
// challenge share e, scalar response z and randomness response rResponse.
type SigmaTriple struct {
	A         *big.Int
	E         *big.Int
	Z         *big.Int
	RResponse *big.Int
}

// sigmaHolds checks the verification equation
//
//	g^z * rResponse^n = a * c^e  (mod n²)
func sigmaHolds(pk *paillier.PublicKey, t *SigmaTriple, c *big.Int) bool {
	gz, err := arith.ModPow(pk.G, t.Z, pk.NSquared)
	if err != nil {
		return false
	}
	rn, err := arith.ModPow(t.RResponse, pk.N, pk.NSquared)
	if err != nil {
		return false
	}
	lhs := gz.Mul(gz, rn)
	lhs.Mod(lhs, pk.NSquared)

	ce, err := arith.ModPow(c, t.E, pk.NSquared)
	if err != nil {
		return false
	}
	rhs := ce.Mul(ce, t.A)
	rhs.Mod(rhs, pk.NSquared)

	return lhs.Cmp(rhs) == 0
}

// tripleWellFormed checks the range invariants of a transcript branch:
// 0 <= a < n² and e, z, rResponse in [0, n).
func tripleWellFormed(pk *paillier.PublicKey, t *SigmaTriple) bool {
	if t == nil || t.A == nil || t.E == nil || t.Z == nil || t.RResponse == nil {
		return false
	}
	if t.A.Sign() < 0 || t.A.Cmp(pk.NSquared) >= 0 {
		return false
	}
	for _, v := range []*big.Int{t.E, t.Z, t.RResponse} {
		if v.Sign() < 0 || v.Cmp(pk.N) >= 0 {
			return false
		}
	}
	return true
}

// respond computes the prover responses for claimed plaintext v:
// z = s + e*v mod n and rResponse = rPrime * R^e mod n.
func respond(pk *paillier.PublicKey, s, rPrime, R, e *big.Int, v int64) (*big.Int, *big.Int, error) {
	z := new(big.Int).Mul(e, big.NewInt(v))
	z.Add(z, s)
	z.Mod(z, pk.N)

	re, err := arith.ModPow(R, e, pk.N)
	if err != nil {
		return nil, nil, err
	}
	rResp := re.Mul(re, rPrime)
	rResp.Mod(rResp, pk.N)
	return z, rResp, nil
}

// commit builds a fresh commitment a = g^s * rPrime^n mod n² with
// s, rPrime drawn from [1, n).
func commit(pk *paillier.PublicKey) (a, s, rPrime *big.Int, err error) {
	s, err = arith.RandomRange(one, pk.N)
	if err != nil {
		return nil, nil, nil, err
	}
	rPrime, err = arith.RandomRange(one, pk.N)
	if err != nil {
		return nil, nil, nil, err
	}
	gs, err := arith.ModPow(pk.G, s, pk.NSquared)
	if err != nil {
		return nil, nil, nil, err
	}
	rn, err := arith.ModPow(rPrime, pk.N, pk.NSquared)
	if err != nil {
		return nil, nil, nil, err
	}
	a = gs.Mul(gs, rn)
	a.Mod(a, pk.NSquared)
	return a, s, rPrime, nil
}
