package zkp

import (
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/paillier"
)

// SumProof proves that the homomorphic product of the slot ciphertexts
// encrypts exactly one: a single sigma-protocol run against the combined
// randomness, no disjunction needed since the expected value is fixed.
type SumProof struct {
	EncryptedSum *big.Int
	ExpectedSum  *big.Int
	A            *big.Int
	E            *big.Int
	Z            *big.Int
	RResponse    *big.Int
	Type         string
}

// SumProofDetails is the structured verdict for a sum proof.
type SumProofDetails struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ProveSumEqualsOne combines the slot ciphertexts and their randomness
// and proves the product encrypts 1. The caller guarantees the plaintexts
// actually sum to one; with any other sum the resulting proof will not
// verify.
func ProveSumEqualsOne(pk *paillier.PublicKey, cs, Rs []*big.Int, oracle ChallengeOracle) (*SumProof, error) {
	if pk == nil {
		return nil, paillier.ErrNoPublicKey
	}
	if len(cs) != len(Rs) {
		return nil, ErrLengthMismatch
	}

	encryptedSum, err := paillier.SumCiphertexts(pk, cs)
	if err != nil {
		return nil, err
	}

	combined := new(big.Int).Set(one)
	for _, r := range Rs {
		combined.Mul(combined, r)
		combined.Mod(combined, pk.N)
	}

	a, s, rPrime, err := commit(pk)
	if err != nil {
		return nil, err
	}

	e := oracle.Challenge(pk, TypeSumEqualsOne, encryptedSum, a, one)
	z, rResp, err := respond(pk, s, rPrime, combined, e, 1)
	if err != nil {
		return nil, err
	}

	return &SumProof{
		EncryptedSum: encryptedSum,
		ExpectedSum:  big.NewInt(1),
		A:            a,
		E:            e,
		Z:            z,
		RResponse:    rResp,
		Type:         TypeSumEqualsOne,
	}, nil
}

// VerifySumProof checks a sum proof against the embedded encrypted sum
// and reports a structured verdict.
func VerifySumProof(pk *paillier.PublicKey, sp *SumProof, oracle ChallengeOracle) SumProofDetails {
	if pk == nil || sp == nil || sp.Type != TypeSumEqualsOne {
		return SumProofDetails{Reason: ReasonMalformed}
	}
	if sp.ExpectedSum == nil || sp.ExpectedSum.Cmp(one) != 0 {
		return SumProofDetails{Reason: ReasonMalformed}
	}
	if !paillier.IsValidCiphertext(pk, sp.EncryptedSum) {
		return SumProofDetails{Reason: ReasonMalformed}
	}
	triple := &SigmaTriple{A: sp.A, E: sp.E, Z: sp.Z, RResponse: sp.RResponse}
	if !tripleWellFormed(pk, triple) {
		return SumProofDetails{Reason: ReasonMalformed}
	}

	expected := oracle.Challenge(pk, TypeSumEqualsOne, sp.EncryptedSum, sp.A, one)
	if expected.Cmp(sp.E) != 0 {
		return SumProofDetails{Reason: ReasonChallengeMismatch}
	}

	if !sigmaHolds(pk, triple, sp.EncryptedSum) {
		return SumProofDetails{Reason: ReasonVerifyFailed}
	}
	return SumProofDetails{Valid: true}
}
