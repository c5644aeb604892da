package zkp

import (
	"math/big"
	"time"

	"github.com/macanepa/client-side-voting-encryption/paillier"
)

// VoteProof bundles the per-slot bit proofs and the sum-equals-one proof
// for a complete ballot.
type VoteProof struct {
	BitProofs []*BitProof
	SumProof  *SumProof
	Timestamp time.Time
	Type      string
}

// VerificationReport is the structured result of verifying a VoteProof.
// Verification never raises: a failing or malformed sub-proof is reported
// with a reason so the caller can surface granular diagnostics.
type VerificationReport struct {
	OverallValid    bool             `json:"overallValid"`
	BitProofsValid  bool             `json:"bitProofsValid"`
	BitProofResults []BitProofResult `json:"bitProofResults"`
	SumProofValid   bool             `json:"sumProofValid"`
	SumProofDetails SumProofDetails  `json:"sumProofDetails"`
}

// GenerateVoteProof produces one bit proof per slot plus the sum proof.
// The three slices must align index-by-index with the encryptions made
// for this ballot; the randomness must be the values captured at
// encryption time, never re-sampled.
func GenerateVoteProof(pk *paillier.PublicKey, cs []*big.Int, vs []int, Rs []*big.Int, oracle ChallengeOracle) (*VoteProof, error) {
	if pk == nil {
		return nil, paillier.ErrNoPublicKey
	}
	if len(cs) != len(vs) || len(cs) != len(Rs) {
		return nil, ErrLengthMismatch
	}
	if len(cs) == 0 {
		return nil, paillier.ErrEmptyInput
	}

	sum := 0
	for _, v := range vs {
		if v != 0 && v != 1 {
			return nil, ErrNotABit
		}
		sum += v
	}
	if sum != 1 {
		return nil, ErrSumNotOne
	}

	bitProofs := make([]*BitProof, 0, len(cs))
	for i := range cs {
		bp, err := ProveBitValue(pk, vs[i], cs[i], Rs[i], oracle)
		if err != nil {
			return nil, err
		}
		bitProofs = append(bitProofs, bp)
	}

	sumProof, err := ProveSumEqualsOne(pk, cs, Rs, oracle)
	if err != nil {
		return nil, err
	}

	return &VoteProof{
		BitProofs: bitProofs,
		SumProof:  sumProof,
		Timestamp: time.Now().UTC(),
		Type:      TypeVoteProof,
	}, nil
}

// VerifyVoteProof runs every bit verification, checks that the sum
// proof's encrypted sum equals the homomorphic product of the slot
// ciphertexts, then verifies the sum proof. It always returns a report.
func VerifyVoteProof(pk *paillier.PublicKey, vp *VoteProof, oracle ChallengeOracle) *VerificationReport {
	report := &VerificationReport{}
	if pk == nil || vp == nil || vp.Type != TypeVoteProof || len(vp.BitProofs) == 0 {
		report.SumProofDetails = SumProofDetails{Reason: ReasonMalformed}
		return report
	}

	report.BitProofsValid = true
	report.BitProofResults = make([]BitProofResult, 0, len(vp.BitProofs))
	for i, bp := range vp.BitProofs {
		result := VerifyBitProof(pk, bp, oracle)
		result.Index = i
		if !result.Valid {
			report.BitProofsValid = false
		}
		report.BitProofResults = append(report.BitProofResults, result)
	}

	report.SumProofDetails = verifySumAgainstSlots(pk, vp, oracle)
	report.SumProofValid = report.SumProofDetails.Valid
	report.OverallValid = report.BitProofsValid && report.SumProofValid
	return report
}

// verifySumAgainstSlots binds the sum proof to the slot ciphertexts
// before running the sigma checks: encryptedSum must be their product.
func verifySumAgainstSlots(pk *paillier.PublicKey, vp *VoteProof, oracle ChallengeOracle) SumProofDetails {
	if vp.SumProof == nil {
		return SumProofDetails{Reason: ReasonMalformed}
	}

	cs := make([]*big.Int, 0, len(vp.BitProofs))
	for _, bp := range vp.BitProofs {
		if bp == nil || !paillier.IsValidCiphertext(pk, bp.Ciphertext) {
			return SumProofDetails{Reason: ReasonMalformed}
		}
		cs = append(cs, bp.Ciphertext)
	}

	product, err := paillier.SumCiphertexts(pk, cs)
	if err != nil {
		return SumProofDetails{Reason: ReasonMalformed}
	}
	if vp.SumProof.EncryptedSum == nil || product.Cmp(vp.SumProof.EncryptedSum) != 0 {
		return SumProofDetails{Reason: ReasonSumMismatch}
	}

	return VerifySumProof(pk, vp.SumProof, oracle)
}
