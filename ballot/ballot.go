// Package ballot coordinates the encrypted-ballot flow for a fixed
// candidate slate: it drives Paillier encryption of each selection slot,
// hands the captured randomness to the proof engine, and packages the
// result. It also provides the authority-side verify, aggregate and
// tally operations.
package ballot

import (
	"errors"
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/paillier"
	"github.com/macanepa/client-side-voting-encryption/zkp"
)

var (
	// ErrEmptySelection rejects a ballot with no chosen candidate before
	// proof generation can fail on it.
	ErrEmptySelection = errors.New("ballot: selection contains no chosen candidate")

	// ErrSelectionLength reports a selection vector whose width does not
	// match the configured candidate count.
	ErrSelectionLength = errors.New("ballot: selection length does not match candidate count")
)

// Config carries the orchestrator tunables.
type Config struct {
	CandidateCount int
	Oracle         zkp.ChallengeOracle // defaults to zkp.KeccakOracle
}

// Orchestrator owns the voter- and authority-side ballot operations for
// one election. It borrows the engine's keys; it never copies them.
type Orchestrator struct {
	engine         *paillier.Engine
	oracle         zkp.ChallengeOracle
	candidateCount int
}

// BallotPackage is what the voter ships: the public key it encrypted
// under, one ciphertext per candidate, and the complete vote proof.
// Per-slot randomness is consumed during proof generation and does not
// appear here.
type BallotPackage struct {
	PublicKey   *paillier.PublicKey
	Ciphertexts []*big.Int
	Proof       *zkp.VoteProof
}

// TallyResult is the decrypted outcome: one count per candidate slot and
// the decrypted homomorphic total.
type TallyResult struct {
	PerSlot []*big.Int
	Total   *big.Int
}

// New builds an orchestrator around an engine.
func New(engine *paillier.Engine, cfg Config) (*Orchestrator, error) {
	if cfg.CandidateCount < 1 {
		return nil, errors.New("ballot: candidate count must be positive")
	}
	oracle := cfg.Oracle
	if oracle == nil {
		oracle = zkp.KeccakOracle{}
	}
	return &Orchestrator{
		engine:         engine,
		oracle:         oracle,
		candidateCount: cfg.CandidateCount,
	}, nil
}

// EncryptAndProve encrypts the selection vector slot by slot and attaches
// the zero-knowledge proofs. Selections with no chosen candidate are
// rejected up front; selections with more than one chosen candidate fail
// proof generation with zkp.ErrSumNotOne.
func (o *Orchestrator) EncryptAndProve(selection []bool) (*BallotPackage, error) {
	pk := o.engine.PublicKey()
	if pk == nil {
		return nil, paillier.ErrNoPublicKey
	}
	if len(selection) != o.candidateCount {
		return nil, ErrSelectionLength
	}

	chosen := 0
	for _, sel := range selection {
		if sel {
			chosen++
		}
	}
	if chosen == 0 {
		return nil, ErrEmptySelection
	}

	cs := make([]*big.Int, 0, len(selection))
	vs := make([]int, 0, len(selection))
	Rs := make([]*big.Int, 0, len(selection))
	for _, sel := range selection {
		v := 0
		if sel {
			v = 1
		}
		enc, err := paillier.Encrypt(pk, big.NewInt(int64(v)))
		if err != nil {
			wipe(Rs)
			return nil, err
		}
		cs = append(cs, enc.Ciphertext)
		vs = append(vs, v)
		Rs = append(Rs, enc.Randomness)
	}

	proof, err := zkp.GenerateVoteProof(pk, cs, vs, Rs, o.oracle)
	wipe(Rs)
	if err != nil {
		return nil, err
	}

	return &BallotPackage{
		PublicKey:   pk,
		Ciphertexts: cs,
		Proof:       proof,
	}, nil
}

// Verify checks a ballot package against its embedded public key. It is
// pure and stateless: it needs no engine keys and never raises — a
// malformed package yields a report with OverallValid false.
func Verify(pkg *BallotPackage, oracle zkp.ChallengeOracle) *zkp.VerificationReport {
	if oracle == nil {
		oracle = zkp.KeccakOracle{}
	}
	if pkg == nil || pkg.PublicKey == nil || pkg.Proof == nil {
		return &zkp.VerificationReport{
			SumProofDetails: zkp.SumProofDetails{Reason: zkp.ReasonMalformed},
		}
	}
	if len(pkg.Ciphertexts) != len(pkg.Proof.BitProofs) {
		return &zkp.VerificationReport{
			SumProofDetails: zkp.SumProofDetails{Reason: zkp.ReasonMalformed},
		}
	}
	for i, c := range pkg.Ciphertexts {
		bp := pkg.Proof.BitProofs[i]
		if bp == nil || bp.Ciphertext == nil || c == nil || bp.Ciphertext.Cmp(c) != 0 {
			return &zkp.VerificationReport{
				SumProofDetails: zkp.SumProofDetails{Reason: zkp.ReasonMalformed},
			}
		}
	}
	return zkp.VerifyVoteProof(pkg.PublicKey, pkg.Proof, oracle)
}

// Verify checks a ballot package using the orchestrator's oracle.
func (o *Orchestrator) Verify(pkg *BallotPackage) *zkp.VerificationReport {
	return Verify(pkg, o.oracle)
}

// AggregateBallots multiplies verified ballots slot by slot, producing
// one aggregated ciphertext per candidate. Every ballot must have the
// configured width.
func (o *Orchestrator) AggregateBallots(ballots [][]*big.Int) ([]*big.Int, error) {
	pk := o.engine.PublicKey()
	if pk == nil {
		return nil, paillier.ErrNoPublicKey
	}
	if len(ballots) == 0 {
		return nil, paillier.ErrEmptyInput
	}

	sums := make([]*big.Int, o.candidateCount)
	for _, b := range ballots {
		if len(b) != o.candidateCount {
			return nil, ErrSelectionLength
		}
		for i, c := range b {
			if sums[i] == nil {
				sums[i] = new(big.Int).Set(c)
				continue
			}
			var err error
			sums[i], err = paillier.AddCiphertexts(pk, sums[i], c)
			if err != nil {
				return nil, err
			}
		}
	}
	return sums, nil
}

// Tally decrypts one aggregated ciphertext per slot plus the homomorphic
// sum of all slots. The decrypted total always equals the sum of the
// per-slot counts.
func (o *Orchestrator) Tally(cs []*big.Int) (*TallyResult, error) {
	sk := o.engine.PrivateKey()
	if sk == nil {
		return nil, paillier.ErrNoPrivateKey
	}
	pk := o.engine.PublicKey()
	if pk == nil {
		return nil, paillier.ErrNoPublicKey
	}
	if len(cs) == 0 {
		return nil, paillier.ErrEmptyInput
	}

	perSlot := make([]*big.Int, 0, len(cs))
	for _, c := range cs {
		m, err := paillier.Decrypt(sk, c)
		if err != nil {
			return nil, err
		}
		perSlot = append(perSlot, m)
	}

	sum, err := paillier.SumCiphertexts(pk, cs)
	if err != nil {
		return nil, err
	}
	total, err := paillier.Decrypt(sk, sum)
	if err != nil {
		return nil, err
	}

	return &TallyResult{PerSlot: perSlot, Total: total}, nil
}

// SelectAll returns a selection with every candidate chosen. It is a
// diagnostic knob: the resulting ballot deliberately fails the
// sum-equals-one constraint.
func SelectAll(candidateCount int) []bool {
	selection := make([]bool, candidateCount)
	for i := range selection {
		selection[i] = true
	}
	return selection
}

// wipe zeroes captured encryption randomness once proofs are done.
func wipe(Rs []*big.Int) {
	for _, r := range Rs {
		if r != nil {
			r.SetInt64(0)
		}
	}
}
