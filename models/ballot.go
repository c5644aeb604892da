// Package models defines the wire types for ballot submission. All
// integers travel as base-10 strings so the payload survives platforms
// with bounded numerics, and the field names are stable contract.
package models

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/macanepa/client-side-voting-encryption/ballot"
	"github.com/macanepa/client-side-voting-encryption/paillier"
	"github.com/macanepa/client-side-voting-encryption/zkp"
)

// PublicKeyJSON is the decimal-string form of a Paillier public key.
type PublicKeyJSON struct {
	N        string `json:"n"`
	G        string `json:"g"`
	NSquared string `json:"nSquared"`
}

// EncryptedVote is one candidate slot of the submission.
type EncryptedVote struct {
	CandidateID   int    `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	Ciphertext    string `json:"ciphertext"`
}

// SigmaTripleJSON is one sigma-protocol branch in wire form.
type SigmaTripleJSON struct {
	A         string `json:"a"`
	E         string `json:"e"`
	Z         string `json:"z"`
	RResponse string `json:"rResponse"`
}

// BitProofJSON is the wire form of a per-slot 0/1 proof.
type BitProofJSON struct {
	CandidateID int             `json:"candidateId"`
	Proof0      SigmaTripleJSON `json:"proof0"`
	Proof1      SigmaTripleJSON `json:"proof1"`
	Ciphertext  string          `json:"ciphertext"`
}

// SumProofJSON is the wire form of the sum-equals-one proof.
type SumProofJSON struct {
	EncryptedSum string `json:"encryptedSum"`
	ExpectedSum  string `json:"expectedSum"`
	A            string `json:"a"`
	E            string `json:"e"`
	Z            string `json:"z"`
	RResponse    string `json:"rResponse"`
}

// ZKPProofs groups the proofs attached to a submission.
type ZKPProofs struct {
	BitProofs []BitProofJSON `json:"bitProofs"`
	SumProof  SumProofJSON   `json:"sumProof"`
}

// VoteSubmission is the complete ballot submission payload.
type VoteSubmission struct {
	Timestamp      string          `json:"timestamp"`
	VoterID        string          `json:"voterId"`
	SessionID      string          `json:"sessionId"`
	PublicKey      PublicKeyJSON   `json:"publicKey"`
	EncryptedVotes []EncryptedVote `json:"encryptedVotes"`
	ZKPProofs      ZKPProofs       `json:"zkpProofs"`
}

// SubmissionResponse is the authority's answer to a submission.
type SubmissionResponse struct {
	Accepted bool                    `json:"accepted"`
	Receipt  string                  `json:"receipt,omitempty"`
	Report   *zkp.VerificationReport `json:"report"`
}

// NewVoteSubmission converts a ballot package into the wire payload.
// candidateNames may be nil; a fresh session ID is generated.
func NewVoteSubmission(pkg *ballot.BallotPackage, voterID string, candidateNames []string) (*VoteSubmission, error) {
	if pkg == nil || pkg.PublicKey == nil || pkg.Proof == nil {
		return nil, fmt.Errorf("models: incomplete ballot package")
	}
	if len(pkg.Ciphertexts) != len(pkg.Proof.BitProofs) {
		return nil, fmt.Errorf("models: ciphertext and proof counts differ")
	}

	sub := &VoteSubmission{
		Timestamp: pkg.Proof.Timestamp.UTC().Format(time.RFC3339),
		VoterID:   voterID,
		SessionID: uuid.New().String(),
		PublicKey: PublicKeyJSON{
			N:        pkg.PublicKey.N.String(),
			G:        pkg.PublicKey.G.String(),
			NSquared: pkg.PublicKey.NSquared.String(),
		},
	}
	if sub.Timestamp == "" || pkg.Proof.Timestamp.IsZero() {
		sub.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	for i, c := range pkg.Ciphertexts {
		name := ""
		if i < len(candidateNames) {
			name = candidateNames[i]
		}
		sub.EncryptedVotes = append(sub.EncryptedVotes, EncryptedVote{
			CandidateID:   i,
			CandidateName: name,
			Ciphertext:    c.String(),
		})
	}

	for i, bp := range pkg.Proof.BitProofs {
		sub.ZKPProofs.BitProofs = append(sub.ZKPProofs.BitProofs, BitProofJSON{
			CandidateID: i,
			Proof0:      tripleToJSON(bp.Proof0),
			Proof1:      tripleToJSON(bp.Proof1),
			Ciphertext:  bp.Ciphertext.String(),
		})
	}

	sp := pkg.Proof.SumProof
	sub.ZKPProofs.SumProof = SumProofJSON{
		EncryptedSum: sp.EncryptedSum.String(),
		ExpectedSum:  sp.ExpectedSum.String(),
		A:            sp.A.String(),
		E:            sp.E.String(),
		Z:            sp.Z.String(),
		RResponse:    sp.RResponse.String(),
	}
	return sub, nil
}

// BallotPackage rebuilds the in-memory package from the wire payload.
// Malformed decimal strings surface as errors here; the collection
// server answers them with a malformed verdict report.
func (s *VoteSubmission) BallotPackage() (*ballot.BallotPackage, error) {
	n, err := parseDec("publicKey.n", s.PublicKey.N)
	if err != nil {
		return nil, err
	}
	g, err := parseDec("publicKey.g", s.PublicKey.G)
	if err != nil {
		return nil, err
	}
	nSquared, err := parseDec("publicKey.nSquared", s.PublicKey.NSquared)
	if err != nil {
		return nil, err
	}

	if len(s.EncryptedVotes) != len(s.ZKPProofs.BitProofs) {
		return nil, fmt.Errorf("models: %d encrypted votes but %d bit proofs", len(s.EncryptedVotes), len(s.ZKPProofs.BitProofs))
	}

	pkg := &ballot.BallotPackage{
		PublicKey: &paillier.PublicKey{N: n, G: g, NSquared: nSquared},
	}
	for _, ev := range s.EncryptedVotes {
		c, err := parseDec("encryptedVotes.ciphertext", ev.Ciphertext)
		if err != nil {
			return nil, err
		}
		pkg.Ciphertexts = append(pkg.Ciphertexts, c)
	}

	proof := &zkp.VoteProof{Type: zkp.TypeVoteProof}
	if ts, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
		proof.Timestamp = ts
	}
	for _, bj := range s.ZKPProofs.BitProofs {
		p0, err := tripleFromJSON(bj.Proof0)
		if err != nil {
			return nil, err
		}
		p1, err := tripleFromJSON(bj.Proof1)
		if err != nil {
			return nil, err
		}
		c, err := parseDec("bitProofs.ciphertext", bj.Ciphertext)
		if err != nil {
			return nil, err
		}
		proof.BitProofs = append(proof.BitProofs, &zkp.BitProof{
			Proof0:     p0,
			Proof1:     p1,
			Ciphertext: c,
			Type:       zkp.TypeBitValue,
		})
	}

	sj := s.ZKPProofs.SumProof
	encryptedSum, err := parseDec("sumProof.encryptedSum", sj.EncryptedSum)
	if err != nil {
		return nil, err
	}
	expectedSum, err := parseDec("sumProof.expectedSum", sj.ExpectedSum)
	if err != nil {
		return nil, err
	}
	a, err := parseDec("sumProof.a", sj.A)
	if err != nil {
		return nil, err
	}
	e, err := parseDec("sumProof.e", sj.E)
	if err != nil {
		return nil, err
	}
	z, err := parseDec("sumProof.z", sj.Z)
	if err != nil {
		return nil, err
	}
	rResp, err := parseDec("sumProof.rResponse", sj.RResponse)
	if err != nil {
		return nil, err
	}
	proof.SumProof = &zkp.SumProof{
		EncryptedSum: encryptedSum,
		ExpectedSum:  expectedSum,
		A:            a,
		E:            e,
		Z:            z,
		RResponse:    rResp,
		Type:         zkp.TypeSumEqualsOne,
	}

	pkg.Proof = proof
	return pkg, nil
}

func tripleToJSON(t *zkp.SigmaTriple) SigmaTripleJSON {
	return SigmaTripleJSON{
		A:         t.A.String(),
		E:         t.E.String(),
		Z:         t.Z.String(),
		RResponse: t.RResponse.String(),
	}
}

func tripleFromJSON(j SigmaTripleJSON) (*zkp.SigmaTriple, error) {
	a, err := parseDec("proof.a", j.A)
	if err != nil {
		return nil, err
	}
	e, err := parseDec("proof.e", j.E)
	if err != nil {
		return nil, err
	}
	z, err := parseDec("proof.z", j.Z)
	if err != nil {
		return nil, err
	}
	r, err := parseDec("proof.rResponse", j.RResponse)
	if err != nil {
		return nil, err
	}
	return &zkp.SigmaTriple{A: a, E: e, Z: z, RResponse: r}, nil
}

func parseDec(field, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("models: %s is not a decimal integer: %q", field, s)
	}
	return v, nil
}
