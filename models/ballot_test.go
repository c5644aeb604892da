package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macanepa/client-side-voting-encryption/ballot"
	"github.com/macanepa/client-side-voting-encryption/paillier"
)

func testPackage(t *testing.T) (*ballot.Orchestrator, *ballot.BallotPackage) {
	t.Helper()
	pub, priv, err := paillier.GenerateKeyPair(256, 10)
	require.NoError(t, err)

	engine, err := paillier.NewEngine(paillier.Config{})
	require.NoError(t, err)
	require.NoError(t, engine.ImportKeyPair(pub, priv))

	orch, err := ballot.New(engine, ballot.Config{CandidateCount: 3})
	require.NoError(t, err)

	pkg, err := orch.EncryptAndProve([]bool{false, true, false})
	require.NoError(t, err)
	return orch, pkg
}

func TestSubmissionRoundTrip(t *testing.T) {
	orch, pkg := testPackage(t)

	sub, err := NewVoteSubmission(pkg, "voter-1", []string{"alice", "bob", "carol"})
	require.NoError(t, err)
	assert.Equal(t, "voter-1", sub.VoterID)
	assert.NotEmpty(t, sub.SessionID)
	assert.NotEmpty(t, sub.Timestamp)
	require.Len(t, sub.EncryptedVotes, 3)
	assert.Equal(t, "bob", sub.EncryptedVotes[1].CandidateName)
	assert.Equal(t, "1", sub.ZKPProofs.SumProof.ExpectedSum)

	// Wire round trip through JSON.
	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	var decoded VoteSubmission
	require.NoError(t, json.Unmarshal(raw, &decoded))

	rebuilt, err := decoded.BallotPackage()
	require.NoError(t, err)
	report := orch.Verify(rebuilt)
	assert.True(t, report.OverallValid, "rebuilt package must still verify")
}

// The payload field names are a wire contract; renaming any of them
// breaks external consumers.
func TestSubmissionFieldNames(t *testing.T) {
	_, pkg := testPackage(t)

	sub, err := NewVoteSubmission(pkg, "voter-1", nil)
	require.NoError(t, err)
	raw, err := json.Marshal(sub)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"timestamp", "voterId", "sessionId", "publicKey", "encryptedVotes", "zkpProofs"} {
		assert.Contains(t, m, key)
	}

	pkMap := m["publicKey"].(map[string]any)
	for _, key := range []string{"n", "g", "nSquared"} {
		assert.Contains(t, pkMap, key)
	}

	proofs := m["zkpProofs"].(map[string]any)
	assert.Contains(t, proofs, "bitProofs")
	assert.Contains(t, proofs, "sumProof")

	bit := proofs["bitProofs"].([]any)[0].(map[string]any)
	for _, key := range []string{"candidateId", "proof0", "proof1", "ciphertext"} {
		assert.Contains(t, bit, key)
	}
	branch := bit["proof0"].(map[string]any)
	for _, key := range []string{"a", "e", "z", "rResponse"} {
		assert.Contains(t, branch, key)
	}

	sum := proofs["sumProof"].(map[string]any)
	for _, key := range []string{"encryptedSum", "expectedSum", "a", "e", "z", "rResponse"} {
		assert.Contains(t, sum, key)
	}
}

func TestBallotPackageRejectsBadDecimal(t *testing.T) {
	_, pkg := testPackage(t)

	sub, err := NewVoteSubmission(pkg, "voter-1", nil)
	require.NoError(t, err)

	sub.ZKPProofs.SumProof.Z = "not-a-number"
	_, err = sub.BallotPackage()
	assert.Error(t, err)

	sub2, err := NewVoteSubmission(pkg, "voter-1", nil)
	require.NoError(t, err)
	sub2.PublicKey.N = ""
	_, err = sub2.BallotPackage()
	assert.Error(t, err)
}

func TestNewVoteSubmissionRejectsIncomplete(t *testing.T) {
	_, err := NewVoteSubmission(nil, "voter-1", nil)
	assert.Error(t, err)
}

// A tampered decimal field still decodes, but verification rejects it.
func TestTamperSurvivesDecodeFailsVerify(t *testing.T) {
	orch, pkg := testPackage(t)

	sub, err := NewVoteSubmission(pkg, "voter-1", nil)
	require.NoError(t, err)
	sub.ZKPProofs.BitProofs[0].Proof0.Z = "12345"

	rebuilt, err := sub.BallotPackage()
	require.NoError(t, err)
	report := orch.Verify(rebuilt)
	assert.False(t, report.OverallValid)
}
