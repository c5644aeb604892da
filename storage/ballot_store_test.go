package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macanepa/client-side-voting-encryption/models"
	"github.com/macanepa/client-side-voting-encryption/zkp"
)

func sampleBallot(id string) *StoredBallot {
	return &StoredBallot{
		ID:         id,
		ReceivedAt: time.Now().Unix(),
		Submission: &models.VoteSubmission{
			VoterID:   "voter-" + id,
			SessionID: "session-" + id,
		},
		Report: &zkp.VerificationReport{OverallValid: true, BitProofsValid: true, SumProofValid: true},
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBallotStore(dir)
	require.NoError(t, err)
	assert.Zero(t, store.Count())

	require.NoError(t, store.SaveBallot(sampleBallot("1")))
	require.NoError(t, store.SaveBallot(sampleBallot("2")))

	ballots := store.LoadBallots()
	require.Len(t, ballots, 2)
	assert.Equal(t, "voter-1", ballots[0].Submission.VoterID)
	assert.True(t, ballots[0].Report.OverallValid)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBallotStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveBallot(sampleBallot("1")))

	reopened, err := NewBallotStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())
	assert.Equal(t, "voter-1", reopened.LoadBallots()[0].Submission.VoterID)
}

func TestLoadBallotsReturnsCopy(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBallotStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveBallot(sampleBallot("1")))

	ballots := store.LoadBallots()
	ballots[0] = nil
	assert.NotNil(t, store.LoadBallots()[0])
}
