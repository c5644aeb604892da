package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macanepa/client-side-voting-encryption/ballot"
	"github.com/macanepa/client-side-voting-encryption/models"
	"github.com/macanepa/client-side-voting-encryption/paillier"
	"github.com/macanepa/client-side-voting-encryption/submission"
)

var testCandidates = []string{"alice", "bob", "carol"}

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := NewServer(Config{
		StoragePath: t.TempDir(),
		Candidates:  testCandidates,
		KeyBits:     paillier.MinKeyBits,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

// fetchElectionKey plays the voter's key-discovery step.
func fetchElectionKey(t *testing.T, baseURL string) *paillier.PublicKey {
	t.Helper()
	resp, err := http.Get(baseURL + "/api/publickey")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PublicKeyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	n, ok := new(big.Int).SetString(body.PublicKey.N, 10)
	require.True(t, ok)
	g, ok := new(big.Int).SetString(body.PublicKey.G, 10)
	require.True(t, ok)
	nSquared, ok := new(big.Int).SetString(body.PublicKey.NSquared, 10)
	require.True(t, ok)
	return &paillier.PublicKey{N: n, G: g, NSquared: nSquared}
}

// voterSubmission builds a full voter-side submission for a selection.
func voterSubmission(t *testing.T, pk *paillier.PublicKey, selection []bool) *models.VoteSubmission {
	t.Helper()
	engine, err := paillier.NewEngine(paillier.Config{})
	require.NoError(t, err)
	require.NoError(t, engine.ImportPublicKey(pk))

	orch, err := ballot.New(engine, ballot.Config{CandidateCount: len(selection)})
	require.NoError(t, err)

	pkg, err := orch.EncryptAndProve(selection)
	require.NoError(t, err)

	sub, err := models.NewVoteSubmission(pkg, "voter-1", testCandidates)
	require.NoError(t, err)
	return sub
}

func TestBallotFlowEndToEnd(t *testing.T) {
	srv, ts := testServer(t)

	pk := fetchElectionKey(t, ts.URL)
	client := submission.NewClient(ts.URL+"/api/ballots", nil)

	// Two voters for carol, one for alice.
	for _, sel := range [][]bool{
		{false, false, true},
		{false, false, true},
		{true, false, false},
	} {
		resp, err := client.Submit(context.Background(), voterSubmission(t, pk, sel))
		require.NoError(t, err)
		assert.True(t, resp.Accepted)
		assert.NotEmpty(t, resp.Receipt)
		assert.True(t, resp.Report.OverallValid)
	}

	// Results reflect the homomorphic tally and carry a valid signature.
	httpResp, err := http.Get(ts.URL + "/api/results")
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var results ResultsResponse
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&results))
	assert.Equal(t, int64(1), results.Results["alice"])
	assert.Equal(t, int64(0), results.Results["bob"])
	assert.Equal(t, int64(2), results.Results["carol"])
	assert.Equal(t, int64(3), results.Total)
	assert.Equal(t, 3, results.Ballots)

	sig, err := hexutil.Decode(results.Signature)
	require.NoError(t, err)
	assert.True(t, VerifyResultsSignature(results.Results, results.Total, sig, srv.AdminPublicKey()))

	// A forged result set must not verify.
	forged := map[string]int64{"alice": 3, "bob": 0, "carol": 0}
	assert.False(t, VerifyResultsSignature(forged, results.Total, sig, srv.AdminPublicKey()))
}

func TestTamperedBallotRejected(t *testing.T) {
	_, ts := testServer(t)

	pk := fetchElectionKey(t, ts.URL)
	sub := voterSubmission(t, pk, []bool{false, true, false})

	// Flip a numeric field after proof generation.
	z, ok := new(big.Int).SetString(sub.ZKPProofs.BitProofs[1].Proof1.Z, 10)
	require.True(t, ok)
	sub.ZKPProofs.BitProofs[1].Proof1.Z = z.Xor(z, big.NewInt(1)).String()

	client := submission.NewClient(ts.URL+"/api/ballots", nil)
	resp, err := client.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.False(t, resp.Accepted)
	assert.False(t, resp.Report.OverallValid)
	assert.Empty(t, resp.Receipt)
}

func TestForeignKeyBallotRejected(t *testing.T) {
	_, ts := testServer(t)

	// Voter encrypts under a key pair of their own making.
	foreign, _, err := paillier.GenerateKeyPair(paillier.MinKeyBits, 10)
	require.NoError(t, err)
	sub := voterSubmission(t, foreign, []bool{true, false, false})

	body, err := json.Marshal(sub)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/ballots", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestWrongSlotCountRejected(t *testing.T) {
	_, ts := testServer(t)

	pk := fetchElectionKey(t, ts.URL)
	sub := voterSubmission(t, pk, []bool{true, false}) // two slots, server expects three

	body, err := json.Marshal(sub)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/ballots", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Contains(t, m, "keygen")
	assert.Contains(t, m, "verification")
	assert.Contains(t, m, "tally")
}

func TestResultsEmptyStore(t *testing.T) {
	srv, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/results")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results ResultsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Zero(t, results.Total)
	assert.Empty(t, results.Results)

	sig, err := hexutil.Decode(results.Signature)
	require.NoError(t, err)
	assert.True(t, VerifyResultsSignature(results.Results, results.Total, sig, srv.AdminPublicKey()))
}
