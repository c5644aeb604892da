// Package api exposes the authority side of the voting flow over HTTP:
// ballot collection with verification on arrival, public key discovery,
// signed results, and operation metrics.
package api

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/macanepa/client-side-voting-encryption/ballot"
	"github.com/macanepa/client-side-voting-encryption/models"
	"github.com/macanepa/client-side-voting-encryption/paillier"
	"github.com/macanepa/client-side-voting-encryption/service"
	"github.com/macanepa/client-side-voting-encryption/storage"
	"github.com/macanepa/client-side-voting-encryption/submission"
	"github.com/macanepa/client-side-voting-encryption/zkp"
)

// Config carries the server tunables.
type Config struct {
	StoragePath string
	Candidates  []string
	KeyBits     int // defaults to paillier.DefaultKeyBits
}

// Server owns the only engine holding the election private key. Voters
// interact with it purely through the submission payload.
type Server struct {
	mu         sync.RWMutex
	engine     *paillier.Engine
	orch       *ballot.Orchestrator
	store      *storage.BallotStore
	metrics    *service.MetricsCollector
	adminKey   *ecdsa.PrivateKey
	candidates []string
}

// PublicKeyResponse is the key-discovery payload.
type PublicKeyResponse struct {
	PublicKey models.PublicKeyJSON `json:"publicKey"`
	BitLength int                  `json:"bitLength"`
}

// ResultsResponse carries the decrypted tally and the authority's
// signature over the canonical results JSON.
type ResultsResponse struct {
	Results   map[string]int64 `json:"results"`
	Total     int64            `json:"total_votes"`
	Ballots   int              `json:"counted_ballots"`
	Signature string           `json:"signature"`
	Signer    string           `json:"signer"`
}

// NewServer generates the election key pair, prepares storage and the
// result-signing key, and wires the orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if len(cfg.Candidates) == 0 {
		return nil, fmt.Errorf("api: candidate list must not be empty")
	}

	engine, err := paillier.NewEngine(paillier.Config{KeyBits: cfg.KeyBits})
	if err != nil {
		return nil, err
	}

	metrics := service.NewMetricsCollector()
	start := time.Now()
	if err := engine.Keygen(); err != nil {
		return nil, fmt.Errorf("failed to generate election key pair: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordKeygen(elapsed)
	log.Printf("Generated election key pair in %v", elapsed)

	orch, err := ballot.New(engine, ballot.Config{CandidateCount: len(cfg.Candidates)})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewBallotStore(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	adminKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate result-signing key: %w", err)
	}

	return &Server{
		engine:     engine,
		orch:       orch,
		store:      store,
		metrics:    metrics,
		adminKey:   adminKey,
		candidates: cfg.Candidates,
	}, nil
}

// Handler returns the routed HTTP handler with CORS enabled.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ballots", s.handleSubmitBallot)
	mux.HandleFunc("/api/publickey", s.handlePublicKey)
	mux.HandleFunc("/api/results", s.handleResults)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	return corsMiddleware(mux)
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	log.Printf("Voting authority listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// AdminPublicKey exposes the result-signing key so external auditors can
// check published results.
func (s *Server) AdminPublicKey() *ecdsa.PublicKey {
	return &s.adminKey.PublicKey
}

func (s *Server) handleSubmitBallot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if vt := r.Header.Get(submission.HeaderVoteType); vt != "" && vt != submission.VoteTypePaillierZKP {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported vote type %q", vt))
		return
	}

	var sub models.VoteSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON payload: %v", err))
		return
	}

	// Fields that do not decode make the proof malformed; the voter gets a
	// verdict report saying so rather than a bare error.
	pkg, err := sub.BallotPackage()
	if err != nil {
		log.Printf("Rejected malformed submission: %v", err)
		writeJSON(w, http.StatusUnprocessableEntity, &models.SubmissionResponse{
			Report: &zkp.VerificationReport{
				SumProofDetails: zkp.SumProofDetails{Reason: zkp.ReasonMalformed},
			},
		})
		return
	}

	// The ballot must be encrypted under this election's key; a package
	// proving against a foreign key is internally consistent but useless
	// for the tally.
	if pkg.PublicKey.N.Cmp(s.engine.PublicKey().N) != 0 {
		writeError(w, http.StatusUnprocessableEntity, "ballot encrypted under a different election key")
		return
	}
	if len(pkg.Ciphertexts) != len(s.candidates) {
		writeError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("expected %d candidate slots, got %d", len(s.candidates), len(pkg.Ciphertexts)))
		return
	}

	start := time.Now()
	report := s.orch.Verify(pkg)
	s.metrics.RecordVerification(time.Since(start))

	resp := &models.SubmissionResponse{Accepted: report.OverallValid, Report: report}
	if !report.OverallValid {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	resp.Receipt = ballotReceipt(pkg.Ciphertexts)

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := &storage.StoredBallot{
		ID:         uuid.New().String(),
		ReceivedAt: time.Now().Unix(),
		Submission: &sub,
		Report:     report,
	}
	if err := s.store.SaveBallot(stored); err != nil {
		log.Printf("Failed to persist ballot %s: %v", stored.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to persist ballot")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePublicKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	info, err := s.engine.PublicKeyInfo()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no election key loaded")
		return
	}
	pk := s.engine.PublicKey()
	writeJSON(w, http.StatusOK, &PublicKeyResponse{
		PublicKey: models.PublicKeyJSON{
			N:        pk.N.String(),
			G:        pk.G.String(),
			NSquared: pk.NSquared.String(),
		},
		BitLength: info.BitLength,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	s.mu.RLock()
	ballots := s.store.LoadBallots()
	s.mu.RUnlock()

	columns := make([][]*big.Int, 0, len(ballots))
	for _, b := range ballots {
		if b.Report == nil || !b.Report.OverallValid {
			continue
		}
		pkg, err := b.Submission.BallotPackage()
		if err != nil {
			log.Printf("Skipping stored ballot %s: %v", b.ID, err)
			continue
		}
		columns = append(columns, pkg.Ciphertexts)
	}

	resp := &ResultsResponse{
		Results: make(map[string]int64, len(s.candidates)),
		Signer:  crypto.PubkeyToAddress(s.adminKey.PublicKey).Hex(),
	}

	if len(columns) > 0 {
		start := time.Now()
		sums, err := s.orch.AggregateBallots(columns)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("aggregation failed: %v", err))
			return
		}
		tally, err := s.orch.Tally(sums)
		s.metrics.RecordTally(time.Since(start))
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("tally failed: %v", err))
			return
		}
		resp.Total = tally.Total.Int64()
		resp.Ballots = len(columns)
		for i, name := range s.candidates {
			resp.Results[name] = tally.PerSlot[i].Int64()
		}
	}

	sig, err := SignResults(resp.Results, resp.Total, s.adminKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign results")
		return
	}
	resp.Signature = hexutil.Encode(sig)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.GetMetrics())
}

// SignResults signs the canonical JSON of the result set with the
// authority's ECDSA key.
func SignResults(results map[string]int64, total int64, key *ecdsa.PrivateKey) ([]byte, error) {
	digest, err := resultsDigest(results, total)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(digest, key)
}

// VerifyResultsSignature checks a results signature against the signer's
// public key.
func VerifyResultsSignature(results map[string]int64, total int64, signature []byte, pub *ecdsa.PublicKey) bool {
	digest, err := resultsDigest(results, total)
	if err != nil {
		return false
	}
	recovered, err := crypto.SigToPub(digest, signature)
	if err != nil {
		return false
	}
	return recovered.X.Cmp(pub.X) == 0 && recovered.Y.Cmp(pub.Y) == 0
}

// resultsDigest hashes the canonical encoding of the results. Go
// marshals map keys in sorted order, so the encoding is deterministic.
func resultsDigest(results map[string]int64, total int64) ([]byte, error) {
	canonical, err := json.Marshal(struct {
		Results map[string]int64 `json:"results"`
		Total   int64            `json:"total"`
	}{results, total})
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(canonical), nil
}

// ballotReceipt hashes the ciphertext column so a voter can later check
// that their ballot was stored unmodified.
func ballotReceipt(cs []*big.Int) string {
	data := make([][]byte, 0, len(cs))
	for _, c := range cs {
		data = append(data, c.Bytes())
	}
	return hexutil.Encode(crypto.Keccak256(data...))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+submission.HeaderVoteType)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
