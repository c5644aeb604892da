// Package storage persists accepted ballot submissions as JSON on disk.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/macanepa/client-side-voting-encryption/models"
	"github.com/macanepa/client-side-voting-encryption/zkp"
)

const ballotsFile = "ballots.json"

// StoredBallot is one accepted submission together with the verdict it
// received on arrival.
type StoredBallot struct {
	ID         string                  `json:"id"`
	ReceivedAt int64                   `json:"received_at"`
	Submission *models.VoteSubmission  `json:"submission"`
	Report     *zkp.VerificationReport `json:"report"`
}

// BallotStore keeps the ballot list in memory and mirrors every append
// to disk with an atomic write.
type BallotStore struct {
	basePath string
	mu       sync.RWMutex
	ballots  []*StoredBallot
}

// NewBallotStore creates the storage directory if needed and loads any
// previously persisted ballots.
func NewBallotStore(basePath string) (*BallotStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	store := &BallotStore{basePath: basePath}
	if err := store.loadFromFile(); err != nil {
		return nil, fmt.Errorf("failed to load ballots: %w", err)
	}
	return store, nil
}

// SaveBallot appends a ballot and persists the full list.
func (s *BallotStore) SaveBallot(b *StoredBallot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ballots = append(s.ballots, b)
	return s.saveToFile()
}

// LoadBallots returns a copy of the stored ballots.
func (s *BallotStore) LoadBallots() []*StoredBallot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ballots := make([]*StoredBallot, len(s.ballots))
	copy(ballots, s.ballots)
	return ballots
}

// Count returns the number of stored ballots.
func (s *BallotStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ballots)
}

func (s *BallotStore) loadFromFile() error {
	path := filepath.Join(s.basePath, ballotsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.ballots = make([]*StoredBallot, 0)
			return nil
		}
		return err
	}

	var ballots []*StoredBallot
	if err := json.Unmarshal(data, &ballots); err != nil {
		return fmt.Errorf("failed to unmarshal ballots: %w", err)
	}
	s.ballots = ballots
	return nil
}

func (s *BallotStore) saveToFile() error {
	path := filepath.Join(s.basePath, ballotsFile)

	data, err := json.MarshalIndent(s.ballots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ballots: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity.
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ballots file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save ballots file: %w", err)
	}
	return nil
}
