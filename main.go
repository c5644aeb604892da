// Command-line walkthrough of the encrypted-ballot flow: key generation,
// a single-selection ballot with zero-knowledge proofs, verification,
// tamper detection, and a homomorphic tally over several ballots.
package main

import (
	"fmt"
	"log"
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/ballot"
	"github.com/macanepa/client-side-voting-encryption/paillier"
)

var candidates = []string{"alice", "bob", "carol", "dave", "erin"}

func main() {
	log.Println("Generating election key pair...")
	engine, err := paillier.NewEngine(paillier.Config{})
	if err != nil {
		log.Fatalf("Failed to configure engine: %v", err)
	}
	if err := engine.Keygen(); err != nil {
		log.Fatalf("Key generation failed: %v", err)
	}
	info, _ := engine.PublicKeyInfo()
	log.Printf("Election key ready (%d bits)", info.BitLength)

	orch, err := ballot.New(engine, ballot.Config{CandidateCount: len(candidates)})
	if err != nil {
		log.Fatalf("Failed to build orchestrator: %v", err)
	}

	// One voter selects carol.
	selection := []bool{false, false, true, false, false}
	pkg, err := orch.EncryptAndProve(selection)
	if err != nil {
		log.Fatalf("Failed to encrypt ballot: %v", err)
	}
	fmt.Println("Ballot encrypted; each slot proved to hold 0 or 1, slots proved to sum to 1.")

	report := orch.Verify(pkg)
	fmt.Printf("Verification: overall=%v bits=%v sum=%v\n",
		report.OverallValid, report.BitProofsValid, report.SumProofValid)

	// Tampering with a single proof field flips the verdict.
	pkg.Proof.BitProofs[2].Proof1.Z.Xor(pkg.Proof.BitProofs[2].Proof1.Z, big.NewInt(1))
	report = orch.Verify(pkg)
	fmt.Printf("After tampering with slot 2: overall=%v", report.OverallValid)
	for _, r := range report.BitProofResults {
		if !r.Valid {
			fmt.Printf(" (slot %d: %s)", r.Index, r.Reason)
		}
	}
	fmt.Println()

	// Several voters, aggregated and tallied without decrypting any
	// individual ballot.
	selections := [][]bool{
		{false, false, true, false, false},
		{true, false, false, false, false},
		{false, false, true, false, false},
		{false, false, false, false, true},
	}
	ballots := make([][]*big.Int, 0, len(selections))
	for _, sel := range selections {
		p, err := orch.EncryptAndProve(sel)
		if err != nil {
			log.Fatalf("Failed to encrypt ballot: %v", err)
		}
		if r := orch.Verify(p); !r.OverallValid {
			log.Fatalf("Honest ballot failed verification")
		}
		ballots = append(ballots, p.Ciphertexts)
	}

	sums, err := orch.AggregateBallots(ballots)
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}
	tally, err := orch.Tally(sums)
	if err != nil {
		log.Fatalf("Tally failed: %v", err)
	}

	fmt.Println("Tally:")
	for i, name := range candidates {
		fmt.Printf("  %-6s %v\n", name, tally.PerSlot[i])
	}
	fmt.Printf("  total  %v (from %d ballots)\n", tally.Total, len(selections))

	engine.Clear()
	fmt.Println("Engine cleared; key material zeroed.")
}
