package zkp

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/macanepa/client-side-voting-encryption/paillier"
)

// ChallengeOracle derives Fiat-Shamir challenges from a proof transcript.
// Implementations must behave as a random oracle over the domain tag and
// the listed elements, returning a value in [0, n).
type ChallengeOracle interface {
	Challenge(pk *paillier.PublicKey, domain string, elems ...*big.Int) *big.Int
}

// KeccakOracle is the default challenge oracle: Keccak-256 over a
// domain-separated, fixed-width big-endian serialization of the inputs,
// expanded in counter mode until a value below n is drawn.
type KeccakOracle struct{}

func (KeccakOracle) Challenge(pk *paillier.PublicKey, domain string, elems ...*big.Int) *big.Int {
	width := (pk.NSquared.BitLen() + 7) / 8

	payload := make([]byte, 0, len(domain)+1+len(elems)*width)
	payload = append(payload, domain...)
	payload = append(payload, 0x00)
	for _, el := range elems {
		payload = append(payload, fixedWidth(el, pk.NSquared, width)...)
	}

	bound := pk.N
	outLen := (bound.BitLen() + 7) / 8
	topMask := byte(0xff)
	if rem := bound.BitLen() % 8; rem != 0 {
		topMask = 0xff >> (8 - rem)
	}

	for counter := uint64(0); ; counter++ {
		buf := make([]byte, 0, outLen+32)
		for block := uint64(0); len(buf) < outLen; block++ {
			h := sha3.NewLegacyKeccak256()
			var hdr [16]byte
			binary.BigEndian.PutUint64(hdr[:8], counter)
			binary.BigEndian.PutUint64(hdr[8:], block)
			h.Write(hdr[:])
			h.Write(payload)
			buf = h.Sum(buf)
		}
		buf = buf[:outLen]
		buf[0] &= topMask

		e := new(big.Int).SetBytes(buf)
		if e.Cmp(bound) < 0 {
			return e
		}
	}
}

// fixedWidth encodes el mod n² as a big-endian slice of exactly width bytes.
func fixedWidth(el, nSquared *big.Int, width int) []byte {
	v := new(big.Int).Mod(el, nSquared)
	return v.FillBytes(make([]byte, width))
}
