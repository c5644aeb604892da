package paillier

import (
	"fmt"
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/arith"
)

const (
	// DefaultKeyBits matches the pedagogical posture of the original
	// system; production deployments should configure 2048 or more.
	DefaultKeyBits = 1024

	// MinKeyBits is the smallest key size the engine accepts.
	MinKeyBits = 512
)

// Config carries the tunables for an Engine.
type Config struct {
	KeyBits           int
	MillerRabinRounds int
}

// Engine holds at most one key pair and exposes the stateful surface the
// caller-facing layer drives. It is not safe for concurrent use; callers
// that share an engine across goroutines must synchronize externally.
type Engine struct {
	cfg  Config
	pub  *PublicKey
	priv *PrivateKey
}

// NewEngine validates the configuration and returns an engine with no
// keys loaded.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.KeyBits == 0 {
		cfg.KeyBits = DefaultKeyBits
	}
	if cfg.MillerRabinRounds == 0 {
		cfg.MillerRabinRounds = arith.DefaultMillerRabinRounds
	}
	if cfg.KeyBits < MinKeyBits || cfg.KeyBits%2 != 0 {
		return nil, fmt.Errorf("%w: key size %d must be even and at least %d bits", ErrKeygenFailure, cfg.KeyBits, MinKeyBits)
	}
	return &Engine{cfg: cfg}, nil
}

// Keygen generates a fresh key pair and loads it, replacing any keys the
// engine previously held.
func (e *Engine) Keygen() error {
	pub, priv, err := GenerateKeyPair(e.cfg.KeyBits, e.cfg.MillerRabinRounds)
	if err != nil {
		return err
	}
	e.pub = pub
	e.priv = priv
	return nil
}

// ImportPublicKey loads an election public key without a private half.
// This is the voter-side configuration: encrypt and prove, never decrypt.
func (e *Engine) ImportPublicKey(pub *PublicKey) error {
	if pub == nil || pub.N == nil || pub.G == nil || pub.NSquared == nil {
		return ErrNoPublicKey
	}
	e.pub = pub
	e.priv = nil
	return nil
}

// ImportKeyPair loads a full key pair, e.g. one restored by the tallying
// authority.
func (e *Engine) ImportKeyPair(pub *PublicKey, priv *PrivateKey) error {
	if pub == nil || pub.N == nil {
		return ErrNoPublicKey
	}
	if priv == nil || priv.Lambda == nil || priv.Mu == nil {
		return ErrNoPrivateKey
	}
	e.pub = pub
	e.priv = priv
	return nil
}

// PublicKey returns the loaded public key, or nil.
func (e *Engine) PublicKey() *PublicKey { return e.pub }

// PrivateKey returns the loaded private key, or nil.
func (e *Engine) PrivateKey() *PrivateKey { return e.priv }

// HasPrivateKey reports whether the engine can decrypt.
func (e *Engine) HasPrivateKey() bool { return e.priv != nil }

// Clear zeroes all key material and unloads it.
func (e *Engine) Clear() {
	if e.priv != nil {
		zeroInt(e.priv.Lambda)
		zeroInt(e.priv.Mu)
		zeroInt(e.priv.N)
		e.priv = nil
	}
	if e.pub != nil {
		zeroInt(e.pub.N)
		zeroInt(e.pub.G)
		zeroInt(e.pub.NSquared)
		e.pub = nil
	}
}

// Encrypt encrypts m under the loaded public key.
func (e *Engine) Encrypt(m *big.Int) (*Encryption, error) {
	if e.pub == nil {
		return nil, ErrNoPublicKey
	}
	return Encrypt(e.pub, m)
}

// Decrypt decrypts c under the loaded private key.
func (e *Engine) Decrypt(c *big.Int) (*big.Int, error) {
	if e.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return Decrypt(e.priv, c)
}

// AddCiphertexts adds two ciphertexts under the loaded public key.
func (e *Engine) AddCiphertexts(c1, c2 *big.Int) (*big.Int, error) {
	if e.pub == nil {
		return nil, ErrNoPublicKey
	}
	return AddCiphertexts(e.pub, c1, c2)
}

// ScalarMul multiplies a ciphertext by a scalar under the loaded public key.
func (e *Engine) ScalarMul(c, k *big.Int) (*big.Int, error) {
	if e.pub == nil {
		return nil, ErrNoPublicKey
	}
	return ScalarMul(e.pub, c, k)
}

// SumCiphertexts sums a slice of ciphertexts under the loaded public key.
func (e *Engine) SumCiphertexts(cs []*big.Int) (*big.Int, error) {
	if e.pub == nil {
		return nil, ErrNoPublicKey
	}
	return SumCiphertexts(e.pub, cs)
}

// PublicKeyInfo is the decimal-string view of the public key handed to
// the presentation layer.
type PublicKeyInfo struct {
	N         string `json:"n"`
	G         string `json:"g"`
	BitLength int    `json:"bitLength"`
}

// PrivateKeyInfo is the decimal-string view of the private key; only the
// tallying role should ever request it.
type PrivateKeyInfo struct {
	Lambda    string `json:"lambda"`
	Mu        string `json:"mu"`
	BitLength int    `json:"bitLength"`
}

// PublicKeyInfo reports the loaded public key as decimal strings.
func (e *Engine) PublicKeyInfo() (*PublicKeyInfo, error) {
	if e.pub == nil {
		return nil, ErrNoPublicKey
	}
	return &PublicKeyInfo{
		N:         e.pub.N.String(),
		G:         e.pub.G.String(),
		BitLength: arith.BitLength(e.pub.N),
	}, nil
}

// PrivateKeyInfo reports the loaded private key as decimal strings.
func (e *Engine) PrivateKeyInfo() (*PrivateKeyInfo, error) {
	if e.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return &PrivateKeyInfo{
		Lambda:    e.priv.Lambda.String(),
		Mu:        e.priv.Mu.String(),
		BitLength: arith.BitLength(e.priv.N),
	}, nil
}

func zeroInt(x *big.Int) {
	if x != nil {
		x.SetInt64(0)
	}
}
