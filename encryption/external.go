package encryption

import (
	"crypto/rand"
	"fmt"
	"math/big"

	paillierext "github.com/roasbeef/go-go-gadget-paillier"
)

// ExternalPaillier adapts the go-go-gadget-paillier library to the
// HomomorphicEncryptionScheme interface, as a cross-check against the
// native engine.
type ExternalPaillier struct {
	keySize    int
	privateKey *paillierext.PrivateKey
	publicKey  *paillierext.PublicKey
}

// NewExternalPaillier generates a fresh key pair through the library.
func NewExternalPaillier(keySize int) (*ExternalPaillier, error) {
	privateKey, err := paillierext.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate external Paillier key: %w", err)
	}
	return &ExternalPaillier{
		keySize:    keySize,
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
	}, nil
}

// Name returns the name of the encryption scheme.
func (p *ExternalPaillier) Name() string {
	return fmt.Sprintf("Paillier-external-%d", p.keySize)
}

// KeySize returns the key size in bits.
func (p *ExternalPaillier) KeySize() int {
	return p.keySize
}

// Encrypt encrypts a big.Int value.
func (p *ExternalPaillier) Encrypt(value *big.Int) ([]byte, error) {
	if p.publicKey == nil {
		return nil, fmt.Errorf("public key not set")
	}
	return paillierext.Encrypt(p.publicKey, value.Bytes())
}

// Decrypt decrypts a ciphertext back to its big.Int value.
func (p *ExternalPaillier) Decrypt(ciphertext []byte) (*big.Int, error) {
	if p.privateKey == nil {
		return nil, fmt.Errorf("private key not set")
	}
	plaintext, err := paillierext.Decrypt(p.privateKey, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return new(big.Int).SetBytes(plaintext), nil
}

// Add performs homomorphic addition of two ciphertexts.
func (p *ExternalPaillier) Add(ciphertext1, ciphertext2 []byte) ([]byte, error) {
	if p.publicKey == nil {
		return nil, fmt.Errorf("public key not set")
	}
	return paillierext.AddCipher(p.publicKey, ciphertext1, ciphertext2), nil
}

// ScalarMultiply multiplies the underlying plaintext by a constant.
func (p *ExternalPaillier) ScalarMultiply(ciphertext []byte, k *big.Int) ([]byte, error) {
	if p.publicKey == nil {
		return nil, fmt.Errorf("public key not set")
	}
	return paillierext.Mul(p.publicKey, ciphertext, k.Bytes()), nil
}
