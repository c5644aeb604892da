package encryption

import (
	"fmt"
	"math/big"

	"github.com/macanepa/client-side-voting-encryption/paillier"
)

// NativePaillier adapts the module's own Paillier implementation to the
// HomomorphicEncryptionScheme interface.
type NativePaillier struct {
	keySize int
	pub     *paillier.PublicKey
	priv    *paillier.PrivateKey
}

// NewNativePaillier generates a fresh key pair of the given size.
func NewNativePaillier(keySize int) (*NativePaillier, error) {
	pub, priv, err := paillier.GenerateKeyPair(keySize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to generate native Paillier key: %w", err)
	}
	return &NativePaillier{keySize: keySize, pub: pub, priv: priv}, nil
}

// Name returns the name of the encryption scheme.
func (n *NativePaillier) Name() string {
	return fmt.Sprintf("Paillier-native-%d", n.keySize)
}

// KeySize returns the key size in bits.
func (n *NativePaillier) KeySize() int {
	return n.keySize
}

// Encrypt encrypts a big.Int value.
func (n *NativePaillier) Encrypt(value *big.Int) ([]byte, error) {
	enc, err := paillier.Encrypt(n.pub, value)
	if err != nil {
		return nil, err
	}
	return enc.Ciphertext.Bytes(), nil
}

// Decrypt decrypts a ciphertext back to its big.Int value.
func (n *NativePaillier) Decrypt(ciphertext []byte) (*big.Int, error) {
	return paillier.Decrypt(n.priv, new(big.Int).SetBytes(ciphertext))
}

// Add performs homomorphic addition of two ciphertexts.
func (n *NativePaillier) Add(ciphertext1, ciphertext2 []byte) ([]byte, error) {
	sum, err := paillier.AddCiphertexts(n.pub,
		new(big.Int).SetBytes(ciphertext1),
		new(big.Int).SetBytes(ciphertext2))
	if err != nil {
		return nil, err
	}
	return sum.Bytes(), nil
}

// ScalarMultiply multiplies the underlying plaintext by a constant.
func (n *NativePaillier) ScalarMultiply(ciphertext []byte, k *big.Int) ([]byte, error) {
	c, err := paillier.ScalarMul(n.pub, new(big.Int).SetBytes(ciphertext), k)
	if err != nil {
		return nil, err
	}
	return c.Bytes(), nil
}
