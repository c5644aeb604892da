package encryption

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both adapters must satisfy the same additive-homomorphism contract.
func TestSchemesAgreeOnHomomorphism(t *testing.T) {
	native, err := NewNativePaillier(256)
	require.NoError(t, err)

	external, err := NewExternalPaillier(512)
	require.NoError(t, err)

	for _, scheme := range []HomomorphicEncryptionScheme{native, external} {
		t.Run(scheme.Name(), func(t *testing.T) {
			c1, err := scheme.Encrypt(big.NewInt(15))
			require.NoError(t, err)
			c2, err := scheme.Encrypt(big.NewInt(27))
			require.NoError(t, err)

			sum, err := scheme.Add(c1, c2)
			require.NoError(t, err)
			got, err := scheme.Decrypt(sum)
			require.NoError(t, err)
			assert.Equal(t, int64(42), got.Int64())

			triple, err := scheme.ScalarMultiply(c1, big.NewInt(3))
			require.NoError(t, err)
			got, err = scheme.Decrypt(triple)
			require.NoError(t, err)
			assert.Equal(t, int64(45), got.Int64())
		})
	}
}

func TestSchemeRoundTrip(t *testing.T) {
	native, err := NewNativePaillier(256)
	require.NoError(t, err)

	for _, m := range []int64{1, 42, 100} {
		c, err := native.Encrypt(big.NewInt(m))
		require.NoError(t, err)
		got, err := native.Decrypt(c)
		require.NoError(t, err)
		assert.Equal(t, m, got.Int64())
	}
	assert.Equal(t, 256, native.KeySize())
}
