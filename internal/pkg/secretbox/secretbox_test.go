package secretbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpenRoundtrip(t *testing.T) {
	sealer, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-very-secret")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "sk-very-secret")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-very-secret", opened)
}

func TestSealEmptyStaysEmpty(t *testing.T) {
	sealer, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := sealer.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := sealer.Open("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)

	_, err = NewSealer("zz")
	assert.Error(t, err)

	_, err = NewSealer(strings.Repeat("ab", 16))
	assert.Error(t, err)
}

func TestOpenRejectsTamperedValue(t *testing.T) {
	sealer, err := NewSealer(testKey)
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-very-secret")
	require.NoError(t, err)

	tampered := []byte(sealed)
	tampered[len(tampered)-5] ^= 1
	_, err = sealer.Open(string(tampered))
	assert.Error(t, err)

	other, err := NewSealer(strings.Repeat("ff", 32))
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)
}
