//go:build !darwin

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackKeyring_ReadsEnv(t *testing.T) {
	t.Setenv("WAGEFLOW_DB_KEY", "s3cret")
	t.Setenv("WAGEFLOW_JWT_SECRET", "")

	k := NewKeyring()
	assert.True(t, k.IsAvailable())

	key, err := k.Get(DBKeyName)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", key)

	_, err = k.Get(TokenSecretName)
	assert.ErrorContains(t, err, "WAGEFLOW_JWT_SECRET")
}

func TestFallbackKeyring_SetPointsAtEnv(t *testing.T) {
	err := NewKeyring().Set(TokenSecretName, "abc")
	assert.ErrorContains(t, err, "WAGEFLOW_JWT_SECRET")
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret(32)
	require.NoError(t, err)
	b, err := GenerateSecret(32)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
