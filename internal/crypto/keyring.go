package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Keyring provides secure storage for named secrets
type Keyring interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Delete(name string) error
	IsAvailable() bool
}

const (
	ServiceName = "wageflow"

	// DBKeyName holds the database encryption passphrase
	DBKeyName = "db-encryption-key"
	// TokenSecretName holds the HMAC secret used to sign access and refresh tokens
	TokenSecretName = "token-signing-secret"
)

// envVars maps each secret to the environment variable used when no keychain exists
var envVars = map[string]string{
	DBKeyName:       "WAGEFLOW_DB_KEY",
	TokenSecretName: "WAGEFLOW_JWT_SECRET",
}

// EnvVar returns the environment variable that backs a secret on platforms without a keychain
func EnvVar(name string) string {
	if v, ok := envVars[name]; ok {
		return v
	}
	return "WAGEFLOW_SECRET_" + name
}

// NewKeyring returns the best available keyring implementation
func NewKeyring() Keyring {
	return newPlatformKeyring()
}

// GenerateSecret returns n random bytes hex encoded
func GenerateSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
