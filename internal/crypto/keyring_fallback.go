//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
	"os"
)

type fallbackKeyring struct{}

func newPlatformKeyring() Keyring {
	return &fallbackKeyring{}
}

// Get reads the secret from its environment variable
func (k *fallbackKeyring) Get(name string) (string, error) {
	env := EnvVar(name)
	value := os.Getenv(env)
	if value == "" {
		return "", fmt.Errorf("%s environment variable not set", env)
	}

	return value, nil
}

// Set returns an error suggesting to set the environment variable
func (k *fallbackKeyring) Set(name, value string) error {
	if value == "" {
		return errors.New("secret cannot be empty")
	}

	return fmt.Errorf("keyring not available on this platform: please set %s environment variable", EnvVar(name))
}

// Delete returns an error suggesting to unset the environment variable
func (k *fallbackKeyring) Delete(name string) error {
	return fmt.Errorf("keyring not available on this platform: please unset %s environment variable manually", EnvVar(name))
}

// IsAvailable checks if the database key environment variable is set
func (k *fallbackKeyring) IsAvailable() bool {
	return os.Getenv(EnvVar(DBKeyName)) != ""
}
