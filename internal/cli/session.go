package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/service"
)

// session is the token pair persisted between CLI invocations
type session struct {
	UserID       string `yaml:"user_id"`
	Email        string `yaml:"email"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token"`
}

var errNotLoggedIn = errors.New("not logged in: run 'wageflow auth login' or 'wageflow auth register'")

func sessionPath() string {
	return appInstance.Config.Auth.SessionPath
}

func loadSession() (*session, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	if s.AccessToken == "" || s.RefreshToken == "" {
		return nil, errNotLoggedIn
	}
	return &s, nil
}

func saveSession(sess *service.Session) error {
	s := session{
		UserID:       sess.User.ID,
		Email:        sess.User.Email,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sessionPath()), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(sessionPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func clearSession() error {
	if err := os.Remove(sessionPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// currentUser returns the signed-in user's id, refreshing an expired access
// token with the stored refresh token
func currentUser(ctx context.Context) (string, error) {
	s, err := loadSession()
	if err != nil {
		return "", err
	}

	userID, err := appInstance.AuthService.Authenticate(ctx, s.AccessToken)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		return "", err
	}

	refreshed, err := appInstance.AuthService.Refresh(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			_ = clearSession()
			return "", fmt.Errorf("session expired: %w", errNotLoggedIn)
		}
		return "", err
	}
	if err := saveSession(refreshed); err != nil {
		return "", err
	}
	return refreshed.User.ID, nil
}
