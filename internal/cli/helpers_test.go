package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/app"
	"github.com/Mayesamomo/wageflow/internal/config"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/service"
)

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitIDs([]string{"a, b", "c"}))

	empty := splitIDs([]string{""})
	assert.NotNil(t, empty, "an empty flag value must clear a claim set, not leave it untouched")
	assert.Empty(t, empty)
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.Local), d)

	today, err := parseDate("today")
	require.NoError(t, err)
	yesterday, err := parseDate("yesterday")
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, -1), yesterday)

	_, err = parseDate("03/04/2025")
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	for _, s := range []string{"2025-03-04 09:30", "2025-03-04T09:30", "2025-03-04 09:30:00"} {
		got, err := parseDateTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2025, 3, 4, 9, 30, 0, 0, time.Local), got, s)
	}
	_, err := parseDateTime("09:30")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	d := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 4, 23, 59, 59, 0, time.UTC), endOfDay(d))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Maple", truncate("Maple", 10))
	assert.Equal(t, "Maple H...", truncate("Maple Home Care", 10))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1h 30m 0s", formatDuration(90*time.Minute))
	assert.Equal(t, "2m 5s", formatDuration(125*time.Second))
	assert.Equal(t, "9s", formatDuration(9*time.Second))
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	appInstance = &app.App{Config: &config.Config{Auth: config.AuthConfig{SessionPath: path}}}
	t.Cleanup(func() { appInstance = nil })

	_, err := loadSession()
	assert.ErrorIs(t, err, errNotLoggedIn)

	require.NoError(t, saveSession(&service.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &domain.User{ID: "u1", Email: "ada@example.com"},
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	s, err := loadSession()
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "ada@example.com", s.Email)
	assert.Equal(t, "access", s.AccessToken)
	assert.Equal(t, "refresh", s.RefreshToken)

	require.NoError(t, clearSession())
	require.NoError(t, clearSession())
	_, err = loadSession()
	assert.ErrorIs(t, err, errNotLoggedIn)
}
