package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mayesamomo/wageflow/internal/config"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

func newAuth(t *testing.T) (*env, *authService) {
	t.Helper()
	e := newEnv(t)
	svc := NewAuthService(
		e.users,
		repository.NewTokenRepo(e.db),
		[]byte("test-secret"),
		config.AuthConfig{AccessTTL: time.Minute, RefreshTTL: time.Hour, BcryptCost: bcrypt.MinCost},
		config.UserDefaults{TaxPercent: 15, MileageRate: 0.7},
	)
	return e, svc.(*authService)
}

func register(t *testing.T, e *env, svc AuthService) *Session {
	t.Helper()
	sess, err := svc.Register(e.ctx, RegisterInput{
		Email: " Grace@Example.com ", Password: "correct-horse", FirstName: "Grace", LastName: "Hopper",
	})
	require.NoError(t, err)
	return sess
}

func TestRegister(t *testing.T) {
	e, svc := newAuth(t)
	sess := register(t, e, svc)

	assert.Equal(t, "grace@example.com", sess.User.Email)
	assert.Equal(t, 15.0, sess.User.TaxPercent)
	assert.Equal(t, 0.7, sess.User.MileageRate)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.NotEqual(t, "correct-horse", sess.User.PasswordHash)

	_, err := svc.Register(e.ctx, RegisterInput{Email: "grace@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(e.ctx, RegisterInput{Email: "short@example.com", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(e.ctx, RegisterInput{Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin(t *testing.T) {
	e, svc := newAuth(t)
	register(t, e, svc)

	sess, err := svc.Login(e.ctx, "GRACE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Grace", sess.User.FirstName)

	_, err = svc.Login(e.ctx, "grace@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(e.ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), invalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	e, svc := newAuth(t)
	sess := register(t, e, svc)

	id, err := svc.Authenticate(e.ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)

	_, err = svc.Authenticate(e.ctx, sess.AccessToken+"x")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Authenticate(e.ctx, sess.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), "expired")
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	e, svc := newAuth(t)
	sess := register(t, e, svc)

	_, err := svc.Authenticate(e.ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Still rejected after logout revokes it
	require.NoError(t, svc.Logout(e.ctx, sess.User.ID, sess.RefreshToken))
	_, err = svc.Authenticate(e.ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshRotates(t *testing.T) {
	e, svc := newAuth(t)
	sess := register(t, e, svc)

	next, err := svc.Refresh(e.ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)
	assert.Equal(t, sess.User.ID, next.User.ID)

	_, err = svc.Refresh(e.ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Refresh(e.ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Refresh(e.ctx, next.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	e, svc := newAuth(t)
	sess := register(t, e, svc)

	// A foreign user cannot revoke the token
	require.NoError(t, svc.Logout(e.ctx, "someone-else", sess.RefreshToken))
	_, err := svc.Refresh(e.ctx, sess.RefreshToken)
	require.NoError(t, err)

	again, err := svc.Login(e.ctx, "grace@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(e.ctx, again.User.ID, again.RefreshToken))
	_, err = svc.Refresh(e.ctx, again.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.NoError(t, svc.Logout(e.ctx, again.User.ID, "unknown"))
}

func TestUpdateProfileAndPassword(t *testing.T) {
	e, svc := newAuth(t)
	sess := register(t, e, svc)
	id := sess.User.ID

	user, err := svc.UpdateProfile(e.ctx, id, ProfilePatch{HourlyRate: ptr(42.0), TaxPercent: ptr(5.0)})
	require.NoError(t, err)
	require.NotNil(t, user.HourlyRate)
	assert.Equal(t, 42.0, *user.HourlyRate)
	assert.Equal(t, 5.0, user.TaxPercent)

	_, err = svc.UpdateProfile(e.ctx, id, ProfilePatch{MileageRate: ptr(-0.1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateProfile(e.ctx, id, ProfilePatch{Email: &e.user.Email})
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, svc.ChangePassword(e.ctx, id, "wrong-password", "new-password"), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.ChangePassword(e.ctx, id, "correct-horse", "short"), domain.ErrValidation)
	require.NoError(t, svc.ChangePassword(e.ctx, id, "correct-horse", "new-password"))

	_, err = svc.Login(e.ctx, "grace@example.com", "new-password")
	assert.NoError(t, err)
}
