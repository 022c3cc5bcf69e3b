package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mayesamomo/wageflow/internal/config"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

const minPasswordLength = 8

const invalidCredentials = "invalid credentials"

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

// tokenClaims tags each token with its use so a refresh token never passes
// as an access token
type tokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Session is the token pair handed out on register, login and refresh
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

// RegisterInput is a new account request
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	HourlyRate *float64
}

// ProfilePatch carries profile changes. Nil fields are left alone.
type ProfilePatch struct {
	Email       *string
	FirstName   *string
	LastName    *string
	HourlyRate  *float64
	TaxPercent  *float64
	MileageRate *float64
}

// AuthService manages accounts and the access/refresh token pair
type AuthService interface {
	// Register creates an account and signs the user in
	Register(ctx context.Context, in RegisterInput) (*Session, error)

	// Login checks credentials and issues a new token pair
	Login(ctx context.Context, email, password string) (*Session, error)

	// Refresh exchanges a refresh token for a new pair, revoking the old one
	Refresh(ctx context.Context, refreshToken string) (*Session, error)

	// Logout revokes the refresh token if it belongs to the user
	Logout(ctx context.Context, userID, refreshToken string) error

	// Authenticate verifies an access token and returns its user id
	Authenticate(ctx context.Context, accessToken string) (string, error)

	// GetUser returns a user by id
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpdateProfile changes profile fields and rate defaults
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*domain.User, error)

	// ChangePassword replaces the password after checking the current one
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	secret    []byte
	cfg       config.AuthConfig
	defaults  config.UserDefaults
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuthService creates a new auth service. secret signs every token.
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	secret []byte,
	cfg config.AuthConfig,
	defaults config.UserDefaults,
) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		secret:    secret,
		cfg:       cfg,
		defaults:  defaults,
		log:       logger.WithComponent("auth"),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if len(in.Password) < minPasswordLength {
		return nil, domain.Validation("register", "password must be at least %d characters", minPasswordLength)
	}

	user := domain.NewUser(in.Email, in.FirstName, in.LastName)
	user.HourlyRate = in.HourlyRate
	if s.defaults.TaxPercent > 0 {
		user.TaxPercent = s.defaults.TaxPercent
	}
	if s.defaults.MileageRate > 0 {
		user.MileageRate = s.defaults.MileageRate
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("register", "user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("login", invalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, domain.Unauthorized("login", invalidCredentials)
	}

	return s.issue(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	stored, err := s.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("refresh", "invalid refresh token")
		}
		return nil, err
	}
	if !stored.Usable(s.now()) {
		return nil, domain.Unauthorized("refresh", "invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	return s.issue(ctx, user)
}

func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	stored, err := s.tokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if stored.UserID != userID {
		return nil
	}
	return s.tokenRepo.Revoke(ctx, stored.ID)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.Unauthorized("authenticate", "token expired")
		}
		return "", domain.Unauthorized("authenticate", "invalid token")
	}
	if claims.Type != accessTokenType {
		return "", domain.Unauthorized("authenticate", "not an access token")
	}
	if claims.Subject == "" {
		return "", domain.Unauthorized("authenticate", "token has no subject")
	}
	return claims.Subject, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if email != user.Email {
			other, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if other != nil {
				return nil, domain.Conflict("update profile", "email %s is already in use", email)
			}
			user.Email = email
		}
	}
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.HourlyRate != nil {
		rate := *patch.HourlyRate
		user.HourlyRate = &rate
	}
	if patch.TaxPercent != nil {
		user.TaxPercent = *patch.TaxPercent
	}
	if patch.MileageRate != nil {
		user.MileageRate = *patch.MileageRate
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return domain.Unauthorized("change password", invalidCredentials)
	}
	if len(next) < minPasswordLength {
		return domain.Validation("change password", "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now()
	return s.userRepo.Update(ctx, user)
}

// issue signs a fresh token pair and stores the refresh half
func (s *authService) issue(ctx context.Context, user *domain.User) (*Session, error) {
	now := s.now()

	access, err := s.sign(user.ID, accessTokenType, now, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, refreshTokenType, now, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	stored := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *authService) sign(userID, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
