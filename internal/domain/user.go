package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTaxPercent  = 13.0
	DefaultMileageRate = 0.61
)

// User owns every client, shift, mileage and invoice in its namespace.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	HourlyRate   *float64 // default rate for new shifts
	TaxPercent   float64
	MileageRate  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a user with default tax and mileage rates
func NewUser(email, firstName, lastName string) *User {
	now := time.Now()
	return &User{
		ID:          uuid.NewString(),
		Email:       NormalizeEmail(email),
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		TaxPercent:  DefaultTaxPercent,
		MileageRate: DefaultMileageRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate returns an error if the user is invalid
func (u *User) Validate() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return Validation("user", "a valid email is required")
	}
	if u.HourlyRate != nil && *u.HourlyRate < 0 {
		return Validation("user", "hourly rate cannot be negative")
	}
	if u.TaxPercent < 0 {
		return Validation("user", "tax percent cannot be negative")
	}
	if u.MileageRate < 0 {
		return Validation("user", "mileage rate cannot be negative")
	}
	return nil
}

// RefreshToken is a stored, revocable refresh credential.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

// Usable reports whether the token can still be exchanged.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
