package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID           string
	OwnerID      string
	Name         string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Address      string
	Latitude     *float64
	Longitude    *float64
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewClient creates a new client with required fields
func NewClient(ownerID, name string) *Client {
	now := time.Now()
	return &Client{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Validation("client", "client name is required")
	}
	if c.OwnerID == "" {
		return Validation("client", "owner is required")
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return Validation("client", "latitude and longitude must be set together")
	}
	return nil
}
