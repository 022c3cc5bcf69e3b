package domain

import (
	"time"

	"github.com/google/uuid"
)

type Mileage struct {
	ID           string
	OwnerID      string
	ClientID     string
	Date         time.Time
	Distance     float64
	RatePerKm    float64
	Amount       float64
	Description  string
	FromLocation string
	ToLocation   string
	InvoiceID    *string // nil = unclaimed
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Client *Client
}

// NewMileage creates a mileage record and computes its amount
func NewMileage(ownerID, clientID string, date time.Time, distance, ratePerKm float64) *Mileage {
	now := time.Now()
	m := &Mileage{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ClientID:  clientID,
		Date:      date,
		Distance:  distance,
		RatePerKm: ratePerKm,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.Recalculate()
	return m
}

// Recalculate refreshes the amount from distance and rate
func (m *Mileage) Recalculate() {
	m.Amount = ComputeMileageAmount(m.Distance, m.RatePerKm)
}

// IsInvoiced returns true if the record is claimed by an invoice
func (m *Mileage) IsInvoiced() bool {
	return m.InvoiceID != nil
}

// Validate returns an error if the record is invalid
func (m *Mileage) Validate() error {
	if m.ClientID == "" {
		return Validation("mileage", "client is required")
	}
	if m.Date.IsZero() {
		return Validation("mileage", "date is required")
	}
	if m.Distance < 0 {
		return Validation("mileage", "distance cannot be negative")
	}
	if m.RatePerKm < 0 {
		return Validation("mileage", "rate cannot be negative")
	}
	return nil
}
