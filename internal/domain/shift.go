package domain

import (
	"time"

	"github.com/google/uuid"
)

type ShiftType string

const (
	ShiftTypeRegular  ShiftType = "regular"
	ShiftTypeOvertime ShiftType = "overtime"
	ShiftTypeHoliday  ShiftType = "holiday"
	ShiftTypeNight    ShiftType = "night"
	ShiftTypeWeekend  ShiftType = "weekend"
)

// Valid reports whether t is a known shift type
func (t ShiftType) Valid() bool {
	switch t {
	case ShiftTypeRegular, ShiftTypeOvertime, ShiftTypeHoliday, ShiftTypeNight, ShiftTypeWeekend:
		return true
	}
	return false
}

type Shift struct {
	ID         string
	OwnerID    string
	ClientID   string
	StartTime  time.Time
	EndTime    time.Time
	ShiftType  ShiftType
	HourlyRate float64 // frozen at entry time
	TaxPercent float64 // owner's tax percent when the shift was recorded
	TotalHours float64
	Earnings   float64
	TaxAmount  float64
	Notes      string
	Location   string
	Latitude   *float64
	Longitude  *float64
	InvoiceID  *string // nil = unclaimed
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Client *Client
}

// NewShift creates a shift and computes its derived totals
func NewShift(ownerID, clientID string, start, end time.Time, hourlyRate, taxPercent float64) *Shift {
	now := time.Now()
	s := &Shift{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ClientID:   clientID,
		StartTime:  start,
		EndTime:    end,
		ShiftType:  ShiftTypeRegular,
		HourlyRate: hourlyRate,
		TaxPercent: taxPercent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.Recalculate()
	return s
}

// Recalculate refreshes hours, earnings and tax from the time span and rates
func (s *Shift) Recalculate() {
	t := ComputeShiftTotals(s.StartTime, s.EndTime, s.HourlyRate, s.TaxPercent)
	s.TotalHours = t.Hours
	s.Earnings = t.Earnings
	s.TaxAmount = t.Tax
}

// IsInvoiced returns true if the shift is claimed by an invoice
func (s *Shift) IsInvoiced() bool {
	return s.InvoiceID != nil
}

// Validate returns an error if the shift is invalid
func (s *Shift) Validate() error {
	if s.ClientID == "" {
		return Validation("shift", "client is required")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return Validation("shift", "start and end time are required")
	}
	if !s.EndTime.After(s.StartTime) {
		return Validation("shift", "end time must be after start time")
	}
	if s.HourlyRate < 0 {
		return Validation("shift", "hourly rate cannot be negative")
	}
	if !s.ShiftType.Valid() {
		return Validation("shift", "unknown shift type %q", s.ShiftType)
	}
	return nil
}

// ShiftHistory is one audited field change on a shift.
type ShiftHistory struct {
	ID           int64
	ShiftID      string
	FieldName    string
	OldValue     string
	NewValue     string
	ChangeReason string
	ChangedAt    time.Time
}
