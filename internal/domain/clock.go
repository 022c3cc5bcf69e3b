package domain

import "time"

// ActiveClock is a running shift for an owner that has been clocked in but not out.
type ActiveClock struct {
	OwnerID    string
	ClientID   string
	ShiftType  ShiftType
	HourlyRate *float64 // nil uses the owner's default rate at clock-out
	Notes      string
	StartTime  time.Time
}

// NewActiveClock starts a clock at now
func NewActiveClock(ownerID, clientID string, shiftType ShiftType, rate *float64, notes string) *ActiveClock {
	if shiftType == "" {
		shiftType = ShiftTypeRegular
	}
	return &ActiveClock{
		OwnerID:    ownerID,
		ClientID:   clientID,
		ShiftType:  shiftType,
		HourlyRate: rate,
		Notes:      notes,
		StartTime:  time.Now(),
	}
}

// Elapsed returns the running duration at now
func (c *ActiveClock) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.StartTime)
}
