package domain

import (
	"testing"
	"time"
)

func TestShiftValidate(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(s *Shift)
		wantErr bool
	}{
		{"valid", func(s *Shift) {}, false},
		{"end before start", func(s *Shift) { s.EndTime = start.Add(-time.Hour) }, true},
		{"zero duration", func(s *Shift) { s.EndTime = start }, true},
		{"negative rate", func(s *Shift) { s.HourlyRate = -1 }, true},
		{"missing client", func(s *Shift) { s.ClientID = "" }, true},
		{"bad type", func(s *Shift) { s.ShiftType = "split" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShift("u", "c", start, start.Add(4*time.Hour), 50, 13)
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMileageValidate(t *testing.T) {
	m := NewMileage("u", "c", time.Now(), -1, 0.61)
	if err := m.Validate(); err == nil {
		t.Fatalf("expected error for negative distance")
	}

	m = NewMileage("u", "c", time.Now(), 0, 0.61)
	if err := m.Validate(); err != nil {
		t.Fatalf("zero distance should be valid: %v", err)
	}
}
