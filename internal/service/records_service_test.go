package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

func TestShiftService_CreateUsesProfileDefaults(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 3)

	assert.Equal(t, 50.0, s.HourlyRate)
	assert.Equal(t, domain.DefaultTaxPercent, s.TaxPercent)
	assert.Equal(t, domain.ShiftTypeRegular, s.ShiftType)
	assert.InDelta(t, 150, s.Earnings, 0.001)
	assert.InDelta(t, 19.5, s.TaxAmount, 0.001)
}

func TestShiftService_CreateValidation(t *testing.T) {
	e := newEnv(t)
	start := day(2025, 1, 6, 9)

	_, err := e.shifts.Create(e.ctx, e.user.ID, ShiftInput{ClientID: &e.client.ID, StartTime: &start, EndTime: &start})
	assert.ErrorIs(t, err, domain.ErrValidation)

	end := start.Add(time.Hour)
	_, err = e.shifts.Create(e.ctx, e.user.ID, ShiftInput{ClientID: &e.client.ID, StartTime: &start, EndTime: &end, HourlyRate: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.shifts.Create(e.ctx, e.user.ID, ShiftInput{ClientID: ptr("missing"), StartTime: &start, EndTime: &end})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// No rate on the shift or the profile
	e.user.HourlyRate = nil
	require.NoError(t, e.users.Update(e.ctx, e.user))
	_, err = e.shifts.Create(e.ctx, e.user.ID, ShiftInput{ClientID: &e.client.ID, StartTime: &start, EndTime: &end})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestShiftService_CreateWithClientLocation(t *testing.T) {
	e := newEnv(t)
	e.client.Address = "12 Elm St"
	e.client.Latitude, e.client.Longitude = ptr(43.6), ptr(-79.4)
	require.NoError(t, e.clients.Update(e.ctx, e.client))

	start, end := day(2025, 1, 6, 9), day(2025, 1, 6, 10)
	s, err := e.shifts.Create(e.ctx, e.user.ID, ShiftInput{
		ClientID: &e.client.ID, StartTime: &start, EndTime: &end, UseClientLocation: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "12 Elm St", s.Location)
	require.NotNil(t, s.Latitude)
	assert.Equal(t, 43.6, *s.Latitude)
}

func TestShiftService_UpdateRecalculatesAndAudits(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 2)

	updated, err := e.shifts.Update(e.ctx, e.user.ID, s.ID, ShiftInput{HourlyRate: ptr(60.0), Reason: "rate change"})
	require.NoError(t, err)
	assert.InDelta(t, 120, updated.Earnings, 0.001)
	assert.InDelta(t, 15.6, updated.TaxAmount, 0.001)

	history, err := e.shifts.History(e.ctx, e.user.ID, s.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hourly_rate", history[0].FieldName)
	assert.Equal(t, "50.00", history[0].OldValue)
	assert.Equal(t, "60.00", history[0].NewValue)
	assert.Equal(t, "rate change", history[0].ChangeReason)
}

func TestShiftService_ClaimedShiftCannotBeDeleted(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 2)
	_, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s.ID}})
	require.NoError(t, err)

	assert.ErrorIs(t, e.shifts.Delete(e.ctx, e.user.ID, s.ID), domain.ErrImmutable)

	invoiced := false
	free, err := e.shifts.List(e.ctx, e.user.ID, repository.RecordFilter{Invoiced: &invoiced})
	require.NoError(t, err)
	assert.Empty(t, free)
}

func TestMileageService(t *testing.T) {
	e := newEnv(t)
	km := 12.5

	m, err := e.mileages.Create(e.ctx, e.user.ID, MileageInput{ClientID: &e.client.ID, Distance: &km})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMileageRate, m.RatePerKm)
	assert.InDelta(t, 7.625, m.Amount, 0.0001)

	_, err = e.mileages.Create(e.ctx, e.user.ID, MileageInput{ClientID: &e.client.ID, Distance: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	m, err = e.mileages.Update(e.ctx, e.user.ID, m.ID, MileageInput{RatePerKm: ptr(1.0), ToLocation: ptr("Clinic")})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, m.Amount, 0.0001)
	assert.Equal(t, "Clinic", m.ToLocation)

	_, err = e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, MileageIDs: []string{m.ID}})
	require.NoError(t, err)

	_, err = e.mileages.Update(e.ctx, e.user.ID, m.ID, MileageInput{Distance: ptr(1.0)})
	assert.ErrorIs(t, err, domain.ErrImmutable)
	assert.ErrorIs(t, e.mileages.Delete(e.ctx, e.user.ID, m.ID), domain.ErrImmutable)
}

func TestClientService_DeleteWithDependents(t *testing.T) {
	e := newEnv(t)
	svc := NewClientService(e.clients)

	c, err := svc.Create(e.ctx, e.user.ID, ClientInput{Name: ptr("  Riverside  ")})
	require.NoError(t, err)
	assert.Equal(t, "Riverside", c.Name)

	_, err = svc.Create(e.ctx, e.user.ID, ClientInput{Name: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	e.addShift(t, day(2025, 1, 6, 9), 1)
	assert.ErrorIs(t, svc.Delete(e.ctx, e.user.ID, e.client.ID), domain.ErrConflict)
	assert.NoError(t, svc.Delete(e.ctx, e.user.ID, c.ID))

	_, err = svc.Get(e.ctx, e.user.ID, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClockService(t *testing.T) {
	e := newEnv(t)
	svc := e.clock.(*clockService)
	start := day(2025, 1, 6, 9)
	svc.now = func() time.Time { return start }

	status, err := e.clock.Status(e.ctx, e.user.ID)
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = e.clock.ClockOut(e.ctx, e.user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.clock.ClockIn(e.ctx, e.user.ID, e.client.ID, "", nil, "home visit")
	require.NoError(t, err)

	_, err = e.clock.ClockIn(e.ctx, e.user.ID, e.client.ID, "", nil, "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	svc.now = func() time.Time { return start.Add(90 * time.Minute) }
	status, err = e.clock.Status(e.ctx, e.user.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 90*time.Minute, status.Elapsed)
	assert.InDelta(t, 75, status.Accrued, 0.001)
	assert.Equal(t, e.client.Name, status.Client.Name)

	shift, err := e.clock.ClockOut(e.ctx, e.user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, shift.TotalHours, 0.001)
	assert.Equal(t, "home visit", shift.Notes)

	status, err = e.clock.Status(e.ctx, e.user.ID)
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestClockService_FailedClockOutKeepsClock(t *testing.T) {
	e := newEnv(t)
	svc := e.clock.(*clockService)
	start := day(2025, 1, 6, 9)
	svc.now = func() time.Time { return start }

	_, err := e.clock.ClockIn(e.ctx, e.user.ID, e.client.ID, "", nil, "")
	require.NoError(t, err)

	// An end before the start fails shift validation
	svc.now = func() time.Time { return start.Add(-time.Hour) }
	_, err = e.clock.ClockOut(e.ctx, e.user.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	status, err := e.clock.Status(e.ctx, e.user.ID)
	require.NoError(t, err)
	require.NotNil(t, status, "clock must still be running")

	svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = e.clock.ClockOut(e.ctx, e.user.ID)
	require.NoError(t, err)
	_, err = e.clock.ClockOut(e.ctx, e.user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	shifts, err := e.shifts.List(e.ctx, e.user.ID, repository.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
}

func TestClockService_CancelAndBadType(t *testing.T) {
	e := newEnv(t)

	assert.ErrorIs(t, e.clock.Cancel(e.ctx, e.user.ID), domain.ErrNotFound)

	_, err := e.clock.ClockIn(e.ctx, e.user.ID, e.client.ID, "graveyard", nil, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.clock.ClockIn(e.ctx, e.user.ID, e.client.ID, domain.ShiftTypeNight, ptr(70.0), "")
	require.NoError(t, err)
	require.NoError(t, e.clock.Cancel(e.ctx, e.user.ID))

	shifts, err := e.shifts.List(e.ctx, e.user.ID, repository.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, shifts)
}
