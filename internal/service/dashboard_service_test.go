package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

func TestDashboard_WeekBucketsAcrossYearEnd(t *testing.T) {
	e := newEnv(t)
	e.addShift(t, day(2024, 12, 27, 9), 4) // Friday of 2024-W52
	e.addShift(t, day(2024, 12, 31, 9), 2) // Tuesday of 2025-W1

	start, end := day(2024, 12, 23, 0), day(2025, 1, 5, 23)
	sum, err := e.dashboard.Summary(e.ctx, e.user.ID, DashboardFilter{TimeFrame: domain.TimeFrameWeek, Start: &start, End: &end})
	require.NoError(t, err)

	require.Len(t, sum.Periods, 2)
	assert.Equal(t, "2024-W52", sum.Periods[0].Period)
	assert.InDelta(t, 4, sum.Periods[0].TotalHours, 0.001)
	assert.Equal(t, "2025-W1", sum.Periods[1].Period)
	assert.InDelta(t, 2, sum.Periods[1].TotalHours, 0.001)

	assert.InDelta(t, 6, sum.TotalHours, 0.001)
	assert.InDelta(t, 300, sum.TotalEarnings, 0.001)
	assert.InDelta(t, 39, sum.TotalTax, 0.001)
}

func TestDashboard_ClientsStatusesAndInvoiceTotals(t *testing.T) {
	e := newEnv(t)
	idle := e.addClient(t, "Lakeside Clinic")
	s := e.addShift(t, day(2025, 3, 3, 9), 4)
	m := e.addMileage(t, day(2025, 3, 3, 0), 10, 0.5)

	issue := day(2025, 3, 10, 0)
	a, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s.ID}, IssueDate: &issue})
	require.NoError(t, err)
	_, err = e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, MileageIDs: []string{m.ID}, IssueDate: &issue})
	require.NoError(t, err)
	_, err = e.invoice.MarkAsPaid(e.ctx, e.user.ID, a.ID, nil)
	require.NoError(t, err)

	start, end := day(2025, 3, 1, 0), day(2025, 3, 31, 23)
	sum, err := e.dashboard.Summary(e.ctx, e.user.ID, DashboardFilter{TimeFrame: domain.TimeFrameMonth, Start: &start, End: &end})
	require.NoError(t, err)

	assert.InDelta(t, 231, sum.TotalInvoiced, 0.001)
	assert.InDelta(t, 226, sum.TotalPaid, 0.001)
	assert.InDelta(t, 5, sum.TotalUnpaid, 0.001)
	assert.InDelta(t, 10, sum.TotalMileage, 0.001)
	assert.InDelta(t, 5, sum.TotalMileageAmount, 0.001)

	require.Len(t, sum.Clients, 2)
	byName := map[string]ClientSummary{}
	for _, c := range sum.Clients {
		byName[c.Name] = c
	}
	assert.InDelta(t, 200, byName[e.client.Name].TotalEarnings, 0.001)
	assert.Zero(t, byName[idle.Name].TotalHours)

	require.Len(t, sum.Statuses, len(domain.InvoiceStatuses))
	for _, st := range sum.Statuses {
		switch st.Status {
		case domain.InvoiceStatusPaid, domain.InvoiceStatusDraft:
			assert.Equal(t, 1, st.Count, st.Status)
		default:
			assert.Zero(t, st.Count, st.Status)
		}
	}

	require.Len(t, sum.Periods, 1)
	assert.Equal(t, "2025-03", sum.Periods[0].Period)

	only, err := e.dashboard.Summary(e.ctx, e.user.ID, DashboardFilter{ClientID: &idle.ID, Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, only.Clients, 1)
	assert.Zero(t, only.TotalHours)
	assert.Zero(t, only.TotalInvoiced)
}

func TestDashboard_DefaultRange(t *testing.T) {
	e := newEnv(t)
	svc := e.dashboard.(*dashboardService)
	svc.now = func() time.Time { return time.Date(2025, 5, 14, 12, 0, 0, 0, time.UTC) }

	sum, err := e.dashboard.Summary(e.ctx, e.user.ID, DashboardFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.TimeFrameMonth, sum.TimeFrame)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), sum.Start)

	sum, err = e.dashboard.Summary(e.ctx, e.user.ID, DashboardFilter{TimeFrame: domain.TimeFrameWeek})
	require.NoError(t, err)
	assert.Equal(t, time.Monday, sum.Start.Weekday())
	require.Len(t, sum.Periods, 1)
	assert.Equal(t, "2025-W20", sum.Periods[0].Period)
}

func TestDashboard_RejectsInvertedRange(t *testing.T) {
	e := newEnv(t)
	start, end := day(2025, 3, 2, 0), day(2025, 3, 1, 0)
	_, err := e.dashboard.Summary(e.ctx, e.user.ID, DashboardFilter{Start: &start, End: &end})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
