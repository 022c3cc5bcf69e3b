package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-3f2a-0001", FormatInvoiceNumber("INV", "3f2a9c1e-0000", 1))
	assert.Equal(t, "INV-ab-0042", FormatInvoiceNumber("INV", "ab", 42))
}

func TestNewInvoice_Defaults(t *testing.T) {
	issue := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	inv := NewInvoice("owner", "client", "INV-owne-0001", issue, time.Time{}, DefaultDueDays)

	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, issue.AddDate(0, 0, 30), inv.DueDate)

	inv = NewInvoice("owner", "client", "INV-owne-0002", time.Time{}, time.Time{}, DefaultDueDays)
	assert.WithinDuration(t, time.Now(), inv.IssueDate, time.Minute)
	assert.Equal(t, inv.IssueDate.AddDate(0, 0, 30), inv.DueDate)
}

func TestInvoiceStatus_PermissiveTransitions(t *testing.T) {
	for _, from := range InvoiceStatuses {
		for _, to := range InvoiceStatuses {
			want := from != InvoiceStatusPaid || to == InvoiceStatusPaid
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, InvoiceStatusDraft.CanTransition("archived"))
}

func TestInvoiceStatus_Nominal(t *testing.T) {
	assert.True(t, InvoiceStatusDraft.Nominal(InvoiceStatusSent))
	assert.True(t, InvoiceStatusSent.Nominal(InvoiceStatusOverdue))
	assert.False(t, InvoiceStatusCancelled.Nominal(InvoiceStatusDraft))
	assert.True(t, InvoiceStatusPaid.Nominal(InvoiceStatusPaid))
}

func TestInvoiceStatus_EditDeleteRules(t *testing.T) {
	assert.False(t, InvoiceStatusPaid.Editable())
	assert.True(t, InvoiceStatusOverdue.Editable())
	assert.False(t, InvoiceStatusSent.Deletable())
	assert.False(t, InvoiceStatusPaid.Deletable())
	assert.True(t, InvoiceStatusDraft.Deletable())
	assert.True(t, InvoiceStatusCancelled.Deletable())
}

func TestInvoice_TransitionFromPaid(t *testing.T) {
	inv := NewInvoice("owner", "client", "INV-owne-0001", time.Time{}, time.Time{}, DefaultDueDays)
	paidAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, inv.Transition(InvoiceStatusPaid, paidAt))
	assert.Equal(t, paidAt, inv.UpdatedAt)

	err := inv.Transition(InvoiceStatusDraft, paidAt.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImmutable))
	assert.Equal(t, paidAt, inv.UpdatedAt)
	assert.NoError(t, inv.Transition(InvoiceStatusPaid, paidAt))
}

func TestInvoice_ApplyTotals(t *testing.T) {
	inv := &Invoice{}
	inv.ApplyTotals(InvoiceTotals{Hours: 4, Earnings: 200, Tax: 26, Mileage: 10})
	assert.Equal(t, 236.0, inv.GrandTotal)
	assert.Equal(t, InvoiceTotals{Hours: 4, Earnings: 200, Tax: 26, Mileage: 10}, inv.Totals())
}

func TestParseInvoiceStatus(t *testing.T) {
	st, err := ParseInvoiceStatus(" Sent ")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusSent, st)

	_, err = ParseInvoiceStatus("archived")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorKinds(t *testing.T) {
	err := NotFound("invoice", "invoice %s not found", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrImmutable)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
	assert.Equal(t, "invoice: invoice x not found", err.Error())
}
