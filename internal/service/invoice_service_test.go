package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

func TestCreateInvoice_ClaimsAndTotals(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 4) // 4h x 50 at 13%

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{
		ClientID: e.client.ID,
		ShiftIDs: []string{s.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, domain.FormatInvoiceNumber("INV", e.user.ID, 1), inv.Number)
	assert.InDelta(t, 4, inv.HoursTotal, 0.001)
	assert.InDelta(t, 200, inv.EarningsTotal, 0.001)
	assert.InDelta(t, 26, inv.TaxTotal, 0.001)
	assert.InDelta(t, 0, inv.MileageTotal, 0.001)
	assert.InDelta(t, 226, inv.GrandTotal, 0.001)
	assert.Equal(t, inv.IssueDate.AddDate(0, 0, domain.DefaultDueDays).Unix(), inv.DueDate.Unix())

	require.Len(t, inv.Shifts, 1)
	require.NotNil(t, inv.Client)
	assert.Equal(t, e.client.Name, inv.Client.Name)

	claimed, err := e.shiftDB.GetByID(e.ctx, e.user.ID, s.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.InvoiceID)
	assert.Equal(t, inv.ID, *claimed.InvoiceID)
}

func TestCreateInvoice_WithMileage(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 2)
	m := e.addMileage(t, day(2025, 1, 6, 0), 20, 0.5)

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{
		ClientID:   e.client.ID,
		ShiftIDs:   []string{s.ID},
		MileageIDs: []string{m.ID},
	})
	require.NoError(t, err)
	assert.InDelta(t, 10, inv.MileageTotal, 0.001)
	assert.InDelta(t, 100+13+10, inv.GrandTotal, 0.001)
	assert.Len(t, inv.Mileages, 1)
}

func TestCreateInvoice_AlreadyClaimedFailsWithoutPartialClaim(t *testing.T) {
	e := newEnv(t)
	s1 := e.addShift(t, day(2025, 1, 6, 9), 4)
	s2 := e.addShift(t, day(2025, 1, 7, 9), 4)

	first, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s1.ID}})
	require.NoError(t, err)

	_, err = e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s1.ID, s2.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	free, err := e.shiftDB.GetByID(e.ctx, e.user.ID, s2.ID)
	require.NoError(t, err)
	assert.Nil(t, free.InvoiceID)

	held, err := e.shiftDB.GetByID(e.ctx, e.user.ID, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, *held.InvoiceID)

	list, err := e.invoice.ListInvoices(e.ctx, e.user.ID, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateInvoice_ForeignClientAndRecords(t *testing.T) {
	e := newEnv(t)

	_, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{"missing"}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestCreateInvoice_NumbersAreSequential(t *testing.T) {
	e := newEnv(t)

	a, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)
	b, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.FormatInvoiceNumber("INV", e.user.ID, 1), a.Number)
	assert.Equal(t, domain.FormatInvoiceNumber("INV", e.user.ID, 2), b.Number)
}

func TestUpdateInvoice_SetDifference(t *testing.T) {
	e := newEnv(t)
	s1 := e.addShift(t, day(2025, 1, 6, 9), 4)
	s2 := e.addShift(t, day(2025, 1, 7, 9), 2)
	s3 := e.addShift(t, day(2025, 1, 8, 9), 1)

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s1.ID, s2.ID}})
	require.NoError(t, err)

	inv, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{ShiftIDs: []string{s2.ID, s3.ID}})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{s2.ID, s3.ID}, inv.ShiftIDs)
	assert.InDelta(t, 3, inv.HoursTotal, 0.001)
	assert.InDelta(t, 150, inv.EarningsTotal, 0.001)
	assert.InDelta(t, 169.5, inv.GrandTotal, 0.001)

	released, err := e.shiftDB.GetByID(e.ctx, e.user.ID, s1.ID)
	require.NoError(t, err)
	assert.Nil(t, released.InvoiceID)
}

func TestUpdateInvoice_NilKeepsAndEmptyClears(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 4)
	m := e.addMileage(t, day(2025, 1, 6, 0), 10, 1)

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{
		ClientID: e.client.ID, ShiftIDs: []string{s.ID}, MileageIDs: []string{m.ID},
	})
	require.NoError(t, err)

	inv, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{Notes: ptr("January")})
	require.NoError(t, err)
	assert.Equal(t, "January", inv.Notes)
	assert.Len(t, inv.ShiftIDs, 1)
	assert.InDelta(t, 236, inv.GrandTotal, 0.001)

	inv, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{MileageIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, inv.MileageIDs)
	assert.Len(t, inv.ShiftIDs, 1)
	assert.InDelta(t, 226, inv.GrandTotal, 0.001)
}

func TestUpdateInvoice_FailedClaimRollsBackReleases(t *testing.T) {
	e := newEnv(t)
	s1 := e.addShift(t, day(2025, 1, 6, 9), 4)
	s2 := e.addShift(t, day(2025, 1, 7, 9), 4)

	a, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s1.ID}})
	require.NoError(t, err)
	_, err = e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s2.ID}})
	require.NoError(t, err)

	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, a.ID, InvoicePatch{ShiftIDs: []string{s2.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	kept, err := e.invoice.GetInvoice(e.ctx, e.user.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{s1.ID}, kept.ShiftIDs)
	assert.InDelta(t, 226, kept.GrandTotal, 0.001)
}

func TestUpdateInvoice_StatusPolicy(t *testing.T) {
	e := newEnv(t)
	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)

	// Off-path moves are accepted
	inv, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{Status: ptr(domain.InvoiceStatusOverdue)})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, inv.Status)

	inv, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{Status: ptr(domain.InvoiceStatusDraft)})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)

	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{Status: ptr(domain.InvoiceStatus("void"))})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateInvoice_DueBeforeIssue(t *testing.T) {
	e := newEnv(t)
	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)

	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{DueDate: ptr(inv.IssueDate.AddDate(0, 0, -1))})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPaidInvoiceIsImmutable(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 4)
	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s.ID}})
	require.NoError(t, err)

	paid, err := e.invoice.MarkAsPaid(e.ctx, e.user.ID, inv.ID, ptr("e-transfer"))
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, "e-transfer", paid.PaymentNotes)

	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{Notes: ptr("late edit")})
	assert.ErrorIs(t, err, domain.ErrImmutable)

	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{ShiftIDs: []string{}})
	assert.ErrorIs(t, err, domain.ErrImmutable)

	// Marking paid again is a no-op and may still amend payment notes
	again, err := e.invoice.MarkAsPaid(e.ctx, e.user.ID, inv.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, again.Status)
	assert.Equal(t, "e-transfer", again.PaymentNotes)

	err = e.invoice.DeleteInvoice(e.ctx, e.user.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrImmutable)

	_, err = e.shifts.Update(e.ctx, e.user.ID, s.ID, ShiftInput{Notes: ptr("edited")})
	assert.ErrorIs(t, err, domain.ErrImmutable)
}

func TestInvoiceTimestampsFollowServiceClock(t *testing.T) {
	e := newEnv(t)
	svc := e.invoice.(*invoiceService)
	created := day(2025, 2, 3, 9)
	svc.now = func() time.Time { return created }

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)
	assert.True(t, inv.IssueDate.Equal(created))
	assert.True(t, inv.CreatedAt.Equal(created))
	assert.True(t, inv.UpdatedAt.Equal(created))

	paidAt := day(2025, 2, 10, 15)
	svc.now = func() time.Time { return paidAt }
	paid, err := e.invoice.MarkAsPaid(e.ctx, e.user.ID, inv.ID, nil)
	require.NoError(t, err)
	assert.True(t, paid.UpdatedAt.Equal(paidAt), "updated_at %s", paid.UpdatedAt)
	assert.True(t, paid.CreatedAt.Equal(created))
}

func TestDeleteInvoice(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 4)
	m := e.addMileage(t, day(2025, 1, 6, 0), 10, 1)

	draft, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{
		ClientID: e.client.ID, ShiftIDs: []string{s.ID}, MileageIDs: []string{m.ID},
	})
	require.NoError(t, err)

	require.NoError(t, e.invoice.DeleteInvoice(e.ctx, e.user.ID, draft.ID))

	_, err = e.invoice.GetInvoice(e.ctx, e.user.ID, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	shift, err := e.shiftDB.GetByID(e.ctx, e.user.ID, s.ID)
	require.NoError(t, err)
	assert.Nil(t, shift.InvoiceID)
	mileage, err := e.mileDB.GetByID(e.ctx, e.user.ID, m.ID)
	require.NoError(t, err)
	assert.Nil(t, mileage.InvoiceID)

	// Released records can be claimed again
	sent, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s.ID}})
	require.NoError(t, err)
	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, sent.ID, InvoicePatch{Status: ptr(domain.InvoiceStatusSent)})
	require.NoError(t, err)

	err = e.invoice.DeleteInvoice(e.ctx, e.user.ID, sent.ID)
	assert.ErrorIs(t, err, domain.ErrImmutable)
}

func TestDeleteInvoice_CancelledAndOverdue(t *testing.T) {
	e := newEnv(t)
	for _, st := range []domain.InvoiceStatus{domain.InvoiceStatusCancelled, domain.InvoiceStatusOverdue} {
		inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
		require.NoError(t, err)
		_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, inv.ID, InvoicePatch{Status: ptr(st)})
		require.NoError(t, err)
		assert.NoError(t, e.invoice.DeleteInvoice(e.ctx, e.user.ID, inv.ID), st)
	}
}

func TestAttachPaymentProof(t *testing.T) {
	e := newEnv(t)
	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)

	_, _, err = e.invoice.GetPaymentProof(e.ctx, e.user.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.invoice.AttachPaymentProof(e.ctx, e.user.ID, inv.ID, "receipt.png", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	svc := e.invoice.(*invoiceService)
	svc.now = func() time.Time { return time.Unix(100, 0) }
	first, err := e.invoice.AttachPaymentProof(e.ctx, e.user.ID, inv.ID, "receipt.PNG", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, first.Status)
	assert.Contains(t, first.PaymentProof, e.user.ID)
	assert.Contains(t, first.PaymentProof, ".png")

	svc.now = func() time.Time { return time.Unix(200, 0) }
	second, err := e.invoice.AttachPaymentProof(e.ctx, e.user.ID, inv.ID, "receipt.pdf", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentProof, second.PaymentProof)
	assert.Equal(t, []string{second.PaymentProof}, e.files.paths())

	data, path, err := e.invoice.GetPaymentProof(e.ctx, e.user.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.Equal(t, second.PaymentProof, path)

	// A proof whose file went missing reports NotFound
	require.NoError(t, e.files.Delete(path))
	_, _, err = e.invoice.GetPaymentProof(e.ctx, e.user.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachPaymentProof_UnknownInvoiceWritesNothing(t *testing.T) {
	e := newEnv(t)
	_, err := e.invoice.AttachPaymentProof(e.ctx, e.user.ID, "missing", "r.png", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, e.files.paths())
}

func TestGetInvoice_OwnerScoped(t *testing.T) {
	e := newEnv(t)
	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)

	_, err = e.invoice.GetInvoice(e.ctx, "someone-else", inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = e.invoice.DeleteInvoice(e.ctx, "someone-else", inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkOverdue(t *testing.T) {
	e := newEnv(t)
	issue := day(2025, 1, 1, 0)

	late, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, IssueDate: &issue})
	require.NoError(t, err)
	_, err = e.invoice.UpdateInvoice(e.ctx, e.user.ID, late.ID, InvoicePatch{Status: ptr(domain.InvoiceStatusSent)})
	require.NoError(t, err)

	// Drafts are never marked overdue
	_, err = e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, IssueDate: &issue})
	require.NoError(t, err)

	n, err := e.invoice.MarkOverdue(e.ctx, e.user.ID, day(2025, 1, 15, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = e.invoice.MarkOverdue(e.ctx, e.user.ID, day(2025, 3, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.invoice.GetInvoice(e.ctx, e.user.ID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)
}

func TestListInvoices_Filters(t *testing.T) {
	e := newEnv(t)
	other := e.addClient(t, "Lakeside Clinic")

	_, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)
	b, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: other.ID})
	require.NoError(t, err)
	_, err = e.invoice.MarkAsPaid(e.ctx, e.user.ID, b.ID, nil)
	require.NoError(t, err)

	paid := domain.InvoiceStatusPaid
	list, err := e.invoice.ListInvoices(e.ctx, e.user.ID, repository.InvoiceFilter{Status: &paid})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lakeside Clinic", list[0].Client.Name)

	list, err = e.invoice.ListInvoices(e.ctx, e.user.ID, repository.InvoiceFilter{ClientID: &e.client.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDiffIDs(t *testing.T) {
	added, removed := diffIDs([]string{"a", "b", "c"}, []string{"c", "d", "d", "a"})
	assert.Equal(t, []string{"d"}, added)
	assert.Equal(t, []string{"b"}, removed)

	added, removed = diffIDs(nil, nil)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}
