package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

func TestResetInvoices_RemovesProofFiles(t *testing.T) {
	e := newEnv(t)
	s := e.addShift(t, day(2025, 1, 6, 9), 4)

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID, ShiftIDs: []string{s.ID}})
	require.NoError(t, err)
	_, err = e.invoice.AttachPaymentProof(e.ctx, e.user.ID, inv.ID, "receipt.png", []byte("paid"))
	require.NoError(t, err)
	require.Len(t, e.files.paths(), 1)

	// Export files are not payment proofs and stay put
	require.NoError(t, e.files.Save("exports/"+e.user.ID+"/keep.pdf", []byte("pdf")))

	require.NoError(t, e.reset.ResetInvoices(e.ctx, e.user.ID))

	assert.Equal(t, []string{"exports/" + e.user.ID + "/keep.pdf"}, e.files.paths())
	_, err = e.invoice.GetInvoice(e.ctx, e.user.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := e.shifts.Get(e.ctx, e.user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsInvoiced())
}

func TestResetAll_RemovesProofFiles(t *testing.T) {
	e := newEnv(t)
	e.addShift(t, day(2025, 1, 6, 9), 4)

	inv, err := e.invoice.CreateInvoice(e.ctx, e.user.ID, CreateInvoiceInput{ClientID: e.client.ID})
	require.NoError(t, err)
	_, err = e.invoice.AttachPaymentProof(e.ctx, e.user.ID, inv.ID, "receipt.pdf", []byte("paid"))
	require.NoError(t, err)

	require.NoError(t, e.reset.ResetAll(e.ctx, e.user.ID))

	assert.Empty(t, e.files.paths())
	shifts, err := e.shifts.List(e.ctx, e.user.ID, repository.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, shifts)
}
