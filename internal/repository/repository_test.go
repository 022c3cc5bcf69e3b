package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/domain"
)

type fixture struct {
	db       *db.DB
	user     *domain.User
	client   *domain.Client
	shifts   *ShiftRepo
	mileages *MileageRepo
	invoices *InvoiceRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.RunMigrations())

	user := domain.NewUser("nurse@example.com", "Ada", "Lovelace")
	user.PasswordHash = "x"
	require.NoError(t, NewUserRepo(database).Create(ctx, user))

	client := domain.NewClient(user.ID, "General Hospital")
	require.NoError(t, NewClientRepo(database).Create(ctx, client))

	return &fixture{
		db:       database,
		user:     user,
		client:   client,
		shifts:   NewShiftRepo(database),
		mileages: NewMileageRepo(database),
		invoices: NewInvoiceRepo(database),
	}
}

func (f *fixture) addShift(t *testing.T, start time.Time, hours int) *domain.Shift {
	t.Helper()
	s := domain.NewShift(f.user.ID, f.client.ID, start, start.Add(time.Duration(hours)*time.Hour), 50, 13)
	require.NoError(t, f.shifts.Create(context.Background(), s))
	return s
}

func (f *fixture) newInvoice(t *testing.T, tx InvoiceTx) *domain.Invoice {
	t.Helper()
	ctx := context.Background()
	seq, err := tx.NextSequence(ctx, f.user.ID)
	require.NoError(t, err)
	inv := domain.NewInvoice(f.user.ID, f.client.ID, domain.FormatInvoiceNumber("INV", f.user.ID, seq), time.Time{}, time.Time{}, 30)
	require.NoError(t, tx.Insert(ctx, inv))
	return inv
}

func TestLedger_ClaimIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	s1 := f.addShift(t, start, 4)
	s2 := f.addShift(t, start.Add(24*time.Hour), 4)

	var first *domain.Invoice
	err := f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		first = f.newInvoice(t, tx)
		claimed, err := tx.ClaimShifts(ctx, f.user.ID, first.ID, []string{s1.ID})
		require.Len(t, claimed, 1)
		return err
	})
	require.NoError(t, err)

	// s1 is taken, so claiming [s2, s1] must leave s2 unclaimed
	err = f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		second := f.newInvoice(t, tx)
		_, err := tx.ClaimShifts(ctx, f.user.ID, second.ID, []string{s2.ID, s1.ID})
		return err
	})
	require.ErrorIs(t, err, domain.ErrInvalidSelection)

	got, err := f.shifts.GetByID(ctx, f.user.ID, s2.ID)
	require.NoError(t, err)
	assert.False(t, got.IsInvoiced())

	got, err = f.shifts.GetByID(ctx, f.user.ID, s1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, first.ID, *got.InvoiceID)

	inv, err := f.invoices.GetByID(ctx, f.user.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{s1.ID}, inv.ShiftIDs)
}

func TestLedger_ClaimRejectsForeignAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 2)

	err := f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		inv := f.newInvoice(t, tx)
		_, err := tx.ClaimShifts(ctx, "someone-else", inv.ID, []string{s.ID})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	err = f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		inv := f.newInvoice(t, tx)
		_, err := tx.ClaimMileages(ctx, f.user.ID, inv.ID, []string{"missing"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestLedger_ConcurrentClaimsAreExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 2)

	const workers = 4
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
				seq, err := tx.NextSequence(ctx, f.user.ID)
				if err != nil {
					return err
				}
				inv := domain.NewInvoice(f.user.ID, f.client.ID, domain.FormatInvoiceNumber("INV", f.user.ID, seq), time.Time{}, time.Time{}, 30)
				if err := tx.Insert(ctx, inv); err != nil {
					return err
				}
				_, err = tx.ClaimShifts(ctx, f.user.ID, inv.ID, []string{s.ID})
				return err
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	}
	assert.Equal(t, 1, succeeded)
}

func TestLedger_Release(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 2)

	var inv *domain.Invoice
	require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		inv = f.newInvoice(t, tx)
		_, err := tx.ClaimShifts(ctx, f.user.ID, inv.ID, []string{s.ID})
		return err
	}))

	require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		if err := tx.ReleaseShifts(ctx, f.user.ID, inv.ID, []string{s.ID}); err != nil {
			return err
		}
		return tx.Delete(ctx, f.user.ID, inv.ID)
	}))

	got, err := f.shifts.GetByID(ctx, f.user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsInvoiced())

	_, err = f.invoices.GetByID(ctx, f.user.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceSequence_IsPerOwnerAndMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := domain.NewUser("other@example.com", "", "")
	other.PasswordHash = "x"
	require.NoError(t, NewUserRepo(f.db).Create(ctx, other))

	var seqs []int
	for i := 0; i < 3; i++ {
		require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
			seq, err := tx.NextSequence(ctx, f.user.ID)
			seqs = append(seqs, seq)
			return err
		}))
	}
	assert.Equal(t, []int{1, 2, 3}, seqs)

	require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		seq, err := tx.NextSequence(ctx, other.ID)
		assert.Equal(t, 1, seq)
		return err
	}))
}

func TestShiftRepo_ClaimedShiftIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 2)

	require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		inv := f.newInvoice(t, tx)
		_, err := tx.ClaimShifts(ctx, f.user.ID, inv.ID, []string{s.ID})
		return err
	}))

	s.Notes = "changed"
	assert.ErrorIs(t, f.shifts.Update(ctx, s, "typo"), domain.ErrImmutable)
	assert.ErrorIs(t, f.shifts.Delete(ctx, f.user.ID, s.ID), domain.ErrImmutable)
}

func TestShiftRepo_UpdateWritesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 2)

	s.HourlyRate = 60
	s.Notes = "night cover"
	s.Recalculate()
	require.NoError(t, f.shifts.Update(ctx, s, "rate correction"))

	history, err := f.shifts.GetHistory(ctx, f.user.ID, s.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	fields := map[string]*domain.ShiftHistory{}
	for _, h := range history {
		fields[h.FieldName] = h
	}
	require.Contains(t, fields, "hourly_rate")
	assert.Equal(t, "50.00", fields["hourly_rate"].OldValue)
	assert.Equal(t, "60.00", fields["hourly_rate"].NewValue)
	assert.Equal(t, "rate correction", fields["notes"].ChangeReason)
}

func TestShiftRepo_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.addShift(t, base.AddDate(0, 0, i), 1)
	}

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	shifts, err := f.shifts.List(ctx, f.user.ID, RecordFilter{Start: &from, End: &to})
	require.NoError(t, err)
	assert.Len(t, shifts, 3)

	shifts, err = f.shifts.List(ctx, f.user.ID, RecordFilter{Descending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.True(t, shifts[0].StartTime.After(shifts[1].StartTime))

	unbilled := false
	shifts, err = f.shifts.List(ctx, f.user.ID, RecordFilter{Invoiced: &unbilled})
	require.NoError(t, err)
	assert.Len(t, shifts, 5)

	shifts, err = f.shifts.List(ctx, "someone-else", RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestUserRepo_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)

	dup := domain.NewUser("NURSE@example.com", "", "")
	dup.PasswordHash = "x"
	err := NewUserRepo(f.db).Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestClientRepo_CountDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clients := NewClientRepo(f.db)

	n, err := clients.CountDependents(ctx, f.user.ID, f.client.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 1)
	n, err = clients.CountDependents(ctx, f.user.ID, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = clients.GetByID(ctx, "someone-else", f.client.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResetRepo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addShift(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), 2)

	var inv *domain.Invoice
	require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		inv = f.newInvoice(t, tx)
		if _, err := tx.ClaimShifts(ctx, f.user.ID, inv.ID, []string{s.ID}); err != nil {
			return err
		}
		inv.PaymentProof = "proofs/" + f.user.ID + "/receipt.png"
		return tx.Update(ctx, inv)
	}))
	require.NoError(t, f.invoices.WithTx(ctx, func(tx InvoiceTx) error {
		f.newInvoice(t, tx)
		return nil
	}))

	reset := NewResetRepo(f.db)
	proofs, err := reset.ResetInvoices(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{inv.PaymentProof}, proofs)

	got, err := f.shifts.GetByID(ctx, f.user.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsInvoiced())
	_, err = f.invoices.GetByID(ctx, f.user.ID, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	proofs, err = reset.ResetAll(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, proofs)
	_, err = f.shifts.GetByID(ctx, f.user.ID, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	clients, err := NewClientRepo(f.db).List(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, clients)

	_, err = NewUserRepo(f.db).GetByID(ctx, f.user.ID)
	assert.NoError(t, err, "the account survives a full reset")
}
