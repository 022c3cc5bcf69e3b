package service

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mayesamomo/wageflow/internal/config"
	"github.com/Mayesamomo/wageflow/internal/db"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// memStore is an in-memory filestore.Store
type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (m *memStore) Save(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, domain.NotFound("memstore", "file %s not found", path)
	}
	return data, nil
}

func (m *memStore) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	return nil
}

func (m *memStore) Exists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok, nil
}

func (m *memStore) Abs(path string) (string, error) {
	return filepath.Join("/mem", path), nil
}

func (m *memStore) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// env wires every service against a fresh encrypted database
type env struct {
	ctx    context.Context
	db     *db.DB
	files  *memStore
	user   *domain.User
	client *domain.Client

	users    *repository.UserRepo
	clients  *repository.ClientRepo
	shiftDB  *repository.ShiftRepo
	mileDB   *repository.MileageRepo
	invoices *repository.InvoiceRepo

	shifts    ShiftService
	mileages  MileageService
	invoice   InvoiceService
	clock     ClockService
	dashboard DashboardService
	export    ExportService
	reset     ResetService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.RunMigrations())

	e := &env{
		ctx:      ctx,
		db:       database,
		files:    newMemStore(),
		users:    repository.NewUserRepo(database),
		clients:  repository.NewClientRepo(database),
		shiftDB:  repository.NewShiftRepo(database),
		mileDB:   repository.NewMileageRepo(database),
		invoices: repository.NewInvoiceRepo(database),
	}

	rate := 50.0
	e.user = domain.NewUser("ada@example.com", "Ada", "Nurse")
	e.user.PasswordHash = "x"
	e.user.HourlyRate = &rate
	require.NoError(t, e.users.Create(ctx, e.user))

	e.client = domain.NewClient(e.user.ID, "Maple Home Care")
	require.NoError(t, e.clients.Create(ctx, e.client))

	e.shifts = NewShiftService(e.shiftDB, e.clients, e.users)
	e.mileages = NewMileageService(e.mileDB, e.clients, e.users)
	e.invoice = NewInvoiceService(e.invoices, e.clients, e.shiftDB, e.mileDB, e.files, config.InvoiceConfig{})
	e.clock = NewClockService(repository.NewClockRepo(database), e.clients, e.users, e.shifts)
	e.dashboard = NewDashboardService(e.shiftDB, e.mileDB, e.invoices, e.clients)
	e.export = NewExportService(e.users, e.clients, e.shiftDB, e.mileDB, e.invoice, e.files)
	e.reset = NewResetService(repository.NewResetRepo(database), e.files)
	return e
}

func (e *env) addShift(t *testing.T, start time.Time, hours int) *domain.Shift {
	t.Helper()
	end := start.Add(time.Duration(hours) * time.Hour)
	s, err := e.shifts.Create(e.ctx, e.user.ID, ShiftInput{ClientID: &e.client.ID, StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	return s
}

func (e *env) addMileage(t *testing.T, date time.Time, km, rate float64) *domain.Mileage {
	t.Helper()
	m, err := e.mileages.Create(e.ctx, e.user.ID, MileageInput{ClientID: &e.client.ID, Date: &date, Distance: &km, RatePerKm: &rate})
	require.NoError(t, err)
	return m
}

func (e *env) addClient(t *testing.T, name string) *domain.Client {
	t.Helper()
	c := domain.NewClient(e.user.ID, name)
	require.NoError(t, e.clients.Create(e.ctx, c))
	return c
}

func ptr[T any](v T) *T {
	return &v
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}
