package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/export"
	"github.com/Mayesamomo/wageflow/internal/filestore"
	"github.com/Mayesamomo/wageflow/internal/logger"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// ExportRequest selects what to export. Start/End bound shifts and mileages;
// IDs narrows them further. InvoiceID is required for the invoice data type.
type ExportRequest struct {
	Format    export.Format
	DataType  export.DataType
	ClientID  *string
	Start     *time.Time
	End       *time.Time
	IDs       []string
	InvoiceID string
}

// ExportResult locates a written document
type ExportResult struct {
	Path     string // relative to the file store root
	Filename string
	Size     int
}

// ExportService renders documents and writes them to the file store
type ExportService interface {
	Export(ctx context.Context, ownerID string, req ExportRequest) (*ExportResult, error)
}

type exportService struct {
	userRepo    repository.UserRepository
	clientRepo  repository.ClientRepository
	shiftRepo   repository.ShiftRepository
	mileageRepo repository.MileageRepository
	invoices    InvoiceService
	files       filestore.Store
	log         zerolog.Logger
	now         func() time.Time
}

// NewExportService creates a new export service
func NewExportService(
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	shiftRepo repository.ShiftRepository,
	mileageRepo repository.MileageRepository,
	invoices InvoiceService,
	files filestore.Store,
) ExportService {
	return &exportService{
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		shiftRepo:   shiftRepo,
		mileageRepo: mileageRepo,
		invoices:    invoices,
		files:       files,
		log:         logger.WithComponent("export"),
		now:         time.Now,
	}
}

func (s *exportService) Export(ctx context.Context, ownerID string, req ExportRequest) (*ExportResult, error) {
	renderer, err := export.NewRenderer(req.Format)
	if err != nil {
		return nil, err
	}
	if req.Start != nil && req.End != nil && req.End.Before(*req.Start) {
		return nil, domain.Validation("export", "end date cannot be before start date")
	}

	user, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	generated := s.now()
	header := export.Header{
		Owner:     user.FullName(),
		Email:     user.Email,
		Period:    periodLabel(req.Start, req.End),
		Generated: generated,
	}

	var buf bytes.Buffer
	switch req.DataType {
	case export.DataShifts:
		err = s.shifts(ctx, ownerID, req, header, renderer, &buf)
	case export.DataMileages:
		err = s.mileages(ctx, ownerID, req, header, renderer, &buf)
	case export.DataInvoice:
		err = s.invoice(ctx, ownerID, req, header, renderer, &buf)
	case export.DataEarningsSummary:
		err = s.earnings(ctx, ownerID, req, header, renderer, &buf)
	default:
		err = domain.Validation("export", "unknown export data type %q", req.DataType)
	}
	if err != nil {
		return nil, err
	}

	// The random suffix keeps exports written within the same second apart
	filename := fmt.Sprintf("%s_%s_%s.%s", req.DataType, generated.Format("20060102-150405"), uuid.NewString()[:8], req.Format)
	rel := path.Join("exports", ownerID, filename)
	if err := s.files.Save(rel, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	s.log.Info().
		Str("user_id", ownerID).
		Str("data_type", string(req.DataType)).
		Str("format", string(req.Format)).
		Int("bytes", buf.Len()).
		Msg("export written")

	return &ExportResult{Path: rel, Filename: filename, Size: buf.Len()}, nil
}

func (s *exportService) recordFilter(req ExportRequest) repository.RecordFilter {
	return repository.RecordFilter{ClientID: req.ClientID, Start: req.Start, End: req.End, IDs: req.IDs}
}

func (s *exportService) clientIndex(ctx context.Context, ownerID string) (map[string]*domain.Client, []*domain.Client, error) {
	clients, err := s.clientRepo.List(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*domain.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	return byID, clients, nil
}

func (s *exportService) shifts(ctx context.Context, ownerID string, req ExportRequest, h export.Header, r export.Renderer, buf *bytes.Buffer) error {
	shifts, err := s.shiftRepo.List(ctx, ownerID, s.recordFilter(req))
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		return domain.NotFound("export", "no shifts match the export criteria")
	}
	clients, _, err := s.clientIndex(ctx, ownerID)
	if err != nil {
		return err
	}

	h.Title = "Shifts Report"
	rows, totals := export.BuildShiftRows(shifts, clients)
	return r.Shifts(buf, export.ShiftsReport{Header: h, Rows: rows, Totals: totals})
}

func (s *exportService) mileages(ctx context.Context, ownerID string, req ExportRequest, h export.Header, r export.Renderer, buf *bytes.Buffer) error {
	mileages, err := s.mileageRepo.List(ctx, ownerID, s.recordFilter(req))
	if err != nil {
		return err
	}
	if len(mileages) == 0 {
		return domain.NotFound("export", "no mileage records match the export criteria")
	}
	clients, _, err := s.clientIndex(ctx, ownerID)
	if err != nil {
		return err
	}

	h.Title = "Mileage Report"
	rows, totals := export.BuildMileageRows(mileages, clients)
	return r.Mileages(buf, export.MileagesReport{Header: h, Rows: rows, Totals: totals})
}

func (s *exportService) invoice(ctx context.Context, ownerID string, req ExportRequest, h export.Header, r export.Renderer, buf *bytes.Buffer) error {
	if req.InvoiceID == "" {
		return domain.Validation("export", "an invoice id is required to export an invoice")
	}
	inv, err := s.invoices.GetInvoice(ctx, ownerID, req.InvoiceID)
	if err != nil {
		return err
	}

	h.Title = "Invoice " + inv.Number
	h.Period = ""
	return r.Invoice(buf, export.BuildInvoiceReport(h, inv))
}

func (s *exportService) earnings(ctx context.Context, ownerID string, req ExportRequest, h export.Header, r export.Renderer, buf *bytes.Buffer) error {
	if req.Start == nil || req.End == nil {
		return domain.Validation("export", "start and end dates are required for an earnings summary")
	}

	filter := s.recordFilter(req)
	shifts, err := s.shiftRepo.List(ctx, ownerID, filter)
	if err != nil {
		return err
	}
	mileages, err := s.mileageRepo.List(ctx, ownerID, filter)
	if err != nil {
		return err
	}
	if len(shifts) == 0 && len(mileages) == 0 {
		return domain.NotFound("export", "no shifts or mileage records in the selected period")
	}

	_, clients, err := s.clientIndex(ctx, ownerID)
	if err != nil {
		return err
	}
	if req.ClientID != nil {
		var only []*domain.Client
		for _, c := range clients {
			if c.ID == *req.ClientID {
				only = append(only, c)
			}
		}
		clients = only
	}

	h.Title = "Earnings Summary"
	return r.Earnings(buf, export.BuildEarningsReport(h, shifts, mileages, clients))
}

func periodLabel(start, end *time.Time) string {
	switch {
	case start != nil && end != nil:
		return start.Format("2006-01-02") + " to " + end.Format("2006-01-02")
	case start != nil:
		return "from " + start.Format("2006-01-02")
	case end != nil:
		return "until " + end.Format("2006-01-02")
	}
	return ""
}
