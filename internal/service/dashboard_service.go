package service

import (
	"context"
	"time"

	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
)

// DashboardFilter selects the window for a summary. When Start and End are
// both set they form a custom range; otherwise the current TimeFrame period is used.
type DashboardFilter struct {
	TimeFrame domain.TimeFrame
	ClientID  *string
	Start     *time.Time
	End       *time.Time
}

// ClientSummary totals one client's work within the window
type ClientSummary struct {
	ClientID           string
	Name               string
	TotalHours         float64
	TotalEarnings      float64
	TotalMileage       float64
	TotalMileageAmount float64
}

// PeriodSummary totals one period bucket
type PeriodSummary struct {
	Period             string
	TotalHours         float64
	TotalEarnings      float64
	TotalMileage       float64
	TotalMileageAmount float64
}

// StatusSummary counts invoices issued in the window by status
type StatusSummary struct {
	Status domain.InvoiceStatus
	Count  int
	Total  float64
}

// DashboardSummary is the earnings overview for a window
type DashboardSummary struct {
	TimeFrame domain.TimeFrame
	Start     time.Time
	End       time.Time

	TotalHours         float64
	TotalEarnings      float64
	TotalTax           float64
	TotalMileage       float64
	TotalMileageAmount float64
	TotalInvoiced      float64
	TotalPaid          float64
	TotalUnpaid        float64

	Clients  []ClientSummary
	Periods  []PeriodSummary
	Statuses []StatusSummary
}

// DashboardService builds read-only earnings summaries
type DashboardService interface {
	Summary(ctx context.Context, ownerID string, filter DashboardFilter) (*DashboardSummary, error)
}

type dashboardService struct {
	shiftRepo   repository.ShiftRepository
	mileageRepo repository.MileageRepository
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	shiftRepo repository.ShiftRepository,
	mileageRepo repository.MileageRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
) DashboardService {
	return &dashboardService{
		shiftRepo:   shiftRepo,
		mileageRepo: mileageRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		now:         time.Now,
	}
}

func (s *dashboardService) Summary(ctx context.Context, ownerID string, filter DashboardFilter) (*DashboardSummary, error) {
	tf := filter.TimeFrame
	if tf == "" {
		tf = domain.TimeFrameMonth
	}

	var start, end time.Time
	if filter.Start != nil && filter.End != nil {
		start, end = *filter.Start, *filter.End
		if end.Before(start) {
			return nil, domain.Validation("dashboard", "end date cannot be before start date")
		}
	} else {
		start, end = tf.Range(s.now())
	}

	records := repository.RecordFilter{ClientID: filter.ClientID, Start: &start, End: &end}
	shifts, err := s.shiftRepo.List(ctx, ownerID, records)
	if err != nil {
		return nil, err
	}
	mileages, err := s.mileageRepo.List(ctx, ownerID, records)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.List(ctx, ownerID, repository.InvoiceFilter{
		ClientID:   filter.ClientID,
		IssuedFrom: &start,
		IssuedTo:   &end,
	})
	if err != nil {
		return nil, err
	}

	var clients []*domain.Client
	if filter.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, ownerID, *filter.ClientID)
		if err != nil {
			return nil, err
		}
		clients = []*domain.Client{client}
	} else if clients, err = s.clientRepo.List(ctx, ownerID); err != nil {
		return nil, err
	}

	summary := &DashboardSummary{TimeFrame: tf, Start: start, End: end}
	summarizeRecords(summary, tf, shifts, mileages, clients)
	summarizeInvoices(summary, invoices)
	return summary, nil
}

// summarizeRecords fills the overall, per-client and per-period totals. Every
// period in the window gets a bucket, including empty ones.
func summarizeRecords(sum *DashboardSummary, tf domain.TimeFrame, shifts []*domain.Shift, mileages []*domain.Mileage, clients []*domain.Client) {
	labels := tf.Labels(sum.Start, sum.End)
	periods := make(map[string]*PeriodSummary, len(labels))
	sum.Periods = make([]PeriodSummary, len(labels))
	for i, label := range labels {
		sum.Periods[i].Period = label
		periods[label] = &sum.Periods[i]
	}

	sum.Clients = make([]ClientSummary, len(clients))
	byClient := make(map[string]*ClientSummary, len(clients))
	for i, c := range clients {
		sum.Clients[i] = ClientSummary{ClientID: c.ID, Name: c.Name}
		byClient[c.ID] = &sum.Clients[i]
	}

	for _, sh := range shifts {
		sum.TotalHours += sh.TotalHours
		sum.TotalEarnings += sh.Earnings
		sum.TotalTax += sh.TaxAmount
		if c, ok := byClient[sh.ClientID]; ok {
			c.TotalHours += sh.TotalHours
			c.TotalEarnings += sh.Earnings
		}
		if p, ok := periods[tf.Label(sh.StartTime)]; ok {
			p.TotalHours += sh.TotalHours
			p.TotalEarnings += sh.Earnings
		}
	}

	for _, m := range mileages {
		sum.TotalMileage += m.Distance
		sum.TotalMileageAmount += m.Amount
		if c, ok := byClient[m.ClientID]; ok {
			c.TotalMileage += m.Distance
			c.TotalMileageAmount += m.Amount
		}
		if p, ok := periods[tf.Label(m.Date)]; ok {
			p.TotalMileage += m.Distance
			p.TotalMileageAmount += m.Amount
		}
	}
}

func summarizeInvoices(sum *DashboardSummary, invoices []*domain.Invoice) {
	sum.Statuses = make([]StatusSummary, len(domain.InvoiceStatuses))
	byStatus := make(map[domain.InvoiceStatus]*StatusSummary, len(domain.InvoiceStatuses))
	for i, st := range domain.InvoiceStatuses {
		sum.Statuses[i].Status = st
		byStatus[st] = &sum.Statuses[i]
	}

	for _, inv := range invoices {
		sum.TotalInvoiced += inv.GrandTotal
		if inv.Status == domain.InvoiceStatusPaid {
			sum.TotalPaid += inv.GrandTotal
		}
		if st, ok := byStatus[inv.Status]; ok {
			st.Count++
			st.Total += inv.GrandTotal
		}
	}
	sum.TotalUnpaid = sum.TotalInvoiced - sum.TotalPaid
}
