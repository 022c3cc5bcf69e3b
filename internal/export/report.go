// Package export renders shifts, mileages, invoices and earnings summaries
// as PDF or Excel documents.
package export

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

// Format is the output document type
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
)

// ParseFormat accepts pdf, xlsx or excel
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	}
	return "", domain.Validation("export", "unknown export format %q (want pdf or xlsx)", s)
}

// DataType selects what an export contains
type DataType string

const (
	DataShifts          DataType = "shifts"
	DataMileages        DataType = "mileages"
	DataInvoice         DataType = "invoice"
	DataEarningsSummary DataType = "earnings_summary"
)

// ParseDataType converts user input into a data type
func ParseDataType(s string) (DataType, error) {
	dt := DataType(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	switch dt {
	case DataShifts, DataMileages, DataInvoice, DataEarningsSummary:
		return dt, nil
	}
	return "", domain.Validation("export", "unknown export data type %q", s)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

const unknownClient = "Unknown Client"

// Header is the title block shared by every document
type Header struct {
	Title     string
	Owner     string
	Email     string
	Period    string // empty when the document is not range bound
	Generated time.Time
}

// ShiftRow is one printable shift
type ShiftRow struct {
	Date     string
	Start    string
	End      string
	Client   string
	Hours    decimal.Decimal
	Rate     decimal.Decimal
	Earnings decimal.Decimal
	Tax      decimal.Decimal
}

// MileageRow is one printable mileage record
type MileageRow struct {
	Date     string
	Client   string
	From     string
	To       string
	Distance decimal.Decimal
	Rate     decimal.Decimal
	Amount   decimal.Decimal
}

// ClientRow is one client's share of an earnings summary
type ClientRow struct {
	Client        string
	Hours         decimal.Decimal
	Earnings      decimal.Decimal
	Tax           decimal.Decimal
	Distance      decimal.Decimal
	MileageAmount decimal.Decimal
}

// Total is earnings + tax + mileage for the client
func (r ClientRow) Total() decimal.Decimal {
	return r.Earnings.Add(r.Tax).Add(r.MileageAmount)
}

// Totals sums a document's rows
type Totals struct {
	Hours         decimal.Decimal
	Earnings      decimal.Decimal
	Tax           decimal.Decimal
	Distance      decimal.Decimal
	MileageAmount decimal.Decimal
}

// Grand is earnings + tax + mileage amount
func (t Totals) Grand() decimal.Decimal {
	return t.Earnings.Add(t.Tax).Add(t.MileageAmount)
}

// ShiftsReport lists shifts with their totals
type ShiftsReport struct {
	Header Header
	Rows   []ShiftRow
	Totals Totals
}

// MileagesReport lists mileage records with their totals
type MileagesReport struct {
	Header Header
	Rows   []MileageRow
	Totals Totals
}

// InvoiceReport is a printable invoice. Totals come from the invoice's cached
// figures, which always match its claimed records.
type InvoiceReport struct {
	Header       Header
	Number       string
	Status       string
	IssueDate    string
	DueDate      string
	Client       *domain.Client
	Notes        string
	PaymentNotes string
	Shifts       []ShiftRow
	Mileages     []MileageRow
	Totals       Totals
}

// EarningsReport summarizes a date range overall and per client
type EarningsReport struct {
	Header  Header
	Clients []ClientRow
	Totals  Totals
}

// Renderer writes documents in one format
type Renderer interface {
	Shifts(w io.Writer, r ShiftsReport) error
	Mileages(w io.Writer, r MileagesReport) error
	Invoice(w io.Writer, r InvoiceReport) error
	Earnings(w io.Writer, r EarningsReport) error
}

// NewRenderer returns the renderer for f
func NewRenderer(f Format) (Renderer, error) {
	switch f {
	case FormatPDF:
		return pdfRenderer{}, nil
	case FormatExcel:
		return excelRenderer{}, nil
	}
	return nil, domain.Validation("export", "unknown export format %q", f)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func clientName(c *domain.Client) string {
	if c == nil || c.Name == "" {
		return unknownClient
	}
	return c.Name
}

// BuildShiftRows flattens shifts into rows ordered by start time. clients
// resolves names when a shift has no Client attached.
func BuildShiftRows(shifts []*domain.Shift, clients map[string]*domain.Client) ([]ShiftRow, Totals) {
	sorted := append([]*domain.Shift(nil), shifts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	rows := make([]ShiftRow, 0, len(sorted))
	var t Totals
	for _, s := range sorted {
		c := s.Client
		if c == nil {
			c = clients[s.ClientID]
		}
		row := ShiftRow{
			Date:     s.StartTime.Format(dateLayout),
			Start:    s.StartTime.Format(timeLayout),
			End:      s.EndTime.Format(timeLayout),
			Client:   clientName(c),
			Hours:    money(s.TotalHours),
			Rate:     money(s.HourlyRate),
			Earnings: money(s.Earnings),
			Tax:      money(s.TaxAmount),
		}
		t.Hours = t.Hours.Add(row.Hours)
		t.Earnings = t.Earnings.Add(row.Earnings)
		t.Tax = t.Tax.Add(row.Tax)
		rows = append(rows, row)
	}
	return rows, t
}

// BuildMileageRows flattens mileage records into rows ordered by date
func BuildMileageRows(mileages []*domain.Mileage, clients map[string]*domain.Client) ([]MileageRow, Totals) {
	sorted := append([]*domain.Mileage(nil), mileages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	rows := make([]MileageRow, 0, len(sorted))
	var t Totals
	for _, m := range sorted {
		c := m.Client
		if c == nil {
			c = clients[m.ClientID]
		}
		row := MileageRow{
			Date:     m.Date.Format(dateLayout),
			Client:   clientName(c),
			From:     m.FromLocation,
			To:       m.ToLocation,
			Distance: money(m.Distance),
			Rate:     money(m.RatePerKm),
			Amount:   money(m.Amount),
		}
		t.Distance = t.Distance.Add(row.Distance)
		t.MileageAmount = t.MileageAmount.Add(row.Amount)
		rows = append(rows, row)
	}
	return rows, t
}

// BuildInvoiceReport projects a hydrated invoice
func BuildInvoiceReport(h Header, inv *domain.Invoice) InvoiceReport {
	clients := map[string]*domain.Client{}
	if inv.Client != nil {
		clients[inv.Client.ID] = inv.Client
	}
	shifts, _ := BuildShiftRows(inv.Shifts, clients)
	mileages, _ := BuildMileageRows(inv.Mileages, clients)

	return InvoiceReport{
		Header:       h,
		Number:       inv.Number,
		Status:       string(inv.Status),
		IssueDate:    inv.IssueDate.Format(dateLayout),
		DueDate:      inv.DueDate.Format(dateLayout),
		Client:       inv.Client,
		Notes:        inv.Notes,
		PaymentNotes: inv.PaymentNotes,
		Shifts:       shifts,
		Mileages:     mileages,
		Totals:       invoiceTotals(inv.Totals()),
	}
}

// BuildEarningsReport groups shifts and mileages by client. Every listed
// client gets a row, even with no activity.
func BuildEarningsReport(h Header, shifts []*domain.Shift, mileages []*domain.Mileage, clients []*domain.Client) EarningsReport {
	rows := make([]ClientRow, len(clients))
	byID := make(map[string]*ClientRow, len(clients))
	for i, c := range clients {
		rows[i].Client = clientName(c)
		byID[c.ID] = &rows[i]
	}

	var t Totals
	for _, s := range shifts {
		hours, earnings, tax := money(s.TotalHours), money(s.Earnings), money(s.TaxAmount)
		t.Hours = t.Hours.Add(hours)
		t.Earnings = t.Earnings.Add(earnings)
		t.Tax = t.Tax.Add(tax)
		if r, ok := byID[s.ClientID]; ok {
			r.Hours = r.Hours.Add(hours)
			r.Earnings = r.Earnings.Add(earnings)
			r.Tax = r.Tax.Add(tax)
		}
	}
	for _, m := range mileages {
		dist, amount := money(m.Distance), money(m.Amount)
		t.Distance = t.Distance.Add(dist)
		t.MileageAmount = t.MileageAmount.Add(amount)
		if r, ok := byID[m.ClientID]; ok {
			r.Distance = r.Distance.Add(dist)
			r.MileageAmount = r.MileageAmount.Add(amount)
		}
	}

	return EarningsReport{Header: h, Clients: rows, Totals: t}
}

func invoiceTotals(t domain.InvoiceTotals) Totals {
	return Totals{
		Hours:         money(t.Hours),
		Earnings:      money(t.Earnings),
		Tax:           money(t.Tax),
		MileageAmount: money(t.Mileage),
	}
}

func currency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
