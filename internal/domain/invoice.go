package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// DefaultDueDays is the gap between issue and due date when no due date is given.
const DefaultDueDays = 30

// InvoiceStatuses lists every status in lifecycle order
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// nominalTransitions is the usual flow. It is informational only: any status
// other than Paid may move to any status.
var nominalTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
}

// ParseInvoiceStatus converts user input into a status
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", Validation("invoice", "unknown invoice status %q", s)
	}
	return st, nil
}

// Valid reports whether s is a known status
func (s InvoiceStatus) Valid() bool {
	for _, st := range InvoiceStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Editable reports whether an invoice in this status accepts general updates.
// Paid invoices only accept payment metadata.
func (s InvoiceStatus) Editable() bool {
	return s != InvoiceStatusPaid
}

// Deletable reports whether an invoice in this status can be deleted
func (s InvoiceStatus) Deletable() bool {
	return s != InvoiceStatusSent && s != InvoiceStatusPaid
}

// CanTransition reports whether a status patch from s to next is accepted.
// Every non-Paid status may move to any status. Paid only stays Paid.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == InvoiceStatusPaid {
		return next == InvoiceStatusPaid
	}
	return true
}

// Nominal reports whether s -> next follows the usual lifecycle flow
func (s InvoiceStatus) Nominal(next InvoiceStatus) bool {
	if s == next {
		return true
	}
	for _, st := range nominalTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID            string
	OwnerID       string
	ClientID      string
	Number        string
	IssueDate     time.Time
	DueDate       time.Time
	Status        InvoiceStatus
	HoursTotal    float64
	EarningsTotal float64
	TaxTotal      float64
	MileageTotal  float64
	GrandTotal    float64
	Notes         string
	PaymentNotes  string
	PaymentProof  string // file store path, empty if none
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Claim sets
	ShiftIDs   []string
	MileageIDs []string

	// Expanded relations, populated on demand
	Client   *Client
	Shifts   []*Shift
	Mileages []*Mileage
}

// FormatInvoiceNumber builds INV-<first 4 chars of owner>-<seq padded to 4>
func FormatInvoiceNumber(prefix, ownerID string, seq int) string {
	short := ownerID
	if len(short) > 4 {
		short = short[:4]
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, short, seq)
}

// NewInvoice creates a draft invoice. A zero issue date means now and a zero
// due date means issue date + dueDays.
func NewInvoice(ownerID, clientID, number string, issueDate, dueDate time.Time, dueDays int) *Invoice {
	now := time.Now()
	if issueDate.IsZero() {
		issueDate = now
	}
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, dueDays)
	}
	return &Invoice{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ClientID:  clientID,
		Number:    number,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Status:    InvoiceStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyTotals overwrites the cached totals
func (i *Invoice) ApplyTotals(t InvoiceTotals) {
	i.HoursTotal = t.Hours
	i.EarningsTotal = t.Earnings
	i.TaxTotal = t.Tax
	i.MileageTotal = t.Mileage
	i.GrandTotal = t.GrandTotal()
}

// Totals returns the cached totals
func (i *Invoice) Totals() InvoiceTotals {
	return InvoiceTotals{
		Hours:    i.HoursTotal,
		Earnings: i.EarningsTotal,
		Tax:      i.TaxTotal,
		Mileage:  i.MileageTotal,
	}
}

// Transition moves the invoice to next at now if the lifecycle allows it
func (i *Invoice) Transition(next InvoiceStatus, now time.Time) error {
	if !i.Status.CanTransition(next) {
		if !next.Valid() {
			return Validation("invoice", "unknown invoice status %q", next)
		}
		return Immutable("invoice", "invoice %s is %s and cannot move to %s", i.Number, i.Status, next)
	}
	i.Status = next
	i.UpdatedAt = now
	return nil
}

// IsOverdue reports whether a sent invoice is past due at now
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusSent && now.After(i.DueDate)
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.OwnerID == "" {
		return Validation("invoice", "owner is required")
	}
	if i.ClientID == "" {
		return Validation("invoice", "client is required")
	}
	if i.Number == "" {
		return Validation("invoice", "invoice number is required")
	}
	if !i.Status.Valid() {
		return Validation("invoice", "unknown invoice status %q", i.Status)
	}
	if i.DueDate.Before(i.IssueDate) {
		return Validation("invoice", "due date cannot be before issue date")
	}
	return nil
}
