package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

type pdfRenderer struct{}

type column struct {
	title string
	width float64
	align string
}

// pdfDoc wraps gofpdf with the table helpers every layout uses
type pdfDoc struct {
	*gofpdf.Fpdf
	tr func(string) string
}

func newPDF() *pdfDoc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return &pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *pdfDoc) header(h Header) {
	d.SetFont("Arial", "B", 18)
	d.CellFormat(0, 10, d.tr(h.Title), "", 1, "C", false, 0, "")
	d.SetFont("Arial", "", 11)
	if h.Owner != "" {
		d.CellFormat(0, 6, d.tr(h.Owner), "", 1, "C", false, 0, "")
	}
	d.SetFont("Arial", "", 9)
	if h.Period != "" {
		d.CellFormat(0, 5, "Period: "+h.Period, "", 1, "C", false, 0, "")
	}
	d.CellFormat(0, 5, "Generated on "+h.Generated.Format(dateLayout), "", 1, "C", false, 0, "")
	d.Ln(6)
}

func (d *pdfDoc) section(title string) {
	d.SetFont("Arial", "B", 12)
	d.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
}

func (d *pdfDoc) tableHead(cols []column) {
	d.SetFont("Arial", "B", 9)
	d.SetFillColor(204, 204, 204)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		d.CellFormat(c.width, 7, c.title, "1", ln, "C", true, 0, "")
	}
	d.SetFont("Arial", "", 9)
}

func (d *pdfDoc) tableRow(cols []column, values ...string) {
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		d.CellFormat(c.width, 6, d.tr(values[i]), "1", ln, c.align, false, 0, "")
	}
}

// summary prints right-aligned label/value lines
func (d *pdfDoc) summary(lines ...[2]string) {
	d.Ln(4)
	d.SetFont("Arial", "", 10)
	for _, l := range lines {
		d.CellFormat(145, 6, l[0], "", 0, "R", false, 0, "")
		d.CellFormat(35, 6, l[1], "", 1, "R", false, 0, "")
	}
}

func (d *pdfDoc) output(w io.Writer) error {
	if err := d.Error(); err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	if err := d.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

var shiftColumns = []column{
	{"Date", 25, "L"},
	{"Time", 25, "C"},
	{"Client", 45, "L"},
	{"Hours", 17, "R"},
	{"Rate", 20, "R"},
	{"Earnings", 25, "R"},
	{"Tax", 23, "R"},
}

func (d *pdfDoc) shiftTable(rows []ShiftRow) {
	d.tableHead(shiftColumns)
	for _, r := range rows {
		d.tableRow(shiftColumns,
			r.Date, r.Start+"-"+r.End, r.Client,
			r.Hours.StringFixed(2), currency(r.Rate), currency(r.Earnings), currency(r.Tax))
	}
}

var mileageColumns = []column{
	{"Date", 25, "L"},
	{"Client", 40, "L"},
	{"From", 30, "L"},
	{"To", 30, "L"},
	{"Km", 17, "R"},
	{"Rate", 18, "R"},
	{"Amount", 20, "R"},
}

func (d *pdfDoc) mileageTable(rows []MileageRow) {
	d.tableHead(mileageColumns)
	for _, r := range rows {
		d.tableRow(mileageColumns,
			r.Date, r.Client, r.From, r.To,
			r.Distance.StringFixed(2), currency(r.Rate), currency(r.Amount))
	}
}

func (pdfRenderer) Shifts(w io.Writer, r ShiftsReport) error {
	d := newPDF()
	d.header(r.Header)
	d.shiftTable(r.Rows)
	d.summary(
		[2]string{"Total Hours:", r.Totals.Hours.StringFixed(2)},
		[2]string{"Total Earnings:", currency(r.Totals.Earnings)},
		[2]string{"Total Tax:", currency(r.Totals.Tax)},
		[2]string{"Grand Total:", currency(r.Totals.Grand())},
	)
	return d.output(w)
}

func (pdfRenderer) Mileages(w io.Writer, r MileagesReport) error {
	d := newPDF()
	d.header(r.Header)
	d.mileageTable(r.Rows)
	d.summary(
		[2]string{"Total Distance:", r.Totals.Distance.StringFixed(2) + " km"},
		[2]string{"Total Amount:", currency(r.Totals.MileageAmount)},
	)
	return d.output(w)
}

func (pdfRenderer) Invoice(w io.Writer, r InvoiceReport) error {
	d := newPDF()

	d.SetFont("Arial", "B", 22)
	d.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")
	d.SetFont("Arial", "", 11)
	d.CellFormat(0, 6, r.Number, "", 1, "R", false, 0, "")
	d.CellFormat(0, 6, "Status: "+r.Status, "", 1, "R", false, 0, "")
	d.Ln(4)

	d.section("From:")
	d.SetFont("Arial", "", 10)
	d.CellFormat(0, 5, d.tr(r.Header.Owner), "", 1, "L", false, 0, "")
	if r.Header.Email != "" {
		d.CellFormat(0, 5, "Email: "+r.Header.Email, "", 1, "L", false, 0, "")
	}
	d.Ln(3)

	d.section("To:")
	d.SetFont("Arial", "", 10)
	d.CellFormat(0, 5, d.tr(clientName(r.Client)), "", 1, "L", false, 0, "")
	if c := r.Client; c != nil {
		if c.ContactName != "" {
			d.CellFormat(0, 5, d.tr("Attention: "+c.ContactName), "", 1, "L", false, 0, "")
		}
		if c.Address != "" {
			d.MultiCell(0, 5, d.tr(c.Address), "", "L", false)
		}
		if c.ContactEmail != "" {
			d.CellFormat(0, 5, "Email: "+c.ContactEmail, "", 1, "L", false, 0, "")
		}
	}
	d.Ln(3)

	d.section("Invoice Details:")
	d.SetFont("Arial", "", 10)
	d.CellFormat(0, 5, "Issue Date: "+r.IssueDate, "", 1, "L", false, 0, "")
	d.CellFormat(0, 5, "Due Date: "+r.DueDate, "", 1, "L", false, 0, "")
	if r.Notes != "" {
		d.Ln(2)
		d.MultiCell(0, 5, d.tr("Notes: "+r.Notes), "", "L", false)
	}
	d.Ln(4)

	if len(r.Shifts) > 0 {
		d.section("Shifts:")
		d.shiftTable(r.Shifts)
		d.Ln(4)
	}
	if len(r.Mileages) > 0 {
		d.section("Mileage:")
		d.mileageTable(r.Mileages)
		d.Ln(4)
	}

	d.section("Summary:")
	d.summary(
		[2]string{"Hours Total:", r.Totals.Hours.StringFixed(2) + " hours"},
		[2]string{"Earnings Total:", currency(r.Totals.Earnings)},
		[2]string{"Mileage Total:", currency(r.Totals.MileageAmount)},
		[2]string{"Tax Total:", currency(r.Totals.Tax)},
	)
	d.SetFont("Arial", "B", 12)
	d.CellFormat(145, 8, "GRAND TOTAL:", "", 0, "R", false, 0, "")
	d.CellFormat(35, 8, currency(r.Totals.Grand()), "", 1, "R", false, 0, "")

	d.Ln(6)
	d.SetFont("Arial", "", 9)
	if r.PaymentNotes != "" {
		d.MultiCell(0, 5, d.tr("Payment notes: "+r.PaymentNotes), "", "L", false)
	}
	d.CellFormat(0, 5, "Please make payment by the due date. Thank you for your business!", "", 1, "L", false, 0, "")

	return d.output(w)
}

var clientColumns = []column{
	{"Client", 60, "L"},
	{"Hours", 25, "R"},
	{"Earnings", 32, "R"},
	{"Mileage", 30, "R"},
	{"Total", 33, "R"},
}

func (pdfRenderer) Earnings(w io.Writer, r EarningsReport) error {
	d := newPDF()
	d.header(r.Header)

	d.section("Overall Summary:")
	d.SetFont("Arial", "", 10)
	for _, l := range [][2]string{
		{"Total Hours:", r.Totals.Hours.StringFixed(2) + " hours"},
		{"Total Earnings:", currency(r.Totals.Earnings)},
		{"Total Tax:", currency(r.Totals.Tax)},
		{"Total Mileage:", r.Totals.Distance.StringFixed(2) + " km"},
		{"Total Mileage Amount:", currency(r.Totals.MileageAmount)},
		{"Grand Total:", currency(r.Totals.Grand())},
	} {
		d.CellFormat(50, 6, l[0], "", 0, "L", false, 0, "")
		d.CellFormat(40, 6, l[1], "", 1, "L", false, 0, "")
	}
	d.Ln(6)

	d.section("Client Summary:")
	d.tableHead(clientColumns)
	for _, c := range r.Clients {
		d.tableRow(clientColumns,
			c.Client, c.Hours.StringFixed(2), currency(c.Earnings), currency(c.MileageAmount), currency(c.Total()))
	}

	return d.output(w)
}
