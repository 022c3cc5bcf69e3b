package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type excelRenderer struct{}

const moneyFormat = `"$"#,##0.00`

// sheet appends rows to one worksheet and keeps the first error
type sheet struct {
	f      *excelize.File
	name   string
	row    int
	err    error
	styles struct {
		title, bold, head, money, number int
	}
}

func newSheet(name string) *sheet {
	f := excelize.NewFile()
	s := &sheet{f: f, name: name, row: 1}
	s.err = f.SetSheetName("Sheet1", name)

	moneyFmt := moneyFormat
	numberFmt := "0.00"
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	s.styles.title = s.style(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.styles.bold = s.style(&excelize.Style{Font: &excelize.Font{Bold: true}})
	s.styles.head = s.style(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"CCCCCC"}},
		Border: border,
	})
	s.styles.money = s.style(&excelize.Style{CustomNumFmt: &moneyFmt})
	s.styles.number = s.style(&excelize.Style{CustomNumFmt: &numberFmt})
	return s
}

func (s *sheet) style(st *excelize.Style) int {
	if s.err != nil {
		return 0
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		s.err = err
	}
	return id
}

func (s *sheet) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && s.err == nil {
		s.err = err
	}
	return name
}

// add writes values into the next row and returns its number
func (s *sheet) add(values ...any) int {
	row := s.row
	s.row++
	if s.err != nil || len(values) == 0 {
		return row
	}
	s.err = s.f.SetSheetRow(s.name, s.cell(1, row), &values)
	return row
}

func (s *sheet) blank() {
	s.row++
}

func (s *sheet) styleRange(style, fromCol, toCol, fromRow, toRow int) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellStyle(s.name, s.cell(fromCol, fromRow), s.cell(toCol, toRow), style)
}

func (s *sheet) formula(col, row int, formula string) {
	if s.err != nil {
		return
	}
	s.err = s.f.SetCellFormula(s.name, s.cell(col, row), formula)
}

// title writes the header block merged across width columns
func (s *sheet) title(h Header, width int) {
	lines := []string{h.Title, h.Owner}
	if h.Period != "" {
		lines = append(lines, "Period: "+h.Period)
	}
	lines = append(lines, "Generated on "+h.Generated.Format(dateLayout))

	for i, line := range lines {
		row := s.add(line)
		if s.err == nil {
			s.err = s.f.MergeCell(s.name, s.cell(1, row), s.cell(width, row))
		}
		if i == 0 {
			s.styleRange(s.styles.title, 1, width, row, row)
		}
	}
	s.blank()
}

// table writes a header row and returns the row the data starts on
func (s *sheet) table(headings ...any) int {
	row := s.add(headings...)
	s.styleRange(s.styles.head, 1, len(headings), row, row)
	return row + 1
}

func (s *sheet) sumRow(label string, labelCol, first, last int, cols ...int) int {
	row := s.add()
	if s.err == nil {
		s.err = s.f.SetCellValue(s.name, s.cell(labelCol, row), label)
	}
	s.styleRange(s.styles.bold, labelCol, labelCol, row, row)
	for _, col := range cols {
		colName, _ := excelize.ColumnNumberToName(col)
		if last < first {
			s.formula(col, row, "0")
		} else {
			s.formula(col, row, fmt.Sprintf("SUM(%s%d:%s%d)", colName, first, colName, last))
		}
	}
	return row
}

func (s *sheet) write(w io.Writer) error {
	defer s.f.Close()
	if s.err != nil {
		return fmt.Errorf("failed to build workbook: %w", s.err)
	}
	if err := s.f.SetColWidth(s.name, "A", "H", 16); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := s.f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *sheet) shiftRows(rows []ShiftRow) (int, int) {
	first := s.table("Date", "Start Time", "End Time", "Client", "Hours", "Rate", "Earnings", "Tax")
	for _, r := range rows {
		s.add(r.Date, r.Start, r.End, r.Client, r.Hours.InexactFloat64(), r.Rate.InexactFloat64(), r.Earnings.InexactFloat64(), r.Tax.InexactFloat64())
	}
	last := first + len(rows) - 1
	if len(rows) > 0 {
		s.styleRange(s.styles.number, 5, 5, first, last)
		s.styleRange(s.styles.money, 6, 8, first, last)
	}
	return first, last
}

func (s *sheet) mileageRows(rows []MileageRow) (int, int) {
	first := s.table("Date", "Client", "From", "To", "Distance (km)", "Rate", "Amount")
	for _, r := range rows {
		s.add(r.Date, r.Client, r.From, r.To, r.Distance.InexactFloat64(), r.Rate.InexactFloat64(), r.Amount.InexactFloat64())
	}
	last := first + len(rows) - 1
	if len(rows) > 0 {
		s.styleRange(s.styles.number, 5, 5, first, last)
		s.styleRange(s.styles.money, 6, 7, first, last)
	}
	return first, last
}

func (excelRenderer) Shifts(w io.Writer, r ShiftsReport) error {
	s := newSheet("Shifts")
	s.title(r.Header, 8)
	first, last := s.shiftRows(r.Rows)

	total := s.sumRow("TOTAL:", 4, first, last, 5, 7, 8)
	s.styleRange(s.styles.money, 7, 8, total, total)
	s.blank()
	grand := s.add()
	if s.err == nil {
		s.err = s.f.SetCellValue(s.name, s.cell(7, grand), "GRAND TOTAL:")
	}
	s.formula(8, grand, fmt.Sprintf("G%d+H%d", total, total))
	s.styleRange(s.styles.money, 8, 8, grand, grand)

	return s.write(w)
}

func (excelRenderer) Mileages(w io.Writer, r MileagesReport) error {
	s := newSheet("Mileages")
	s.title(r.Header, 7)
	first, last := s.mileageRows(r.Rows)

	total := s.sumRow("TOTAL:", 4, first, last, 5, 7)
	s.styleRange(s.styles.money, 7, 7, total, total)

	return s.write(w)
}

func (excelRenderer) Invoice(w io.Writer, r InvoiceReport) error {
	s := newSheet("Invoice")
	s.title(Header{Title: "INVOICE " + r.Number, Owner: r.Header.Owner, Generated: r.Header.Generated}, 8)

	s.add("From:", r.Header.Owner)
	if r.Header.Email != "" {
		s.add("Email:", r.Header.Email)
	}
	s.blank()
	s.add("To:", clientName(r.Client))
	if c := r.Client; c != nil {
		if c.ContactName != "" {
			s.add("Attention:", c.ContactName)
		}
		if c.Address != "" {
			s.add("Address:", c.Address)
		}
		if c.ContactEmail != "" {
			s.add("Email:", c.ContactEmail)
		}
	}
	s.blank()
	s.add("Invoice Details:")
	s.add("Status:", r.Status)
	s.add("Issue Date:", r.IssueDate)
	s.add("Due Date:", r.DueDate)
	if r.Notes != "" {
		s.add("Notes:", r.Notes)
	}

	if len(r.Shifts) > 0 {
		s.blank()
		s.add("Shifts:")
		first, last := s.shiftRows(r.Shifts)
		total := s.sumRow("Total:", 4, first, last, 5, 7, 8)
		s.styleRange(s.styles.money, 7, 8, total, total)
	}
	if len(r.Mileages) > 0 {
		s.blank()
		s.add("Mileage:")
		first, last := s.mileageRows(r.Mileages)
		total := s.sumRow("Total:", 4, first, last, 5, 7)
		s.styleRange(s.styles.money, 7, 7, total, total)
	}

	s.blank()
	s.add("Summary:")
	s.add("Hours Total:", r.Totals.Hours.StringFixed(2)+" hours")
	s.add("Earnings Total:", currency(r.Totals.Earnings))
	s.add("Mileage Total:", currency(r.Totals.MileageAmount))
	s.add("Tax Total:", currency(r.Totals.Tax))
	grand := s.add("GRAND TOTAL:", currency(r.Totals.Grand()))
	s.styleRange(s.styles.bold, 1, 2, grand, grand)

	if r.PaymentNotes != "" {
		s.blank()
		s.add("Payment Notes:", r.PaymentNotes)
	}
	s.blank()
	s.add("Please make payment by the due date. Thank you for your business!")

	return s.write(w)
}

func (excelRenderer) Earnings(w io.Writer, r EarningsReport) error {
	s := newSheet("Earnings Summary")
	s.title(r.Header, 6)

	s.add("Overall Summary:")
	s.add("Total Hours:", r.Totals.Hours.StringFixed(2)+" hours")
	s.add("Total Earnings:", currency(r.Totals.Earnings))
	s.add("Total Tax:", currency(r.Totals.Tax))
	s.add("Total Mileage:", r.Totals.Distance.StringFixed(2)+" km")
	s.add("Total Mileage Amount:", currency(r.Totals.MileageAmount))
	s.add("Grand Total:", currency(r.Totals.Grand()))
	s.blank()

	s.add("Client Summary:")
	first := s.table("Client", "Hours", "Earnings", "Tax", "Mileage", "Total")
	for _, c := range r.Clients {
		s.add(c.Client, c.Hours.InexactFloat64(), c.Earnings.InexactFloat64(), c.Tax.InexactFloat64(), c.MileageAmount.InexactFloat64(), c.Total().InexactFloat64())
	}
	last := first + len(r.Clients) - 1
	if len(r.Clients) > 0 {
		s.styleRange(s.styles.number, 2, 2, first, last)
		s.styleRange(s.styles.money, 3, 6, first, last)
	}
	total := s.sumRow("TOTAL:", 1, first, last, 2, 3, 4, 5, 6)
	s.styleRange(s.styles.money, 3, 6, total, total)

	return s.write(w)
}
