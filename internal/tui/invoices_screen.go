package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mayesamomo/wageflow/internal/app"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/export"
	"github.com/Mayesamomo/wageflow/internal/repository"
	"github.com/Mayesamomo/wageflow/internal/service"
)

type invoiceViewMode int

const (
	invoiceViewList          invoiceViewMode = iota
	invoiceViewDetail                        // Viewing a single invoice
	invoiceViewGenPickClient                 // Step 1: pick client
	invoiceViewGenPreview                    // Step 2: preview unclaimed records
)

// InvoicesModel displays invoices in list and detail views
type InvoicesModel struct {
	app       *app.App
	ownerID   string
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	cursor    int
	selected  *domain.Invoice
	loading   bool
	err       error
	statusMsg string

	// Invoice generation state
	genClients  []*domain.Client
	genCursor   int
	genClient   *domain.Client
	genShifts   []*domain.Shift
	genMileages []*domain.Mileage
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

type invoiceDetailMsg struct {
	invoice *domain.Invoice
	err     error
}

// genClientsMsg carries clients that have unclaimed records
type genClientsMsg struct {
	clients []*domain.Client
	err     error
}

// genRecordsMsg carries the unclaimed records of the selected client
type genRecordsMsg struct {
	shifts   []*domain.Shift
	mileages []*domain.Mileage
	err      error
}

// invoiceActionMsg reports the outcome of create, mark paid, delete or export
type invoiceActionMsg struct {
	status string
	err    error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App, ownerID string) tea.Model {
	return &InvoicesModel{
		app:     a,
		ownerID: ownerID,
		mode:    invoiceViewList,
		loading: true,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		invoices, err := a.InvoiceService.ListInvoices(context.Background(), ownerID,
			repository.InvoiceFilter{Descending: true})
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) loadDetail(id string) tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		invoice, err := a.InvoiceService.GetInvoice(context.Background(), ownerID, id)
		return invoiceDetailMsg{invoice: invoice, err: err}
	}
}

func unclaimedFilter(clientID *string) repository.RecordFilter {
	invoiced := false
	return repository.RecordFilter{ClientID: clientID, Invoiced: &invoiced}
}

// loadGenClients loads clients that have shifts or mileage not yet invoiced
func (m *InvoicesModel) loadGenClients() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		ctx := context.Background()

		clients, err := a.ClientService.List(ctx, ownerID)
		if err != nil {
			return genClientsMsg{err: err}
		}
		shifts, err := a.ShiftService.List(ctx, ownerID, unclaimedFilter(nil))
		if err != nil {
			return genClientsMsg{err: err}
		}
		mileages, err := a.MileageService.List(ctx, ownerID, unclaimedFilter(nil))
		if err != nil {
			return genClientsMsg{err: err}
		}

		pending := make(map[string]bool)
		for _, s := range shifts {
			pending[s.ClientID] = true
		}
		for _, mi := range mileages {
			pending[mi.ClientID] = true
		}

		var withUnbilled []*domain.Client
		for _, c := range clients {
			if pending[c.ID] {
				withUnbilled = append(withUnbilled, c)
			}
		}
		return genClientsMsg{clients: withUnbilled}
	}
}

func (m *InvoicesModel) loadGenRecords() tea.Cmd {
	a, ownerID, clientID := m.app, m.ownerID, m.genClient.ID
	return func() tea.Msg {
		ctx := context.Background()
		shifts, err := a.ShiftService.List(ctx, ownerID, unclaimedFilter(&clientID))
		if err != nil {
			return genRecordsMsg{err: err}
		}
		mileages, err := a.MileageService.List(ctx, ownerID, unclaimedFilter(&clientID))
		if err != nil {
			return genRecordsMsg{err: err}
		}
		return genRecordsMsg{shifts: shifts, mileages: mileages}
	}
}

// createInvoice claims the previewed records on a new draft
func (m *InvoicesModel) createInvoice() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	in := service.CreateInvoiceInput{ClientID: m.genClient.ID}
	for _, s := range m.genShifts {
		in.ShiftIDs = append(in.ShiftIDs, s.ID)
	}
	for _, mi := range m.genMileages {
		in.MileageIDs = append(in.MileageIDs, mi.ID)
	}

	return func() tea.Msg {
		inv, err := a.InvoiceService.CreateInvoice(context.Background(), ownerID, in)
		if err != nil {
			return invoiceActionMsg{err: fmt.Errorf("create invoice: %w", err)}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Invoice %s created (%s)", inv.Number, formatMoney(inv.GrandTotal))}
	}
}

func (m *InvoicesModel) markPaid(inv *domain.Invoice) tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		if _, err := a.InvoiceService.MarkAsPaid(context.Background(), ownerID, inv.ID, nil); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Invoice %s marked paid", inv.Number)}
	}
}

func (m *InvoicesModel) deleteInvoice(inv *domain.Invoice) tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		if err := a.InvoiceService.DeleteInvoice(context.Background(), ownerID, inv.ID); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Invoice %s deleted, records released", inv.Number)}
	}
}

func (m *InvoicesModel) exportPDF(inv *domain.Invoice) tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		res, err := a.ExportService.Export(context.Background(), ownerID, service.ExportRequest{
			Format:    export.FormatPDF,
			DataType:  export.DataInvoice,
			InvoiceID: inv.ID,
		})
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		location, err := a.Files.Abs(res.Path)
		if err != nil {
			location = res.Path
		}
		return invoiceActionMsg{status: fmt.Sprintf("Exported %s -> %s", inv.Number, location)}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = max(0, len(m.invoices)-1)
		}
		return m, nil

	case invoiceDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selected = msg.invoice
		m.mode = invoiceViewDetail
		return m, nil

	case genClientsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.mode = invoiceViewList
			return m, nil
		}
		if len(msg.clients) == 0 {
			m.err = fmt.Errorf("no clients with uninvoiced shifts or mileage")
			m.mode = invoiceViewList
			return m, nil
		}
		m.genClients = msg.clients
		m.genCursor = 0
		m.mode = invoiceViewGenPickClient
		return m, nil

	case genRecordsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.mode = invoiceViewList
			return m, nil
		}
		m.genShifts = msg.shifts
		m.genMileages = msg.mileages
		m.mode = invoiceViewGenPreview
		return m, nil

	case invoiceActionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = msg.status
		m.mode = invoiceViewList
		m.selected = nil
		m.genClients = nil
		m.genClient = nil
		m.genShifts = nil
		m.genMileages = nil
		m.loading = true
		return m, m.loadInvoices()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		case invoiceViewGenPickClient:
			return m.updateGenPickClient(msg)
		case invoiceViewGenPreview:
			return m.updateGenPreview(msg)
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	var current *domain.Invoice
	if m.cursor < len(m.invoices) {
		current = m.invoices[m.cursor]
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if current != nil {
			m.loading = true
			return m, m.loadDetail(current.ID)
		}
	case key.Matches(msg, DefaultKeyMap.New):
		m.loading = true
		m.statusMsg = ""
		return m, m.loadGenClients()
	default:
		if current != nil {
			return m, m.invoiceAction(msg, current)
		}
	}

	return m, nil
}

// invoiceAction handles the keys shared by the list and detail views
func (m *InvoicesModel) invoiceAction(msg tea.KeyMsg, inv *domain.Invoice) tea.Cmd {
	switch {
	case key.Matches(msg, DefaultKeyMap.MarkPaid):
		m.loading = true
		return m.markPaid(inv)
	case key.Matches(msg, DefaultKeyMap.Delete):
		if !inv.Status.Deletable() {
			m.err = fmt.Errorf("%s invoices cannot be deleted", inv.Status)
			return nil
		}
		m.loading = true
		return m.deleteInvoice(inv)
	case key.Matches(msg, DefaultKeyMap.Export):
		m.loading = true
		return m.exportPDF(inv)
	}
	return nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	if key.Matches(msg, DefaultKeyMap.Back) {
		m.mode = invoiceViewList
		m.selected = nil
		return m, nil
	}
	if m.selected != nil {
		return m, m.invoiceAction(msg, m.selected)
	}
	return m, nil
}

func (m *InvoicesModel) updateGenPickClient(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.genClients = nil
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.genCursor > 0 {
			m.genCursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.genCursor < len(m.genClients)-1 {
			m.genCursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if len(m.genClients) > 0 {
			m.genClient = m.genClients[m.genCursor]
			m.loading = true
			return m, m.loadGenRecords()
		}
	}
	return m, nil
}

func (m *InvoicesModel) updateGenPreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewGenPickClient
		m.genShifts = nil
		m.genMileages = nil
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Select):
		m.loading = true
		return m, m.createInvoice()
	}
	return m, nil
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading..."
	}

	switch m.mode {
	case invoiceViewDetail:
		return m.viewDetail()
	case invoiceViewGenPickClient:
		return m.viewGenPickClient()
	case invoiceViewGenPreview:
		return m.viewGenPreview()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	var s string
	s += titleStyle.Render("Invoices") + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices yet. Press 'n' to create one.")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-14s  %-20s  %-12s  %-12s  %10s  %s",
		"Number", "Client", "Issued", "Due", "Total", "Status",
	)) + "\n"

	now := time.Now()
	for i, inv := range m.invoices {
		clientName := "Unknown"
		if inv.Client != nil {
			clientName = inv.Client.Name
		}

		status := statusBadge(inv.Status)
		if inv.IsOverdue(now) && inv.Status != domain.InvoiceStatusOverdue {
			status += lipgloss.NewStyle().Foreground(errorColor).Render(" (past due)")
		}

		invLine := fmt.Sprintf("  %-14s  %-20s  %-12s  %-12s  %10s  %s",
			inv.Number,
			truncateStr(clientName, 20),
			inv.IssueDate.Format("Jan 02, 2006"),
			inv.DueDate.Format("Jan 02, 2006"),
			formatMoney(inv.GrandTotal),
			status,
		)

		if i == m.cursor {
			s += selectedStyle.Render(invLine) + "\n"
		} else {
			s += invLine + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: detail  n: new  p: mark paid  e: export pdf  x: delete")

	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return "No invoice selected"
	}

	var s string

	clientName := "Unknown"
	if inv.Client != nil {
		clientName = inv.Client.Name
	}

	s += titleStyle.Render(fmt.Sprintf("Invoice %s", inv.Number)) + "\n\n"
	s += fmt.Sprintf("  Client:   %s\n", clientName)
	s += fmt.Sprintf("  Issued:   %s\n", inv.IssueDate.Format("Jan 02, 2006"))
	s += fmt.Sprintf("  Due:      %s\n", inv.DueDate.Format("Jan 02, 2006"))
	s += fmt.Sprintf("  Status:   %s\n", statusBadge(inv.Status))
	if inv.PaymentProof != "" {
		s += "  Proof:    attached\n"
	}
	s += "\n"

	if len(inv.Shifts) > 0 {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-12s  %-13s  %8s  %10s  %9s", "Date", "Time", "Hours", "Earnings", "Tax",
		)) + "\n"
		for _, sh := range inv.Shifts {
			s += fmt.Sprintf("  %-12s  %-13s  %8s  %10s  %9s\n",
				sh.StartTime.Format("Jan 02"),
				sh.StartTime.Format("15:04")+"-"+sh.EndTime.Format("15:04"),
				formatHours(sh.TotalHours),
				formatMoney(sh.Earnings),
				formatMoney(sh.TaxAmount),
			)
		}
		s += "\n"
	}

	if len(inv.Mileages) > 0 {
		s += subtitleStyle.Render(fmt.Sprintf("  %-12s  %-24s  %8s  %10s", "Date", "Route", "Km", "Amount")) + "\n"
		for _, mi := range inv.Mileages {
			s += fmt.Sprintf("  %-12s  %-24s  %8.1f  %10s\n",
				mi.Date.Format("Jan 02"),
				truncateStr(mi.FromLocation+" → "+mi.ToLocation, 24),
				mi.Distance,
				formatMoney(mi.Amount),
			)
		}
		s += "\n"
	}

	s += fmt.Sprintf("  Earnings:  %10s\n", formatMoney(inv.EarningsTotal))
	s += fmt.Sprintf("  Mileage:   %10s\n", formatMoney(inv.MileageTotal))
	s += fmt.Sprintf("  Tax:       %10s\n", formatMoney(inv.TaxTotal))
	s += lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  Total:     %10s", formatMoney(inv.GrandTotal)),
	) + "\n"

	if m.err != nil {
		s += "\n" + lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  p: mark paid  e: export pdf  x: delete  esc: back to list")

	return s
}

func (m *InvoicesModel) viewGenPickClient() string {
	var s string
	s += titleStyle.Render("New Invoice - Select Client") + "\n\n"
	s += subtitleStyle.Render("  Clients with uninvoiced shifts or mileage:") + "\n\n"

	for i, client := range m.genClients {
		indicator := "  "
		if i == m.genCursor {
			indicator = "> "
		}

		clientLine := indicator + client.Name
		if i == m.genCursor {
			s += lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(clientLine) + "\n"
		} else {
			s += clientLine + "\n"
		}
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: select  esc: cancel")

	return s
}

func (m *InvoicesModel) viewGenPreview() string {
	var s string

	s += titleStyle.Render(fmt.Sprintf("New Invoice - %s", m.genClient.Name)) + "\n\n"

	totals := domain.SumClaims(m.genShifts, m.genMileages)
	s += fmt.Sprintf("  %d shifts  |  %d mileage records  |  %s\n\n",
		len(m.genShifts), len(m.genMileages), formatHours(totals.Hours))

	if len(m.genShifts) > 0 {
		s += subtitleStyle.Render(fmt.Sprintf("  %-10s  %-13s  %8s  %10s", "Date", "Time", "Hours", "Earnings")) + "\n"
		for _, sh := range m.genShifts {
			s += fmt.Sprintf("  %-10s  %-13s  %8s  %10s\n",
				sh.StartTime.Format("Jan 02"),
				sh.StartTime.Format("15:04")+"-"+sh.EndTime.Format("15:04"),
				formatHours(sh.TotalHours),
				formatMoney(sh.Earnings),
			)
		}
		s += "\n"
	}
	if len(m.genMileages) > 0 {
		s += subtitleStyle.Render(fmt.Sprintf("  %-10s  %8s  %10s", "Date", "Km", "Amount")) + "\n"
		for _, mi := range m.genMileages {
			s += fmt.Sprintf("  %-10s  %8.1f  %10s\n", mi.Date.Format("Jan 02"), mi.Distance, formatMoney(mi.Amount))
		}
		s += "\n"
	}

	s += fmt.Sprintf("  %34s  %10s\n", "Earnings:", formatMoney(totals.Earnings))
	s += fmt.Sprintf("  %34s  %10s\n", "Mileage:", formatMoney(totals.Mileage))
	s += fmt.Sprintf("  %34s  %10s\n", "Tax:", formatMoney(totals.Tax))
	s += lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  %34s  %10s", "Total:", formatMoney(totals.GrandTotal())),
	) + "\n"

	s += "\n" + lipgloss.NewStyle().Foreground(warningColor).Render(
		"  Press enter to create a draft invoice claiming these records") + "\n"
	s += helpStyle.Render("  esc: back to client selection")

	return s
}

// statusBadge renders an invoice status with color
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusDraft:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("DRAFT")
	case domain.InvoiceStatusSent:
		return lipgloss.NewStyle().Foreground(warningColor).Render("SENT")
	case domain.InvoiceStatusPaid:
		return lipgloss.NewStyle().Foreground(successColor).Render("PAID")
	case domain.InvoiceStatusOverdue:
		return lipgloss.NewStyle().Foreground(errorColor).Render("OVERDUE")
	case domain.InvoiceStatusCancelled:
		return lipgloss.NewStyle().Foreground(mutedColor).Render("CANCELLED")
	default:
		return string(status)
	}
}
