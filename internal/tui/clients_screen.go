package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mayesamomo/wageflow/internal/app"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/repository"
	"github.com/Mayesamomo/wageflow/internal/service"
)

type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
)

// form field indices
const (
	fieldName = iota
	fieldContact
	fieldEmail
	fieldPhone
	fieldAddress
	fieldNotes
	fieldCount
)

var clientFieldLabels = []string{"Name:", "Contact:", "Email:", "Phone:", "Address:", "Notes:"}

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app       *app.App
	ownerID   string
	clients   []*domain.Client
	cursor    int
	unbilled  map[string]*clientUnbilled
	loading   bool
	err       error
	statusMsg string

	mode          clientMode
	fields        []textinput.Model
	fieldFocus    int
	editingID     string // empty for a new client
	autoNewClient bool   // open new client form after data loads
}

// clientUnbilled sums a client's records not yet on an invoice
type clientUnbilled struct {
	hours  float64
	amount float64
}

type clientsDataMsg struct {
	clients  []*domain.Client
	unbilled map[string]*clientUnbilled
	err      error
}

type clientSavedMsg struct {
	name string
	err  error
}

type clientDeletedMsg struct {
	err error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App, ownerID string) tea.Model {
	return &ClientsModel{
		app:      a,
		ownerID:  ownerID,
		unbilled: make(map[string]*clientUnbilled),
		loading:  true,
	}
}

// IsCapturingInput returns true when the form is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode == clientModeNew || m.mode == clientModeEdit
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		ctx := context.Background()

		clients, err := a.ClientService.List(ctx, ownerID)
		if err != nil {
			return clientsDataMsg{err: err}
		}

		invoiced := false
		filter := repository.RecordFilter{Invoiced: &invoiced}
		shifts, err := a.ShiftService.List(ctx, ownerID, filter)
		if err != nil {
			return clientsDataMsg{err: err}
		}
		mileages, err := a.MileageService.List(ctx, ownerID, filter)
		if err != nil {
			return clientsDataMsg{err: err}
		}

		unbilled := make(map[string]*clientUnbilled)
		get := func(id string) *clientUnbilled {
			u, ok := unbilled[id]
			if !ok {
				u = &clientUnbilled{}
				unbilled[id] = u
			}
			return u
		}
		for _, s := range shifts {
			u := get(s.ClientID)
			u.hours += s.TotalHours
			u.amount += s.Earnings + s.TaxAmount
		}
		for _, mi := range mileages {
			get(mi.ClientID).amount += mi.Amount
		}

		return clientsDataMsg{clients: clients, unbilled: unbilled}
	}
}

func (m *ClientsModel) initForm(editing *domain.Client) {
	m.fields = make([]textinput.Model, fieldCount)

	placeholders := []string{"Client name", "Contact person", "email@example.com", "Phone", "Street address", "Optional notes"}
	for i := range m.fields {
		m.fields[i] = textinput.New()
		m.fields[i].Placeholder = placeholders[i]
		m.fields[i].CharLimit = 200
		m.fields[i].Width = 50
	}

	if editing != nil {
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldContact].SetValue(editing.ContactName)
		m.fields[fieldEmail].SetValue(editing.ContactEmail)
		m.fields[fieldPhone].SetValue(editing.ContactPhone)
		m.fields[fieldAddress].SetValue(editing.Address)
		m.fields[fieldNotes].SetValue(editing.Notes)
		m.editingID = editing.ID
	} else {
		m.editingID = ""
	}

	m.fieldFocus = fieldName
	m.fields[fieldName].Focus()
}

func (m *ClientsModel) saveClient() tea.Cmd {
	a, ownerID, editingID := m.app, m.ownerID, m.editingID
	values := make([]string, fieldCount)
	for i, f := range m.fields {
		v := strings.TrimSpace(f.Value())
		values[i] = v
	}

	return func() tea.Msg {
		ctx := context.Background()

		in := service.ClientInput{
			Name:         &values[fieldName],
			ContactName:  &values[fieldContact],
			ContactEmail: &values[fieldEmail],
			ContactPhone: &values[fieldPhone],
			Address:      &values[fieldAddress],
			Notes:        &values[fieldNotes],
		}

		var (
			client *domain.Client
			err    error
		)
		if editingID != "" {
			client, err = a.ClientService.Update(ctx, ownerID, editingID, in)
		} else {
			client, err = a.ClientService.Create(ctx, ownerID, in)
		}
		if err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{name: client.Name}
	}
}

func (m *ClientsModel) deleteClient(client *domain.Client) tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		return clientDeletedMsg{err: a.ClientService.Delete(context.Background(), ownerID, client.ID)}
	}
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			m.autoNewClient = true
			return m, nil
		}
		m.mode = clientModeNew
		m.initForm(nil)
		return m, m.fields[fieldName].Focus()
	}

	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.clients = msg.clients
			m.unbilled = msg.unbilled
			if m.cursor >= len(m.clients) {
				m.cursor = max(0, len(m.clients)-1)
			}
		}
		if m.autoNewClient {
			m.autoNewClient = false
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		}
		return m, nil

	case clientDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Client deleted"
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.clients)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			m.mode = clientModeNew
			m.initForm(nil)
			return m, m.fields[fieldName].Focus()
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor < len(m.clients) {
				m.mode = clientModeEdit
				m.initForm(m.clients[m.cursor])
				return m, m.fields[fieldName].Focus()
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.cursor < len(m.clients) {
				return m, m.deleteClient(m.clients[m.cursor])
			}
		}
	}

	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = clientModeList
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + fieldCount) % fieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveClient()
		}
	}

	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ClientsModel) View() string {
	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s string

	if m.mode == clientModeNew {
		if len(m.clients) == 0 {
			s += titleStyle.Render("Welcome to wageflow!") + "\n"
			s += subtitleStyle.Render("  Add the first client you visit to get started.") + "\n\n"
		} else {
			s += titleStyle.Render("New Client") + "\n\n"
		}
	} else {
		s += titleStyle.Render("Edit Client") + "\n\n"
	}

	for i, label := range clientFieldLabels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string
	s += titleStyle.Render("Clients") + "\n\n"

	if m.statusMsg != "" {
		s += lipgloss.NewStyle().Foreground(successColor).
			Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.clients) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, client := range m.clients {
		s += m.renderClient(i, client) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  x: delete")

	return s
}

func (m *ClientsModel) renderClient(index int, client *domain.Client) string {
	selected := index == m.cursor

	var hours, amount float64
	if u := m.unbilled[client.ID]; u != nil {
		hours, amount = u.hours, u.amount
	}

	indicator := "  "
	if selected {
		indicator = "> "
	}

	line1 := fmt.Sprintf("%s%s", indicator, client.Name)
	line2 := fmt.Sprintf("    Not invoiced: %s  %s", formatHours(hours), formatMoney(amount))

	contact := client.ContactName
	if client.ContactEmail != "" {
		contact = strings.TrimSpace(contact + " <" + client.ContactEmail + ">")
	}
	if contact == "" {
		contact = truncateStr(client.Address, 50)
	}

	nameStyle := lipgloss.NewStyle()
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
	if contact != "" {
		result += "\n" + subtitleStyle.Render("    "+contact)
	}
	return result
}
