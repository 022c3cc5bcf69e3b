package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mayesamomo/wageflow/internal/app"
	"github.com/Mayesamomo/wageflow/internal/domain"
	"github.com/Mayesamomo/wageflow/internal/service"
)

// ClockTickMsg is sent every second while the clock runs
type ClockTickMsg struct{}

// tickClock returns a command that sends ClockTickMsg after a second
func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ClockTickMsg{}
	})
}

type clockDataMsg struct {
	status  *service.ClockStatus
	clients []*domain.Client
	err     error
}

// clockedOutMsg is sent when a shift was recorded from the clock
type clockedOutMsg struct {
	shift *domain.Shift
}

// ClockModel clocks in for a client and records the shift on clock out
type ClockModel struct {
	app       *app.App
	ownerID   string
	status    *service.ClockStatus
	clients   []*domain.Client
	loaded    bool
	err       error
	statusMsg string
}

// NewClockModel creates a new ClockModel
func NewClockModel(a *app.App, ownerID string) tea.Model {
	return &ClockModel{app: a, ownerID: ownerID}
}

// IsCapturingInput returns true while clocked in so that x and d are not
// taken by global navigation
func (m *ClockModel) IsCapturingInput() bool {
	return m.status != nil
}

func (m *ClockModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ClockModel) loadData() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		ctx := context.Background()
		status, err := a.ClockService.Status(ctx, ownerID)
		if err != nil {
			return clockDataMsg{err: err}
		}
		clients, err := a.ClientService.List(ctx, ownerID)
		if err != nil {
			return clockDataMsg{err: err}
		}
		return clockDataMsg{status: status, clients: clients}
	}
}

func (m *ClockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, m.loadData()

	case clockDataMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.clients = msg.clients
		wasIdle := m.status == nil
		m.status = msg.status
		if m.status != nil && wasIdle {
			return m, tickClock()
		}
		return m, nil

	case clockedOutMsg:
		m.status = nil
		m.statusMsg = fmt.Sprintf("Shift recorded: %s, %s earned",
			formatHours(msg.shift.TotalHours), formatMoney(msg.shift.Earnings))
		return m, nil

	case ClockTickMsg:
		if m.status == nil {
			return m, nil
		}
		status, err := m.app.ClockService.Status(context.Background(), m.ownerID)
		if err != nil {
			m.err = err
			return m, nil
		}
		// Clocked out elsewhere (e.g. CLI)
		m.status = status
		if status == nil {
			return m, nil
		}
		return m, tickClock()

	case tea.KeyMsg:
		m.err = nil
		m.statusMsg = ""

		switch msg.String() {
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if m.status == nil {
				idx := int(msg.String()[0] - '1')
				if idx < len(m.clients) {
					return m, m.clockIn(m.clients[idx])
				}
			}
		case "x":
			if m.status != nil {
				return m, m.clockOut()
			}
		case "d":
			if m.status != nil {
				if err := m.app.ClockService.Cancel(context.Background(), m.ownerID); err != nil {
					m.err = err
					return m, nil
				}
				m.status = nil
				m.statusMsg = "Clock discarded"
			}
		case "esc":
			if m.status != nil {
				return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenDashboard} }
			}
		}
	}

	return m, nil
}

func (m *ClockModel) clockIn(client *domain.Client) tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := a.ClockService.ClockIn(ctx, ownerID, client.ID, domain.ShiftTypeRegular, nil, ""); err != nil {
			return ErrorMsg{Err: err}
		}
		return RefreshDataMsg{}
	}
}

func (m *ClockModel) clockOut() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		shift, err := a.ClockService.ClockOut(context.Background(), ownerID)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return clockedOutMsg{shift: shift}
	}
}

func (m *ClockModel) View() string {
	var b string
	title := lipgloss.NewStyle().Bold(true).Render("Time Clock")

	if m.err != nil {
		return title + "\n\n" +
			lipgloss.NewStyle().Foreground(errorColor).
				Render(fmt.Sprintf("Error: %s", m.err.Error())) +
			"\n\nPress any key to dismiss"
	}

	if !m.loaded {
		return title + "\n\nLoading..."
	}

	if m.status == nil {
		b += title + "\n\n"

		if m.statusMsg != "" {
			b += lipgloss.NewStyle().Foreground(successColor).
				Render("  "+m.statusMsg) + "\n\n"
		}

		b += "Not clocked in. Select a client to start:\n\n"

		if len(m.clients) == 0 {
			b += "No clients available. Add a client first.\n"
		} else {
			for i, client := range m.clients {
				if i >= 9 {
					break
				}
				b += fmt.Sprintf("[%d] %s\n", i+1, client.Name)
			}
		}
		b += "\nKeys: 1-9=clock in\n"
		return b
	}

	st := m.status
	clientName := "Unknown client"
	if st.Client != nil {
		clientName = st.Client.Name
	}

	b += title + "\n\n"
	b += fmt.Sprintf("State: %s\n", clockRunningStyle.Render("CLOCKED IN"))
	b += fmt.Sprintf("Client: %s\n", clientName)
	b += fmt.Sprintf("Type: %s\n", st.Clock.ShiftType)
	if st.Clock.HourlyRate != nil {
		b += fmt.Sprintf("Rate: %s/hr\n", formatMoney(*st.Clock.HourlyRate))
	}
	if st.Clock.Notes != "" {
		b += fmt.Sprintf("Notes: %s\n", st.Clock.Notes)
	}
	b += fmt.Sprintf("Started: %s\n", st.Clock.StartTime.Local().Format("2006-01-02 15:04:05"))
	b += fmt.Sprintf("Elapsed: %s\n", formatElapsed(st.Elapsed))
	b += fmt.Sprintf("Accrued: %s\n", clockValueStyle.Render(formatMoney(st.Accrued)))
	b += "\nKeys: x=clock out, d=discard, esc=dashboard\n"
	return b
}
