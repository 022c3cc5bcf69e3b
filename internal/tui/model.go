package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mayesamomo/wageflow/internal/app"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenClock
	ScreenClients
	ScreenInvoices
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "Dashboard"
	case ScreenClock:
		return "Time Clock"
	case ScreenClients:
		return "Clients"
	case ScreenInvoices:
		return "Invoices"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	ownerID       string
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	dashboard tea.Model
	clock     tea.Model
	clients   tea.Model
	invoices  tea.Model

	checkedFirstRun bool

	err        error
	quitMsg    string // shown when quit needs confirming
	quitWarned bool
}

// New creates a new root model for the signed-in user
func New(a *app.App, ownerID string) Model {
	return Model{
		app:           a,
		ownerID:       ownerID,
		currentScreen: ScreenDashboard,
		dashboard:     NewDashboardModel(a, ownerID),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkFirstRun(),
	}
	if m.dashboard != nil {
		cmds = append(cmds, m.dashboard.Init())
	}
	return tea.Batch(cmds...)
}

// checkFirstRun checks whether the user has any clients yet
func (m *Model) checkFirstRun() tea.Cmd {
	a, ownerID := m.app, m.ownerID
	return func() tea.Msg {
		clients, err := a.ClientService.List(context.Background(), ownerID)
		if err != nil {
			return firstRunCheckMsg{hasClients: true} // assume yes on error
		}
		return firstRunCheckMsg{hasClients: len(clients) > 0}
	}
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	refresh := func() tea.Msg { return RefreshDataMsg{} }
	switch screen {
	case ScreenDashboard:
		if m.dashboard == nil {
			m.dashboard = NewDashboardModel(m.app, m.ownerID)
			return m.dashboard.Init()
		}
		return refresh
	case ScreenClock:
		if m.clock == nil {
			m.clock = NewClockModel(m.app, m.ownerID)
			return m.clock.Init()
		}
		return refresh
	case ScreenClients:
		if m.clients == nil {
			m.clients = NewClientsModel(m.app, m.ownerID)
			return m.clients.Init()
		}
		return refresh
	case ScreenInvoices:
		if m.invoices == nil {
			m.invoices = NewInvoicesModel(m.app, m.ownerID)
			return m.invoices.Init()
		}
		return refresh
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (H, T, C, I, Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) screen(s Screen) tea.Model {
	switch s {
	case ScreenDashboard:
		return m.dashboard
	case ScreenClock:
		return m.clock
	case ScreenClients:
		return m.clients
	case ScreenInvoices:
		return m.invoices
	}
	return nil
}

func (m *Model) setScreen(s Screen, model tea.Model) {
	switch s {
	case ScreenDashboard:
		m.dashboard = model
	case ScreenClock:
		m.clock = model
	case ScreenClients:
		m.clients = model
	case ScreenInvoices:
		m.invoices = model
	}
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screen(m.currentScreen).(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) switchTo(s Screen) tea.Cmd {
	m.currentScreen = s
	return m.initScreen(s)
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.quitMsg = ""
		warned := m.quitWarned
		m.quitWarned = false

		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				status, _ := m.app.ClockService.Status(context.Background(), m.ownerID)
				if status != nil && !warned && msg.String() != "ctrl+c" {
					m.quitMsg = "Clock is still running. Press q again to quit; it keeps running until you clock out."
					m.quitWarned = true
					return m, nil
				}
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Dashboard):
				return m, m.switchTo(ScreenDashboard)

			case key.Matches(msg, DefaultKeyMap.Clock):
				return m, m.switchTo(ScreenClock)

			case key.Matches(msg, DefaultKeyMap.Clients):
				return m, m.switchTo(ScreenClients)

			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.switchTo(ScreenInvoices)
			}
		}

	case firstRunCheckMsg:
		if !m.checkedFirstRun && !msg.hasClients {
			m.checkedFirstRun = true
			initCmd := m.switchTo(ScreenClients)
			openFormCmd := func() tea.Msg { return OpenNewClientFormMsg{} }
			return m, tea.Batch(initCmd, openFormCmd)
		}
		m.checkedFirstRun = true
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	if screen := m.screen(m.currentScreen); screen != nil {
		screen, cmd = screen.Update(msg)
		m.setScreen(m.currentScreen, screen)
	}
	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("wageflow - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[H]ome  [T]ime clock  [C]lients  [I]nvoices  [Q]uit")

	content := "Loading..."
	if screen := m.screen(m.currentScreen); screen != nil {
		content = screen.View()
	}

	errorDisplay := ""
	if m.quitMsg != "" {
		errorDisplay = lipgloss.NewStyle().
			Foreground(warningColor).
			Render(fmt.Sprintf("\n%s", m.quitMsg))
	} else if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI for the signed-in user
func Run(a *app.App, ownerID string) error {
	p := tea.NewProgram(New(a, ownerID), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
