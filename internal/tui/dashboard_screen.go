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
	"github.com/Mayesamomo/wageflow/internal/service"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app       *app.App
	ownerID   string
	timeFrame domain.TimeFrame

	summary *service.DashboardSummary
	clock   *service.ClockStatus

	loading bool
	err     error
}

type dashboardDataMsg struct {
	summary *service.DashboardSummary
	clock   *service.ClockStatus
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App, ownerID string) tea.Model {
	return &DashboardModel{
		app:       a,
		ownerID:   ownerID,
		timeFrame: domain.TimeFrameWeek,
		loading:   true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	a, ownerID, tf := m.app, m.ownerID, m.timeFrame
	return func() tea.Msg {
		ctx := context.Background()

		start, end := dashboardWindow(tf, time.Now())
		summary, err := a.DashboardService.Summary(ctx, ownerID, service.DashboardFilter{
			TimeFrame: tf,
			Start:     &start,
			End:       &end,
		})
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("summary: %w", err)}
		}

		clock, err := a.ClockService.Status(ctx, ownerID)
		if err != nil {
			return dashboardDataMsg{err: fmt.Errorf("clock: %w", err)}
		}

		return dashboardDataMsg{summary: summary, clock: clock}
	}
}

// dashboardWindow covers the current bucket and the ones before it, so the
// period chart always has a trend to show
func dashboardWindow(tf domain.TimeFrame, now time.Time) (time.Time, time.Time) {
	start, end := tf.Range(now)
	switch tf {
	case domain.TimeFrameDay:
		start = start.AddDate(0, 0, -13)
	case domain.TimeFrameWeek:
		start = start.AddDate(0, 0, -7*7)
	case domain.TimeFrameMonth:
		start = start.AddDate(0, -11, 0)
	case domain.TimeFrameYear:
		start = start.AddDate(-4, 0, 0)
	}
	return start, end
}

// nextTimeFrame cycles day -> week -> month -> year -> day
func nextTimeFrame(tf domain.TimeFrame) domain.TimeFrame {
	for i, known := range domain.TimeFrames {
		if known == tf {
			return domain.TimeFrames[(i+1)%len(domain.TimeFrames)]
		}
	}
	return domain.TimeFrameMonth
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.summary = msg.summary
			m.clock = msg.clock
		}
		if m.clock != nil {
			return m, tickClock()
		}
		return m, nil

	case ClockTickMsg:
		if m.clock != nil {
			status, err := m.app.ClockService.Status(context.Background(), m.ownerID)
			if err == nil {
				m.clock = status
			}
			if m.clock != nil {
				return m, tickClock()
			}
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.TimeFrame) {
			m.timeFrame = nextTimeFrame(m.timeFrame)
			m.loading = true
			return m, m.loadData()
		}
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	sum := m.summary
	var s string

	s += titleStyle.Render(fmt.Sprintf("By %s", sum.TimeFrame)) +
		subtitleStyle.Render(fmt.Sprintf("  %s to %s", sum.Start.Format("Jan 02"), sum.End.Format("Jan 02, 2006"))) + "\n\n"

	s += fmt.Sprintf("  Hours:    %-12s  Earnings:  %-12s  Tax:     %s\n",
		formatHours(sum.TotalHours), formatMoney(sum.TotalEarnings), formatMoney(sum.TotalTax))
	s += fmt.Sprintf("  Mileage:  %-12s  Amount:    %s\n",
		fmt.Sprintf("%.1f km", sum.TotalMileage), formatMoney(sum.TotalMileageAmount))
	s += fmt.Sprintf("  Invoiced: %-12s  Paid:      %-12s  Unpaid:  %s\n",
		formatMoney(sum.TotalInvoiced), formatMoney(sum.TotalPaid), formatMoney(sum.TotalUnpaid))

	s += "\n"
	if m.clock != nil {
		s += m.renderClock()
	} else {
		s += subtitleStyle.Render("  Not clocked in") + "\n"
	}

	s += "\n" + m.renderPeriods()

	if len(sum.Clients) > 0 {
		s += "\n" + subtitleStyle.Render("  Clients") + "\n"
		for _, c := range sum.Clients {
			s += fmt.Sprintf("  %-22s %8s  %10s  %8.1f km\n",
				truncateStr(c.Name, 22), formatHours(c.TotalHours), formatMoney(c.TotalEarnings), c.TotalMileage)
		}
	}

	s += "\n" + helpStyle.Render("  f: day/week/month/year")
	return s
}

func (m *DashboardModel) renderClock() string {
	name := "Unknown client"
	if m.clock.Client != nil {
		name = m.clock.Client.Name
	}
	return fmt.Sprintf("  Clocked in\n  %s %s  [%s]  %s\n",
		clockRunningStyle.Render("●"),
		name,
		clockValueStyle.Render(formatElapsed(m.clock.Elapsed)),
		formatMoney(m.clock.Accrued),
	)
}

// renderPeriods draws one earnings bar per bucket
func (m *DashboardModel) renderPeriods() string {
	periods := m.summary.Periods
	if len(periods) == 0 {
		return subtitleStyle.Render("  No activity in this period") + "\n"
	}

	var peak float64
	for _, p := range periods {
		if v := p.TotalEarnings + p.TotalMileageAmount; v > peak {
			peak = v
		}
	}

	s := subtitleStyle.Render(fmt.Sprintf("  %-12s %8s  %10s", "Period", "Hours", "Earned")) + "\n"
	for _, p := range periods {
		earned := p.TotalEarnings + p.TotalMileageAmount
		s += fmt.Sprintf("  %-12s %8s  %10s  %s\n",
			p.Period, formatHours(p.TotalHours), formatMoney(earned), barStyle.Render(bar(earned, peak, 30)))
	}
	return s
}
