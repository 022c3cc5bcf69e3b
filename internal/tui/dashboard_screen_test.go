package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

func TestDashboardWindow(t *testing.T) {
	now := time.Date(2025, 5, 14, 10, 0, 0, 0, time.UTC) // Wednesday

	start, end := dashboardWindow(domain.TimeFrameWeek, now)
	assert.Equal(t, time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 5, 18, 23, 59, 59, 999999999, time.UTC), end)
	assert.Len(t, domain.TimeFrameWeek.Labels(start, end), 8)

	start, _ = dashboardWindow(domain.TimeFrameMonth, now)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), start)

	start, _ = dashboardWindow(domain.TimeFrameDay, now)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestNextTimeFrameCycles(t *testing.T) {
	assert.Equal(t, domain.TimeFrameWeek, nextTimeFrame(domain.TimeFrameDay))
	assert.Equal(t, domain.TimeFrameDay, nextTimeFrame(domain.TimeFrameYear))
	assert.Equal(t, domain.TimeFrameMonth, nextTimeFrame(""))
}
