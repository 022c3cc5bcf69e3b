package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFrame(t *testing.T) {
	tf, err := ParseTimeFrame("")
	require.NoError(t, err)
	assert.Equal(t, TimeFrameMonth, tf)

	tf, err = ParseTimeFrame(" Week ")
	require.NoError(t, err)
	assert.Equal(t, TimeFrameWeek, tf)

	_, err = ParseTimeFrame("fortnight")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTimeFrameLabel(t *testing.T) {
	ts := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		tf   TimeFrame
		want string
	}{
		{TimeFrameDay, "2025-01-01"},
		{TimeFrameWeek, "2025-W1"},
		{TimeFrameMonth, "2025-01"},
		{TimeFrameYear, "2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tf.Label(ts), tt.tf)
	}

	// 2024-12-30 is a Monday that belongs to ISO week 1 of 2025
	assert.Equal(t, "2025-W1", TimeFrameWeek.Label(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
}

func TestWeekStartIsMonday(t *testing.T) {
	sunday := time.Date(2025, 1, 12, 18, 30, 0, 0, time.UTC)
	start := TimeFrameWeek.Start(sunday)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), start)
}

func TestLabelsCoverWholeRange(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)  // Wednesday, W1
	end := time.Date(2025, 1, 20, 23, 0, 0, 0, time.UTC) // Monday, W4

	assert.Equal(t, []string{"2025-W1", "2025-W2", "2025-W3", "2025-W4"}, TimeFrameWeek.Labels(start, end))
	assert.Equal(t, []string{"2025-01"}, TimeFrameMonth.Labels(start, end))
	assert.Len(t, TimeFrameDay.Labels(start, end), 20)
	assert.Empty(t, TimeFrameDay.Labels(end, start))
}

func TestRange(t *testing.T) {
	now := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)

	start, end := TimeFrameMonth.Range(now)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999999999, time.UTC), end)

	start, end = TimeFrameWeek.Range(now)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Sunday, end.Weekday())
}
