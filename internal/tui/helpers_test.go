package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "45m", formatHours(0.75))
	assert.Equal(t, "2h", formatHours(2))
	assert.Equal(t, "1h 30m", formatHours(1.5))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0.00", formatMoney(0))
	assert.Equal(t, "$1,234.50", formatMoney(1234.5))
	assert.Equal(t, "-$1,000,000.00", formatMoney(-1000000))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "01:02:03", formatElapsed(time.Hour+2*time.Minute+3*time.Second))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10, 20))
	assert.Equal(t, "", bar(5, 0, 20))
	assert.Len(t, []rune(bar(5, 10, 20)), 10)
	assert.Len(t, []rune(bar(0.01, 10, 20)), 1)
	assert.Len(t, []rune(bar(50, 10, 20)), 20)
}

func TestTruncateStr(t *testing.T) {
	assert.Equal(t, "short", truncateStr("short", 10))
	assert.Equal(t, "Maple H...", truncateStr("Maple Home Care", 10))
	assert.Equal(t, "ab", truncateStr("abcdef", 2))
}
