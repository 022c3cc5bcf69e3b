package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeFrame is the bucket granularity for earnings summaries
type TimeFrame string

const (
	TimeFrameDay   TimeFrame = "day"
	TimeFrameWeek  TimeFrame = "week"
	TimeFrameMonth TimeFrame = "month"
	TimeFrameYear  TimeFrame = "year"
)

// TimeFrames lists every granularity from finest to coarsest
var TimeFrames = []TimeFrame{TimeFrameDay, TimeFrameWeek, TimeFrameMonth, TimeFrameYear}

// ParseTimeFrame converts user input into a time frame. Empty input means month.
func ParseTimeFrame(s string) (TimeFrame, error) {
	tf := TimeFrame(strings.ToLower(strings.TrimSpace(s)))
	if tf == "" {
		return TimeFrameMonth, nil
	}
	for _, known := range TimeFrames {
		if tf == known {
			return tf, nil
		}
	}
	return "", Validation("time frame", "unknown time frame %q (want day, week, month or year)", s)
}

// Start truncates t to the beginning of its period. Weeks start on Monday.
func (tf TimeFrame) Start(t time.Time) time.Time {
	y, m, d := t.Date()
	switch tf {
	case TimeFrameWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	case TimeFrameMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case TimeFrameYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}

// Next returns the start of the period after the one starting at start
func (tf TimeFrame) Next(start time.Time) time.Time {
	switch tf {
	case TimeFrameWeek:
		return start.AddDate(0, 0, 7)
	case TimeFrameMonth:
		return start.AddDate(0, 1, 0)
	case TimeFrameYear:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Range returns the period containing now, from its first to its last instant
func (tf TimeFrame) Range(now time.Time) (time.Time, time.Time) {
	start := tf.Start(now)
	return start, tf.Next(start).Add(-time.Nanosecond)
}

// Label names the period containing t: 2025-01-31, 2025-W5, 2025-01 or 2025.
// Week labels use the ISO week-numbering year.
func (tf TimeFrame) Label(t time.Time) string {
	switch tf {
	case TimeFrameWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%d", year, week)
	case TimeFrameMonth:
		return t.Format("2006-01")
	case TimeFrameYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// Labels returns every period label from the one containing start through
// the one containing end, in order
func (tf TimeFrame) Labels(start, end time.Time) []string {
	labels := make([]string, 0)
	if end.Before(start) {
		return labels
	}
	for cur := tf.Start(start); !cur.After(end); cur = tf.Next(cur) {
		labels = append(labels, tf.Label(cur))
	}
	return labels
}
