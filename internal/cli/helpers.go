package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mayesamomo/wageflow/internal/domain"
)

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// parseDate parses a date string in various formats
func parseDate(s string) (time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	switch s {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	default:
		t, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// parseDateTime parses a datetime string in various formats
func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD HH:MM or YYYY-MM-DDTHH:MM:SS")
}

// endOfDay moves a date to its last second so ranges include the whole day
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// dateRangeFlags reads optional --start/--end date flags
func dateRangeFlags(cmd *cobra.Command) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if s, _ := cmd.Flags().GetString("start"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date: %w", err)
		}
		start = &t
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date: %w", err)
		}
		t = endOfDay(t)
		end = &t
	}
	return start, end, nil
}

// stringFlag returns a pointer to the flag value if it was set
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// floatFlag returns a pointer to the flag value if it was set
func floatFlag(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

// splitIDs accepts ids as separate args or comma separated
func splitIDs(values []string) []string {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// resolveClientID resolves a client by ID or name
func resolveClientID(ctx context.Context, ownerID, idOrName string) (string, error) {
	client, err := appInstance.ClientService.Get(ctx, ownerID, idOrName)
	if err == nil {
		return client.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	clients, err := appInstance.ClientService.List(ctx, ownerID)
	if err != nil {
		return "", err
	}
	for _, c := range clients {
		if strings.EqualFold(c.Name, idOrName) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("client '%s' not found", idOrName)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	} else if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
