package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"pantry-cli/internal/model"
)

var reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// parseExpiry normalizes --expiry input to YYYY-MM-DD. It accepts:
// - "" (no expiry)
// - YYYY-MM-DD
// - today / tomorrow
// - +Nd (N days from now)
// - RFC3339 (the local calendar date of that instant)
func parseExpiry(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if reDateOnly.MatchString(s) {
		if _, err := time.ParseInLocation(model.DateLayout, s, time.Local); err != nil {
			return "", fmt.Errorf("invalid expiry %q: %w", s, err)
		}
		return s, nil
	}
	switch strings.ToLower(s) {
	case "today":
		return now.Format(model.DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(model.DateLayout), nil
	}
	if strings.HasPrefix(s, "+") && strings.HasSuffix(strings.ToLower(s), "d") {
		var n int
		if _, err := fmt.Sscanf(s[1:len(s)-1], "%d", &n); err == nil && n >= 0 {
			return now.AddDate(0, 0, n).Format(model.DateLayout), nil
		}
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Local().Format(model.DateLayout), nil
	}
	return "", fmt.Errorf("invalid expiry %q (expected YYYY-MM-DD, today, tomorrow, +Nd, or RFC3339)", s)
}
