package notification

import (
	"fmt"
	"time"
)

// QuietHours is a user's do-not-disturb window as "HH:MM" clock values.
// Start after End means the window spans midnight (e.g. 22:00-08:00).
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// IsQuietAt reports whether t falls inside the window. A nil window is
// never quiet.
func IsQuietAt(t time.Time, qh *QuietHours) bool {
	if qh == nil {
		return false
	}
	start, err := parseClock(qh.Start)
	if err != nil {
		return false
	}
	end, err := parseClock(qh.End)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()

	if start <= end {
		return now >= start && now <= end
	}
	// Window wraps midnight.
	return now >= start || now <= end
}

// NextWindowEnd returns the next instant the quiet window ends: today's
// end-of-window if still ahead of t, otherwise the same clock time
// tomorrow.
func NextWindowEnd(t time.Time, qh *QuietHours) time.Time {
	end, err := parseClock(qh.End)
	if err != nil {
		return t
	}
	target := time.Date(t.Year(), t.Month(), t.Day(), end/60, end%60, 0, 0, t.Location())
	if !target.After(t) {
		target = target.Add(24 * time.Hour)
	}
	return target
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return h*60 + m, nil
}
