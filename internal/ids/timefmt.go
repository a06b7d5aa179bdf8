package ids

import (
	"fmt"
	"time"
)

// NowMillis returns the wall clock as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// RelativeTime renders the coarse age of tsMs as seen from now:
// "just now", "{n}m ago", "{n}h ago" or "{n}d ago".
func RelativeTime(tsMs int64, now time.Time) string {
	age := now.Sub(time.UnixMilli(tsMs))
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(age/(24*time.Hour)))
	}
}

// RelativeTimeNow evaluates RelativeTime against the current clock. Call it at render time.
func RelativeTimeNow(tsMs int64) string {
	return RelativeTime(tsMs, time.Now())
}
