package timecalc

import (
	"fmt"
	"strings"
	"time"
)

// StampLayout is the timestamp format used in check-in files and log sheets,
// e.g. "05/Mar/2017:14:30:00 +0000".
const StampLayout = "02/Jan/2006:15:04:05 -0700"

// FormatStamp formats t with StampLayout.
func FormatStamp(t time.Time) string {
	return t.Format(StampLayout)
}

// ParseStamp parses a StampLayout timestamp.
func ParseStamp(value string) (time.Time, error) {
	return time.Parse(StampLayout, value)
}

var unitSeconds = map[rune]int64{'D': 86400, 'H': 3600, 'M': 60, 'S': 1}

// SplitDuration breaks d into whole units, largest first. components is a
// sequence of D, H, M and S, e.g. "HMS" yields hours, minutes and seconds
// with days folded into hours.
func SplitDuration(d time.Duration, components string) []int64 {
	rem := int64(d / time.Second)
	parts := make([]int64, 0, len(components))
	for _, c := range components {
		unit := unitSeconds[c]
		if unit == 0 {
			continue
		}
		parts = append(parts, rem/unit)
		rem %= unit
	}
	return parts
}

// FormatDuration renders the non-zero units of d like "1d, 2h, 5s".
// A duration without any non-zero unit renders as zero of the smallest unit.
func FormatDuration(d time.Duration, components string) string {
	var units []rune
	for _, c := range components {
		if unitSeconds[c] != 0 {
			units = append(units, c)
		}
	}
	if len(units) == 0 {
		return ""
	}

	var parts []string
	for i, val := range SplitDuration(d, string(units)) {
		if val > 0 {
			parts = append(parts, fmt.Sprintf("%d%c", val, units[i]+('a'-'A')))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("0%c", units[len(units)-1]+('a'-'A'))
	}
	return strings.Join(parts, ", ")
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = StartOfDay(monday)
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
