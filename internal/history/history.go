package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/dustin/go-humanize"
)

const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD date as local midnight in loc. An empty
// string yields the zero time, meaning no filter.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return day, nil
}

// DayBounds returns [midnight, next midnight) of the calendar day containing
// day, in loc.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FilterByDate keeps the completed tasks whose completion falls on day in
// loc, preserving order. A zero day returns tasks unchanged.
func FilterByDate(tasks []model.CompletedTask, day time.Time, loc *time.Location) []model.CompletedTask {
	if day.IsZero() {
		return tasks
	}
	start, end := DayBounds(day, loc)
	filtered := []model.CompletedTask{}
	for _, task := range tasks {
		if !task.CompletedAt.Before(start) && task.CompletedAt.Before(end) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// HourlyDistribution sums focus seconds per hour of day from each task's
// focus sessions. A session's focus is laid out contiguously from its start
// stamp and split at hour boundaries.
func HourlyDistribution(tasks []model.CompletedTask, day time.Time, loc *time.Location) [24]int {
	var hours [24]int
	if day.IsZero() {
		return hours
	}
	start, end := DayBounds(day, loc)

	for _, task := range tasks {
		if task.TimerState == nil {
			continue
		}
		for _, session := range task.TimerState.FocusSessions {
			from := session.CompletedDate
			to := from.Add(time.Duration(session.FocusDuration) * time.Second)
			if from.Before(start) {
				from = start
			}
			if to.After(end) {
				to = end
			}
			for from.Before(to) {
				local := from.In(start.Location())
				next := time.Date(local.Year(), local.Month(), local.Day(), local.Hour()+1, 0, 0, 0, start.Location())
				if next.After(to) {
					next = to
				}
				hours[local.Hour()] += int(next.Sub(from) / time.Second)
				from = next
			}
		}
	}
	return hours
}

// Clock formats seconds as H:MM:SS, or M:SS under an hour.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func Minutes(seconds int) string {
	return fmt.Sprintf("%d min", seconds/60)
}

// Short formats as "1h 5m" or "5m".
func Short(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// Focus is Short with "0 min" for tasks that have no focus time yet.
func Focus(seconds int) string {
	if seconds <= 0 {
		return "0 min"
	}
	return Short(seconds)
}

// Detailed formats as "1d 2h 3m", dropping zero units but always keeping
// minutes when nothing else is shown.
func Detailed(seconds int) string {
	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60

	parts := []string{}
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, " ")
}

func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// Relative renders t against now, e.g. "3 hours ago".
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// SessionLabel names the i-th (zero based) focus session: "1st session".
func SessionLabel(i int) string {
	return humanize.Ordinal(i+1) + " session"
}
