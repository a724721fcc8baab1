package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/history"
	"github.com/Joseda-hg/lazyfocus/internal/model"
)

func taskMarker(task model.Task) string {
	switch {
	case task.TimerState == nil:
		return " "
	case task.TimerState.IsRunning && task.TimerState.IsResting:
		return "~"
	case task.TimerState.IsRunning:
		return "●"
	default:
		return "○"
	}
}

func formatTaskSummary(task model.Task) string {
	summary := fmt.Sprintf("%s %s | %s", taskMarker(task), task.Name, history.Focus(task.TotalFocusTime))
	if task.Description != "" {
		summary += " | " + task.Description
	}
	return summary
}

func formatCompletedSummary(task model.CompletedTask) string {
	return fmt.Sprintf("%s | %s | %s", task.Name, history.Short(task.Duration), history.Date(task.CompletedAt))
}

func formatCompletedDetail(task model.CompletedTask, now time.Time) []string {
	lines := []string{
		fmt.Sprintf("    completed %s", history.Relative(task.CompletedAt, now)),
		fmt.Sprintf("    duration %s | total focus %s", history.Detailed(task.Duration), history.Detailed(task.TotalFocusTime)),
	}
	if task.Description != "" {
		lines = append(lines, "    "+task.Description)
	}
	if task.TimerState != nil {
		lines = append(lines, fmt.Sprintf("    %d sessions | %d rests", len(task.TimerState.FocusSessions), task.TimerState.RestCount))
	}
	return lines
}

func formatSessions(state *model.TimerState, now time.Time) string {
	if state == nil || len(state.FocusSessions) == 0 {
		return "No focus sessions yet"
	}
	lines := make([]string, 0, len(state.FocusSessions))
	for i, session := range state.FocusSessions {
		line := fmt.Sprintf("%-14s %-14s focus %-8s rest %s",
			history.SessionLabel(i),
			history.Relative(session.CompletedDate, now),
			history.Clock(session.FocusDuration),
			history.Clock(session.RestDuration),
		)
		if state.InProgress(i) {
			line += " (in progress)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// formatHourly renders one bar per hour with focus time, skipping empty hours.
func formatHourly(hours [24]int, width int) []string {
	peak := 1
	for _, seconds := range hours {
		peak = max(peak, seconds)
	}
	width = max(width, 10)

	lines := []string{}
	for hour, seconds := range hours {
		if seconds == 0 {
			continue
		}
		bar := strings.Repeat("█", max(1, seconds*width/peak))
		lines = append(lines, fmt.Sprintf("%02d:00 %s %s", hour, bar, history.Short(seconds)))
	}
	if len(lines) == 0 {
		lines = append(lines, "no focus time recorded")
	}
	return lines
}
