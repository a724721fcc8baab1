package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Joseda-hg/lazyfocus/internal/config"
	"github.com/Joseda-hg/lazyfocus/internal/model"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldNumber
	fieldToggle
)

type formField struct {
	Label string
	Value string
	Kind  fieldKind
}

type formState struct {
	taskID string
	fields []formField
	index  int
}

const (
	fieldName = iota
	fieldDescription
)

func buildTaskFields(task *model.Task) []formField {
	fields := []formField{
		{Label: "Name"},
		{Label: "Description"},
	}
	if task == nil {
		return fields
	}
	fields[fieldName].Value = task.Name
	fields[fieldDescription].Value = task.Description
	return fields
}

func parseTaskFields(fields []formField) (string, string) {
	return strings.TrimSpace(fields[fieldName].Value), strings.TrimSpace(fields[fieldDescription].Value)
}

const (
	settingNotifications = iota
	settingRestMinutes
	settingIntervalHours
	settingIntervalMinutes
	settingCountdownMinutes
	settingPauseWarning
)

func buildSettingsFields(settings config.Settings) []formField {
	return []formField{
		{Label: "Notifications", Value: formatToggle(settings.NotificationsEnabled), Kind: fieldToggle},
		{Label: "Default rest (min)", Value: strconv.Itoa(settings.DefaultRestMinutes), Kind: fieldNumber},
		{Label: "Rest interval hours", Value: strconv.Itoa(settings.RestIntervalHours), Kind: fieldNumber},
		{Label: "Rest interval minutes", Value: strconv.Itoa(settings.RestIntervalMinutes), Kind: fieldNumber},
		{Label: "Countdown (min)", Value: strconv.Itoa(settings.CountdownMinutes), Kind: fieldNumber},
		{Label: "Pause warning", Value: formatToggle(!settings.SkipPauseWarning), Kind: fieldToggle},
	}
}

func parseSettingsFields(fields []formField, base config.Settings) (config.Settings, error) {
	settings := base
	settings.NotificationsEnabled = fields[settingNotifications].Value == formatToggle(true)
	settings.SkipPauseWarning = fields[settingPauseWarning].Value != formatToggle(true)

	var err error
	if settings.DefaultRestMinutes, err = parseBounded(fields[settingRestMinutes], 0, 30); err != nil {
		return base, err
	}
	if settings.RestIntervalHours, err = parseBounded(fields[settingIntervalHours], 0, 23); err != nil {
		return base, err
	}
	if settings.RestIntervalMinutes, err = parseBounded(fields[settingIntervalMinutes], 0, 59); err != nil {
		return base, err
	}
	if settings.CountdownMinutes, err = parseBounded(fields[settingCountdownMinutes], config.MinCountdownMinutes, config.MaxCountdownMinutes); err != nil {
		return base, err
	}
	return settings, nil
}

func parseBounded(field formField, lo, hi int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(field.Value))
	if err != nil || value < lo || value > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", strings.ToLower(field.Label), lo, hi)
	}
	return value, nil
}

func formatToggle(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
