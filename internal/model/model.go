package model

import "time"

type Task struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	CreatedAt      time.Time   `json:"createdAt"`
	TotalFocusTime int         `json:"totalFocusTime"`
	TimerState     *TimerState `json:"timerState,omitempty"`
}

// IsRunning reports whether the task's stored snapshot says its timer is active.
func (t Task) IsRunning() bool {
	return t.TimerState != nil && t.TimerState.IsRunning
}

// TimerState is the snapshot a timer writes back onto its task so that the
// timer view can be suspended and resumed. Field names are part of the
// stored format.
type TimerState struct {
	IsRunning               bool           `json:"isRunning"`
	IsResting               bool           `json:"isResting"`
	Seconds                 int            `json:"seconds"`
	RestSeconds             int            `json:"restSeconds"`
	RestCount               int            `json:"restCount"`
	CurrentRestTimer        int            `json:"currentRestTimer"`
	TotalFocusTime          int            `json:"totalFocusTime"`
	FocusSessions           []FocusSession `json:"focusSessions"`
	CurrentSessionStart     int            `json:"currentSessionStart"`
	CurrentSessionRestStart int            `json:"currentSessionRestStart"`
	CurrentSessionRestTime  int            `json:"currentSessionRestTime"`
	IsCountdownMode         bool           `json:"isCountdownMode"`
	CountdownDuration       int            `json:"countdownDuration"`
	CountdownSeconds        int            `json:"countdownSeconds"`
}

// InProgress reports whether the session at index i belongs to the active run.
func (s TimerState) InProgress(i int) bool {
	return s.IsRunning && i == len(s.FocusSessions)-1
}

type FocusSession struct {
	CompletedDate time.Time `json:"completedDate"`
	FocusDuration int       `json:"focusDuration"`
	RestDuration  int       `json:"restDuration"`
}

type CompletedTask struct {
	Task
	CompletedAt time.Time `json:"completedAt"`
	Duration    int       `json:"duration"`
}

// Clone returns a deep copy so callers can hand the snapshot around without
// sharing the session slice.
func (s *TimerState) Clone() *TimerState {
	if s == nil {
		return nil
	}
	out := *s
	if s.FocusSessions != nil {
		out.FocusSessions = make([]FocusSession, len(s.FocusSessions))
		copy(out.FocusSessions, s.FocusSessions)
	}
	return &out
}
