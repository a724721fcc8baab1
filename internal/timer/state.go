package timer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Joseda-hg/lazyfocus/internal/model"
)

// State enumerates the observable states of a task timer. Pausing returns
// to Idle.
type State int

const (
	Idle State = iota
	FocusRunning
	CountdownFocusRunning
	Resting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FocusRunning:
		return "focus"
	case CountdownFocusRunning:
		return "countdown"
	case Resting:
		return "resting"
	default:
		return "unknown"
	}
}

// Running reports whether the state keeps a tick source alive.
func (s State) Running() bool {
	return s != Idle
}

type phase int

const (
	phaseIdle phase = iota
	phaseFocus
	phaseRest
)

var (
	ErrActiveTaskConflict = errors.New("another task is already running")
	ErrAlreadyRunning     = errors.New("timer is already running")
	ErrNotRunning         = errors.New("timer is not running")
	ErrNoTask             = errors.New("no task loaded")
	ErrTransitioning      = errors.New("rest transition in progress")
	ErrInvalidCountdown   = errors.New("countdown must be between 1 and 180 minutes")
)

// ConflictError is returned by Start when a different task is running. It
// carries that task so the caller can offer to jump to it.
type ConflictError struct {
	Active model.Task
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("task %q is currently active", e.Active.Name)
}

func (e *ConflictError) Unwrap() error {
	return ErrActiveTaskConflict
}

// TaskStore is the part of the task store the timer needs.
type TaskStore interface {
	ActiveTask(ctx context.Context, excludeID string) (*model.Task, error)
	SaveTimerState(ctx context.Context, taskID string, state *model.TimerState) (bool, error)
}

// LeaveChoice is the answer to the prompt shown when leaving a running timer.
type LeaveChoice int

const (
	LeaveCancel LeaveChoice = iota
	LeaveTakeRest
	LeaveAnyway
)
