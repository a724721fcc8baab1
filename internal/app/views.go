package app

import (
	"context"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/config"
	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/Joseda-hg/lazyfocus/internal/timer"
)

// Each view gets only the calls it needs from the shell.

type HomeActions interface {
	Tasks(ctx context.Context) ([]model.Task, error)
	OpenTimer(ctx context.Context, taskID string) error
	AddTask()
	EditTask(taskID string)
	DeleteTask(ctx context.Context, taskID string) error
}

type StartActions interface {
	EditingTask(ctx context.Context) (model.Task, bool, error)
	CreateTask(ctx context.Context, name, description string) (model.Task, error)
	UpdateTask(ctx context.Context, taskID, name, description string) error
	StartWithoutTask(ctx context.Context) (model.Task, error)
	BackFromStart()
}

type TimerActions interface {
	CurrentTask(ctx context.Context) (model.Task, bool, error)
	TimerState() timer.State
	TimerSnapshot() *model.TimerState
	Start(ctx context.Context) error
	ToggleRest(ctx context.Context) error
	PauseNeedsConfirmation() bool
	Pause(ctx context.Context) error
	SkipPauseWarning() error
	SetCountdown(ctx context.Context, enabled bool, minutes int) error
	RestDue() bool
	LeaveNeedsConfirmation() bool
	BackFromTimer(ctx context.Context, choice timer.LeaveChoice) (bool, error)
	CompleteCurrent(ctx context.Context) (model.CompletedTask, error)
	OpenTimer(ctx context.Context, taskID string) error
}

type HistorySource interface {
	History(ctx context.Context, day time.Time) ([]model.CompletedTask, [24]int, error)
	Now() time.Time
	Location() *time.Location
}

type SettingsActions interface {
	Settings() config.Settings
	SaveSettings(settings config.Settings) error
}

var (
	_ HomeActions     = (*Shell)(nil)
	_ StartActions    = (*Shell)(nil)
	_ TimerActions    = (*Shell)(nil)
	_ HistorySource   = (*Shell)(nil)
	_ SettingsActions = (*Shell)(nil)
)

func (s *Shell) HomeView() HomeActions { return s }

func (s *Shell) StartView() StartActions { return s }

func (s *Shell) TimerView() TimerActions { return s }

func (s *Shell) HistoryView() HistorySource { return s }

func (s *Shell) SettingsView() SettingsActions { return s }
