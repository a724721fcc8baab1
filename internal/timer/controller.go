package timer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/model"
)

const (
	// TransitionWindow is how long a rest toggle blocks the next one.
	TransitionWindow = 300 * time.Millisecond

	DefaultCountdownMinutes = 25
	MinCountdownMinutes     = 1
	MaxCountdownMinutes     = 180
)

type Options struct {
	CountdownMinutes int
	SkipPauseWarning bool
	Now              func() time.Time
	Logger           *slog.Logger
}

// Controller is the focus/rest state machine for one task at a time. It is
// not safe for concurrent use; Runner serializes access and drives Tick.
type Controller struct {
	store  TaskStore
	logger *slog.Logger
	now    func() time.Time

	defaultCountdown int
	skipPauseWarning bool
	stopTicks        func()

	taskID           string
	phase            phase
	seconds          int
	restSeconds      int
	restCount        int
	currentRest      int
	totalFocus       int
	sessions         []model.FocusSession
	sessionStart     int
	sessionRestStart int
	sessionRestTime  int
	countdown        bool
	countdownMinutes int
	remaining        int
	lastToggle       time.Time
}

func NewController(store TaskStore, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	minutes := opts.CountdownMinutes
	if minutes < MinCountdownMinutes || minutes > MaxCountdownMinutes {
		minutes = DefaultCountdownMinutes
	}
	return &Controller{
		store:            store,
		logger:           logger,
		now:              now,
		defaultCountdown: minutes,
		skipPauseWarning: opts.SkipPauseWarning,
		countdownMinutes: minutes,
	}
}

// Load hydrates the controller from the task's stored snapshot, discarding
// whatever the previous task left in memory.
func (c *Controller) Load(task model.Task) {
	*c = Controller{
		store:            c.store,
		logger:           c.logger,
		now:              c.now,
		defaultCountdown: c.defaultCountdown,
		skipPauseWarning: c.skipPauseWarning,
		stopTicks:        c.stopTicks,
		taskID:           task.ID,
		totalFocus:       task.TotalFocusTime,
		countdownMinutes: c.defaultCountdown,
	}

	state := task.TimerState
	if state == nil {
		return
	}

	switch {
	case state.IsRunning && state.IsResting:
		c.phase = phaseRest
	case state.IsRunning:
		c.phase = phaseFocus
	default:
		c.phase = phaseIdle
	}
	c.seconds = state.Seconds
	c.restSeconds = state.RestSeconds
	c.restCount = state.RestCount
	c.currentRest = state.CurrentRestTimer
	c.totalFocus = state.TotalFocusTime
	c.sessions = append([]model.FocusSession(nil), state.FocusSessions...)
	c.sessionStart = state.CurrentSessionStart
	c.sessionRestStart = state.CurrentSessionRestStart
	c.sessionRestTime = state.CurrentSessionRestTime
	c.countdown = state.IsCountdownMode
	if state.CountdownDuration >= MinCountdownMinutes && state.CountdownDuration <= MaxCountdownMinutes {
		c.countdownMinutes = state.CountdownDuration
	}
	c.remaining = state.CountdownSeconds
}

// Unload forgets the current task without touching the store.
func (c *Controller) Unload() {
	c.Load(model.Task{})
}

func (c *Controller) TaskID() string {
	return c.taskID
}

func (c *Controller) State() State {
	switch c.phase {
	case phaseRest:
		return Resting
	case phaseFocus:
		if c.countdown {
			return CountdownFocusRunning
		}
		return FocusRunning
	default:
		return Idle
	}
}

// Snapshot serializes the controller into the stored timer state shape.
func (c *Controller) Snapshot() *model.TimerState {
	return &model.TimerState{
		IsRunning:               c.phase != phaseIdle,
		IsResting:               c.phase == phaseRest,
		Seconds:                 c.seconds,
		RestSeconds:             c.restSeconds,
		RestCount:               c.restCount,
		CurrentRestTimer:        c.currentRest,
		TotalFocusTime:          c.totalFocus,
		FocusSessions:           append([]model.FocusSession{}, c.sessions...),
		CurrentSessionStart:     c.sessionStart,
		CurrentSessionRestStart: c.sessionRestStart,
		CurrentSessionRestTime:  c.sessionRestTime,
		IsCountdownMode:         c.countdown,
		CountdownDuration:       c.countdownMinutes,
		CountdownSeconds:        c.remaining,
	}
}

func (c *Controller) Start(ctx context.Context) error {
	if c.taskID == "" {
		return ErrNoTask
	}
	if c.phase != phaseIdle {
		return ErrAlreadyRunning
	}

	active, err := c.store.ActiveTask(ctx, c.taskID)
	if err != nil {
		return fmt.Errorf("check active task: %w", err)
	}
	if active != nil {
		return &ConflictError{Active: *active}
	}

	c.sessionStart = c.seconds
	c.sessionRestTime = 0
	if c.countdown {
		c.remaining = c.countdownMinutes * 60
	}
	c.sessions = append(c.sessions, model.FocusSession{CompletedDate: c.now()})
	c.transition(phaseFocus)
	return c.persist(ctx)
}

// Tick advances the timer by one second. A countdown that runs out stops
// the timer without completing the task.
func (c *Controller) Tick(ctx context.Context) error {
	switch c.phase {
	case phaseRest:
		c.currentRest++
		return nil
	case phaseFocus:
	default:
		return nil
	}

	c.seconds++
	c.totalFocus++
	if n := len(c.sessions); n > 0 {
		c.sessions[n-1].FocusDuration++
	}
	if !c.countdown {
		return nil
	}

	c.remaining--
	if c.remaining > 0 {
		return nil
	}
	c.remaining = 0
	c.halt()
	c.transition(phaseIdle)
	return c.persist(ctx)
}

func (c *Controller) ToggleRest(ctx context.Context) error {
	switch c.phase {
	case phaseFocus:
		return c.EnterRest(ctx)
	case phaseRest:
		return c.ExitRest(ctx)
	default:
		return ErrNotRunning
	}
}

func (c *Controller) EnterRest(ctx context.Context) error {
	if c.phase != phaseFocus {
		return ErrNotRunning
	}
	if err := c.debounce(); err != nil {
		return err
	}

	c.currentRest = 0
	c.restCount++
	c.sessionRestStart = c.restSeconds
	c.transition(phaseRest)
	return c.persist(ctx)
}

func (c *Controller) ExitRest(ctx context.Context) error {
	if c.phase != phaseRest {
		return ErrNotRunning
	}
	if err := c.debounce(); err != nil {
		return err
	}

	c.foldRest()
	c.transition(phaseFocus)
	return c.persist(ctx)
}

// foldRest adds the current rest interval to the rest totals.
func (c *Controller) foldRest() {
	c.restSeconds += c.currentRest
	c.sessionRestTime += c.currentRest
	if n := len(c.sessions); n > 0 {
		c.sessions[n-1].RestDuration += c.currentRest
	}
	c.currentRest = 0
}

// PauseNeedsConfirmation reports whether Pause should be confirmed first.
func (c *Controller) PauseNeedsConfirmation() bool {
	return c.phase == phaseFocus && !c.skipPauseWarning
}

// SetDefaultCountdown changes the countdown minutes given to tasks loaded
// without a stored countdown. Out of range values are ignored.
func (c *Controller) SetDefaultCountdown(minutes int) {
	if minutes < MinCountdownMinutes || minutes > MaxCountdownMinutes {
		return
	}
	c.defaultCountdown = minutes
}

// SkipPauseWarning records the "don't show again" answer.
func (c *Controller) SkipPauseWarning(skip bool) {
	c.skipPauseWarning = skip
}

// Pause stops the timer and drops the current run's elapsed time. Time
// already counted into the totals stays.
func (c *Controller) Pause(ctx context.Context) error {
	if c.phase == phaseIdle {
		return ErrNotRunning
	}

	c.halt()
	c.seconds = 0
	c.sessionStart = 0
	c.sessionRestTime = 0
	c.currentRest = 0
	c.transition(phaseIdle)
	return c.persist(ctx)
}

// Complete ends the run and returns its elapsed focus seconds. The caller
// turns the task into a history entry.
func (c *Controller) Complete(ctx context.Context) (int, error) {
	if c.taskID == "" {
		return 0, ErrNoTask
	}

	duration := c.seconds
	c.halt()
	if c.phase == phaseRest {
		c.foldRest()
	}
	c.seconds = 0
	c.sessionStart = 0
	c.sessionRestTime = 0
	c.currentRest = 0
	c.remaining = 0
	c.transition(phaseIdle)
	if err := c.persist(ctx); err != nil {
		return 0, err
	}
	return duration, nil
}

// LeaveNeedsConfirmation reports whether leaving the timer view should
// prompt: only while focus time is being counted.
func (c *Controller) LeaveNeedsConfirmation() bool {
	return c.phase == phaseFocus
}

// Leave applies the user's answer to the leave prompt and reports whether
// the view should actually be left.
func (c *Controller) Leave(ctx context.Context, choice LeaveChoice) (bool, error) {
	if !c.LeaveNeedsConfirmation() {
		return true, c.Suspend(ctx)
	}

	switch choice {
	case LeaveTakeRest:
		return false, c.EnterRest(ctx)
	case LeaveAnyway:
		if err := c.Pause(ctx); err != nil {
			return false, err
		}
		return true, c.Suspend(ctx)
	default:
		return false, nil
	}
}

// Suspend stops ticking and writes the snapshot so the task can be resumed
// later, possibly mid-session. An idle timer has nothing unsaved.
func (c *Controller) Suspend(ctx context.Context) error {
	c.halt()
	if c.phase == phaseIdle {
		return nil
	}
	return c.persist(ctx)
}

func (c *Controller) SetCountdown(ctx context.Context, enabled bool, minutes int) error {
	if c.phase != phaseIdle {
		return ErrAlreadyRunning
	}
	if minutes < MinCountdownMinutes || minutes > MaxCountdownMinutes {
		return ErrInvalidCountdown
	}
	c.countdown = enabled
	c.countdownMinutes = minutes
	return c.persist(ctx)
}

func (c *Controller) debounce() error {
	now := c.now()
	if !c.lastToggle.IsZero() && now.Sub(c.lastToggle) < TransitionWindow {
		return ErrTransitioning
	}
	c.lastToggle = now
	return nil
}

func (c *Controller) halt() {
	if c.stopTicks != nil {
		c.stopTicks()
	}
}

func (c *Controller) transition(next phase) {
	prev := c.State()
	c.phase = next
	c.logger.Debug("timer transition", "task", c.taskID, "from", prev.String(), "to", c.State().String())
}

func (c *Controller) persist(ctx context.Context) error {
	if c.taskID == "" {
		return nil
	}
	if _, err := c.store.SaveTimerState(ctx, c.taskID, c.Snapshot()); err != nil {
		return fmt.Errorf("persist timer state: %w", err)
	}
	return nil
}
