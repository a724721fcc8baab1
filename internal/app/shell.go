package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/config"
	"github.com/Joseda-hg/lazyfocus/internal/db"
	"github.com/Joseda-hg/lazyfocus/internal/history"
	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/Joseda-hg/lazyfocus/internal/timer"
)

var ErrInvalidInput = errors.New("task name is required")

const AnonymousTaskName = "Anonymous"

type Page int

const (
	PageHome Page = iota
	PageStart
	PageTimer
	PageHistory
	PageSettings
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageStart:
		return "start"
	case PageTimer:
		return "timer"
	case PageHistory:
		return "history"
	case PageSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// NavPages are the pages reachable from the bottom navigation.
var NavPages = []Page{PageHome, PageHistory, PageSettings}

type Options struct {
	Settings     config.Settings
	SaveSettings func(config.Settings) error
	Logger       *slog.Logger
	Now          func() time.Time
	Location     *time.Location
	TickInterval time.Duration
}

// Shell holds the task store and the current task, and threads calls
// between the views, the store and the timer. Views get it through the
// narrow interfaces in views.go.
type Shell struct {
	mu           sync.Mutex
	store        *db.Store
	runner       *timer.Runner
	logger       *slog.Logger
	now          func() time.Time
	loc          *time.Location
	settings     config.Settings
	saveSettings func(config.Settings) error

	page      Page
	currentID string
	editingID string
}

func New(store *db.Store, opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	settings := opts.Settings
	settings.Validate()

	ctrl := timer.NewController(store, timer.Options{
		CountdownMinutes: settings.CountdownMinutes,
		SkipPauseWarning: settings.SkipPauseWarning,
		Now:              now,
		Logger:           logger,
	})

	return &Shell{
		store:        store,
		runner:       timer.NewRunner(ctrl, opts.TickInterval, logger),
		logger:       logger,
		now:          now,
		loc:          loc,
		settings:     settings,
		saveSettings: opts.SaveSettings,
		page:         PageHome,
	}
}

// OnTick registers the redraw hook fired after every timer tick.
func (s *Shell) OnTick(fn func(timer.State)) {
	s.runner.SetOnTick(fn)
}

func (s *Shell) Close(ctx context.Context) error {
	err := s.runner.Unload(ctx)
	s.runner.Close()
	return err
}

func (s *Shell) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Shell) setPage(page Page) {
	s.logger.Debug("navigate", "from", s.page.String(), "to", page.String())
	s.page = page
}

// Navigate switches between the bottom navigation pages. Other pages are
// only reachable through their own actions.
func (s *Shell) Navigate(page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, nav := range NavPages {
		if nav == page {
			s.setPage(page)
			return
		}
	}
}

// Tasks lists the active tasks. The task loaded in the timer carries its
// live snapshot rather than the one last stored.
func (s *Shell) Tasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		s.withLive(&tasks[i])
	}
	return tasks, nil
}

func (s *Shell) Task(ctx context.Context, taskID string) (model.Task, bool, error) {
	task, found, err := s.store.GetTask(ctx, taskID)
	if err != nil || !found {
		return task, found, err
	}
	s.withLive(&task)
	return task, true, nil
}

// ActiveTask returns the running task, if any, with live counters.
func (s *Shell) ActiveTask(ctx context.Context) (*model.Task, error) {
	active, err := s.store.ActiveTask(ctx, "")
	if err != nil || active == nil {
		return active, err
	}
	s.withLive(active)
	return active, nil
}

// withLive swaps in the timer's in-memory snapshot. Tasks that were never
// started keep their empty state.
func (s *Shell) withLive(task *model.Task) {
	if task.TimerState == nil {
		return
	}
	if snap, ok := s.runner.LiveSnapshot(task.ID); ok {
		task.TimerState = snap
		task.TotalFocusTime = snap.TotalFocusTime
	}
}

func (s *Shell) Completed(ctx context.Context) ([]model.CompletedTask, error) {
	return s.store.ListCompleted(ctx)
}

func (s *Shell) AddTask() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = ""
	s.setPage(PageStart)
}

func (s *Shell) EditTask(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = taskID
	s.setPage(PageStart)
}

// EditingTask returns the task open on the start page, if it is in edit mode.
func (s *Shell) EditingTask(ctx context.Context) (model.Task, bool, error) {
	s.mu.Lock()
	id := s.editingID
	s.mu.Unlock()
	if id == "" {
		return model.Task{}, false, nil
	}
	return s.store.GetTask(ctx, id)
}

func (s *Shell) BackFromStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = ""
	s.setPage(PageHome)
}

// CreateTask adds a task and opens its timer.
func (s *Shell) CreateTask(ctx context.Context, name, description string) (model.Task, error) {
	if strings.TrimSpace(name) == "" {
		return model.Task{}, ErrInvalidInput
	}
	task, err := s.store.AddTask(ctx, db.TaskInput{Name: name, Description: description})
	if err != nil {
		return model.Task{}, err
	}
	if err := s.OpenTimer(ctx, task.ID); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *Shell) UpdateTask(ctx context.Context, taskID, name, description string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	if _, err := s.store.UpdateTask(ctx, taskID, db.TaskInput{Name: name, Description: description}); err != nil {
		return err
	}
	s.BackFromStart()
	return nil
}

func (s *Shell) StartWithoutTask(ctx context.Context) (model.Task, error) {
	return s.CreateTask(ctx, AnonymousTaskName, "")
}

// OpenTimer suspends whatever task the timer holds and hydrates it from the
// requested task's stored snapshot. Unknown ids leave the shell unchanged.
func (s *Shell) OpenTimer(ctx context.Context, taskID string) error {
	task, found, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if current := s.runner.TaskID(); current != "" && current != taskID {
		if err := s.runner.Unload(ctx); err != nil {
			return fmt.Errorf("suspend timer: %w", err)
		}
	}
	if s.runner.TaskID() != taskID {
		s.runner.Load(task)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = taskID
	s.editingID = ""
	s.setPage(PageTimer)
	return nil
}

func (s *Shell) CurrentTask(ctx context.Context) (model.Task, bool, error) {
	s.mu.Lock()
	id := s.currentID
	s.mu.Unlock()
	if id == "" {
		return model.Task{}, false, nil
	}
	return s.Task(ctx, id)
}

func (s *Shell) TimerState() timer.State {
	return s.runner.State()
}

func (s *Shell) TimerSnapshot() *model.TimerState {
	return s.runner.Snapshot()
}

// Start begins a focus run on the current task. A *timer.ConflictError
// names the task that is already running.
func (s *Shell) Start(ctx context.Context) error {
	return s.runner.Start(ctx)
}

func (s *Shell) ToggleRest(ctx context.Context) error {
	return s.runner.ToggleRest(ctx)
}

func (s *Shell) PauseNeedsConfirmation() bool {
	return s.runner.PauseNeedsConfirmation()
}

func (s *Shell) Pause(ctx context.Context) error {
	return s.runner.Pause(ctx)
}

// SkipPauseWarning stores the "don't show again" answer in the settings.
func (s *Shell) SkipPauseWarning() error {
	settings := s.Settings()
	settings.SkipPauseWarning = true
	return s.SaveSettings(settings)
}

func (s *Shell) SetCountdown(ctx context.Context, enabled bool, minutes int) error {
	return s.runner.SetCountdown(ctx, enabled, minutes)
}

// RestDue reports whether the current focus session has reached the
// configured rest interval.
func (s *Shell) RestDue() bool {
	interval := int(s.Settings().RestInterval() / time.Second)
	if interval <= 0 {
		return false
	}
	if state := s.runner.State(); state != timer.FocusRunning && state != timer.CountdownFocusRunning {
		return false
	}
	snap := s.runner.Snapshot()
	return snap.Seconds-snap.CurrentSessionStart >= interval
}

func (s *Shell) LeaveNeedsConfirmation() bool {
	return s.runner.LeaveNeedsConfirmation()
}

// BackFromTimer applies the leave choice and returns home when the timer
// lets go. It reports whether the page changed.
func (s *Shell) BackFromTimer(ctx context.Context, choice timer.LeaveChoice) (bool, error) {
	left, err := s.runner.Leave(ctx, choice)
	if err != nil {
		return false, err
	}
	if !left {
		return false, nil
	}
	if err := s.runner.Unload(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = ""
	s.setPage(PageHome)
	return true, nil
}

// CompleteCurrent stops the timer and moves the current task into history
// with the run's elapsed focus time.
func (s *Shell) CompleteCurrent(ctx context.Context) (model.CompletedTask, error) {
	s.mu.Lock()
	id := s.currentID
	s.mu.Unlock()
	if id == "" {
		return model.CompletedTask{}, timer.ErrNoTask
	}

	duration, before, err := s.runner.Complete(ctx)
	if err != nil {
		return model.CompletedTask{}, err
	}
	return s.complete(ctx, id, duration, before)
}

// complete records the finished run. If the store refuses, the timer gets
// the run back as it was before completion.
func (s *Shell) complete(ctx context.Context, taskID string, duration int, before *model.TimerState) (model.CompletedTask, error) {
	completed, _, err := s.store.CompleteTask(ctx, taskID, duration, s.now())
	if err != nil {
		s.logger.Error("complete task", "task", taskID, "duration", duration, "err", err)
		restored := model.Task{ID: taskID, TotalFocusTime: before.TotalFocusTime, TimerState: before}
		if rerr := s.runner.Restore(ctx, restored); rerr != nil {
			s.logger.Error("restore timer", "task", taskID, "err", rerr)
		}
		return model.CompletedTask{}, fmt.Errorf("complete task: %w", err)
	}
	if err := s.runner.Unload(ctx); err != nil {
		s.logger.Warn("unload completed task", "task", taskID, "err", err)
	}
	s.logger.Info("task completed", "task", taskID, "duration", duration)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = ""
	s.setPage(PageHome)
	return completed, nil
}

// DeleteTask removes a task from the active list, stopping its timer first
// if it is the one loaded.
func (s *Shell) DeleteTask(ctx context.Context, taskID string) error {
	if s.runner.TaskID() == taskID {
		if err := s.runner.Pause(ctx); err != nil && !errors.Is(err, timer.ErrNotRunning) {
			return err
		}
		if err := s.runner.Unload(ctx); err != nil {
			return err
		}
	}
	if _, err := s.store.RemoveTask(ctx, taskID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID == taskID {
		s.currentID = ""
	}
	if s.editingID == taskID {
		s.editingID = ""
	}
	return nil
}

// History returns the completed tasks on day (all of them for a zero day)
// and that day's focus distribution per hour.
func (s *Shell) History(ctx context.Context, day time.Time) ([]model.CompletedTask, [24]int, error) {
	completed, err := s.store.ListCompleted(ctx)
	if err != nil {
		return nil, [24]int{}, err
	}
	return history.FilterByDate(completed, day, s.loc), history.HourlyDistribution(completed, day, s.loc), nil
}

func (s *Shell) Now() time.Time {
	return s.now()
}

func (s *Shell) Location() *time.Location {
	return s.loc
}

func (s *Shell) Settings() config.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SaveSettings validates and stores the settings, then hands them to the
// configured save hook.
func (s *Shell) SaveSettings(settings config.Settings) error {
	settings.Validate()

	s.mu.Lock()
	s.settings = settings
	save := s.saveSettings
	s.mu.Unlock()

	s.runner.SkipPauseWarning(settings.SkipPauseWarning)
	s.runner.SetDefaultCountdown(settings.CountdownMinutes)
	if save == nil {
		return nil
	}
	if err := save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
