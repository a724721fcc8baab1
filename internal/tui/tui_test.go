package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/app"
	"github.com/Joseda-hg/lazyfocus/internal/config"
	"github.com/Joseda-hg/lazyfocus/internal/db"
	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/Joseda-hg/lazyfocus/internal/timer"
)

func TestAddTaskFormOpensTimer(t *testing.T) {
	ui, store, cleanup := newTestUI(t)
	defer cleanup()

	if err := ui.addTask(nil, nil); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if ui.shell.Page() != app.PageStart || ui.form == nil {
		t.Fatalf("expected start page with a form")
	}

	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit empty form: %v", err)
	}
	if ui.status == "" || ui.shell.Page() != app.PageStart {
		t.Fatalf("expected empty name to be refused, status=%q page=%s", ui.status, ui.shell.Page())
	}

	ui.form.fields[fieldName].Value = "Write report"
	ui.form.fields[fieldDescription].Value = "quarterly"
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit form: %v", err)
	}
	if ui.shell.Page() != app.PageTimer {
		t.Fatalf("expected timer page, got %s", ui.shell.Page())
	}

	tasks, err := store.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Write report" || tasks[0].Description != "quarterly" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestEditTaskPrefillsForm(t *testing.T) {
	ui, store, cleanup := newTestUI(t)
	defer cleanup()

	if _, err := store.AddTask(context.Background(), db.TaskInput{Name: "Draft", Description: "notes"}); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := ui.loadTasks(); err != nil {
		t.Fatalf("load tasks: %v", err)
	}

	if err := ui.editTask(nil, nil); err != nil {
		t.Fatalf("edit task: %v", err)
	}
	if ui.form == nil || ui.form.taskID == "" || ui.form.fields[fieldName].Value != "Draft" {
		t.Fatalf("expected form prefilled from task, got %+v", ui.form)
	}

	ui.form.fields[fieldName].Value = "Final"
	if err := ui.submitForm(nil, nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ui.shell.Page() != app.PageHome {
		t.Fatalf("expected home page after edit, got %s", ui.shell.Page())
	}
	tasks, _ := store.ListTasks(context.Background())
	if tasks[0].Name != "Final" {
		t.Fatalf("expected renamed task, got %q", tasks[0].Name)
	}
}

func TestPauseConfirmationDontShowAgain(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()

	if _, err := ui.shell.CreateTask(context.Background(), "Focus", ""); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := ui.startOrPause(nil, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if ui.shell.TimerState() != timer.FocusRunning {
		t.Fatalf("expected focus running, got %s", ui.shell.TimerState())
	}

	if err := ui.startOrPause(nil, nil); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if ui.modal != modalPauseConfirm {
		t.Fatalf("expected pause confirmation modal")
	}
	_ = ui.answerModal('d')
	_ = ui.answerModal('y')

	if ui.modal != modalNone {
		t.Fatalf("expected modal to close")
	}
	if ui.shell.TimerState() != timer.Idle {
		t.Fatalf("expected timer to pause, got %s", ui.shell.TimerState())
	}
	if !ui.shell.Settings().SkipPauseWarning {
		t.Fatalf("expected don't show again to be stored")
	}

	_ = ui.startOrPause(nil, nil)
	_ = ui.startOrPause(nil, nil)
	if ui.modal != modalNone || ui.shell.TimerState() != timer.Idle {
		t.Fatalf("expected second pause to skip the confirmation")
	}
}

func TestActiveTaskConflictOffersJump(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()
	ctx := context.Background()

	first, _ := ui.shell.CreateTask(ctx, "First", "")
	_ = ui.startOrPause(nil, nil)
	_ = ui.backFromTimer(nil, nil)
	if ui.modal != modalLeaveConfirm {
		t.Fatalf("expected leave confirmation while focusing")
	}
	_ = ui.answerModal('r')
	if ui.shell.TimerState() != timer.Resting || ui.shell.Page() != app.PageTimer {
		t.Fatalf("expected take rest to stay on the timer resting")
	}
	_ = ui.backFromTimer(nil, nil)
	if ui.shell.Page() != app.PageHome {
		t.Fatalf("expected resting timer to leave without prompt")
	}

	_, _ = ui.shell.CreateTask(ctx, "Second", "")
	_ = ui.startOrPause(nil, nil)
	if ui.modal != modalActiveTask || ui.modalTask == nil || ui.modalTask.ID != first.ID {
		t.Fatalf("expected active task modal naming the first task")
	}

	_ = ui.answerModal('g')
	current, ok, _ := ui.shell.CurrentTask(ctx)
	if !ok || current.ID != first.ID {
		t.Fatalf("expected jump to the running task")
	}
}

func TestLeaveAnywayPausesAndGoesHome(t *testing.T) {
	ui, store, cleanup := newTestUI(t)
	defer cleanup()

	task, _ := ui.shell.CreateTask(context.Background(), "Focus", "")
	_ = ui.startOrPause(nil, nil)
	_ = ui.backFromTimer(nil, nil)
	_ = ui.answerModal('l')

	if ui.shell.Page() != app.PageHome {
		t.Fatalf("expected home page, got %s", ui.shell.Page())
	}
	stored, _, _ := store.GetTask(context.Background(), task.ID)
	if stored.IsRunning() {
		t.Fatalf("expected leave anyway to pause the task")
	}
}

func TestCompleteMovesTaskToHistory(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()

	_, _ = ui.shell.CreateTask(context.Background(), "Write report", "")
	_ = ui.startOrPause(nil, nil)
	if err := ui.complete(nil, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ui.shell.Page() != app.PageHome {
		t.Fatalf("expected home after complete")
	}

	ui.shell.Navigate(app.PageHistory)
	if err := ui.loadHistory(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(ui.completed) != 1 || ui.completed[0].Name != "Write report" {
		t.Fatalf("unexpected history: %+v", ui.completed)
	}

	_ = ui.toggleExpand(nil, nil)
	if !ui.expanded[ui.completed[0].ID] {
		t.Fatalf("expected entry to expand")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	ui, store, cleanup := newTestUI(t)
	defer cleanup()

	_, _ = store.AddTask(context.Background(), db.TaskInput{Name: "Throwaway"})
	_ = ui.loadTasks()

	_ = ui.askDelete(nil, nil)
	_ = ui.answerModal('n')
	tasks, _ := store.ListTasks(context.Background())
	if len(tasks) != 1 {
		t.Fatalf("expected cancel to keep the task")
	}

	_ = ui.askDelete(nil, nil)
	_ = ui.answerModal('y')
	tasks, _ = store.ListTasks(context.Background())
	if len(tasks) != 0 || len(ui.tasks) != 0 {
		t.Fatalf("expected task to be deleted")
	}
}

func TestCountdownAdjustments(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()

	_, _ = ui.shell.CreateTask(context.Background(), "Focus", "")
	_ = ui.toggleCountdown(nil, nil)
	_ = ui.adjustCountdown(5)(nil, nil)

	snap := ui.shell.TimerSnapshot()
	if !snap.IsCountdownMode || snap.CountdownDuration != 30 {
		t.Fatalf("expected 30 minute countdown, got %+v", snap)
	}

	for i := 0; i < 50; i++ {
		_ = ui.adjustCountdown(-5)(nil, nil)
	}
	if got := ui.shell.TimerSnapshot().CountdownDuration; got != 1 {
		t.Fatalf("expected countdown to clamp at 1, got %d", got)
	}

	_ = ui.startOrPause(nil, nil)
	if ui.shell.TimerState() != timer.CountdownFocusRunning {
		t.Fatalf("expected countdown state, got %s", ui.shell.TimerState())
	}
	_ = ui.adjustCountdown(5)(nil, nil)
	if ui.status == "" {
		t.Fatalf("expected changing countdown while running to be refused")
	}
}

func TestSettingsFormValidation(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()

	ui.shell.Navigate(app.PageSettings)
	ui.ensureSettings()
	ui.settings.fields[settingRestMinutes].Value = "45"
	_ = ui.submitSettings(nil, nil)
	if ui.status == "" || ui.shell.Settings().DefaultRestMinutes != config.DefaultRestMinutes {
		t.Fatalf("expected out of range rest minutes to be refused")
	}

	ui.settings.fields[settingRestMinutes].Value = "10"
	ui.settings.fields[settingNotifications].Value = formatToggle(true)
	_ = ui.submitSettings(nil, nil)
	settings := ui.shell.Settings()
	if settings.DefaultRestMinutes != 10 || !settings.NotificationsEnabled {
		t.Fatalf("expected settings to be saved, got %+v", settings)
	}
}

func TestSettingsTurnPauseWarningBackOn(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()

	if err := ui.shell.SkipPauseWarning(); err != nil {
		t.Fatalf("skip pause warning: %v", err)
	}

	ui.shell.Navigate(app.PageSettings)
	ui.ensureSettings()
	if got := ui.settings.fields[settingPauseWarning].Value; got != formatToggle(false) {
		t.Fatalf("expected pause warning shown as off, got %q", got)
	}

	ui.settings.fields[settingPauseWarning].Value = formatToggle(true)
	_ = ui.submitSettings(nil, nil)
	if ui.shell.Settings().SkipPauseWarning {
		t.Fatalf("expected pause warning to be re-enabled")
	}

	_, _ = ui.shell.CreateTask(context.Background(), "Focus", "")
	_ = ui.startOrPause(nil, nil)
	_ = ui.startOrPause(nil, nil)
	if ui.modal != modalPauseConfirm {
		t.Fatalf("expected pause confirmation to be back")
	}
}

func TestDateFilter(t *testing.T) {
	ui, _, cleanup := newTestUI(t)
	defer cleanup()

	ui.modal = modalDateFilter
	_ = ui.applyDateFilter("not a date")
	if ui.modal != modalDateFilter || ui.status == "" {
		t.Fatalf("expected invalid date to keep the filter open")
	}

	_ = ui.applyDateFilter("2024-03-15")
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	if ui.modal != modalNone || !ui.historyDay.Equal(want) {
		t.Fatalf("expected filter day %v, got %v", want, ui.historyDay)
	}

	_ = ui.shiftDay(1)(nil, nil)
	if !ui.historyDay.Equal(want.AddDate(0, 0, 1)) {
		t.Fatalf("expected next day, got %v", ui.historyDay)
	}
	_ = ui.clearDateFilter(nil, nil)
	if !ui.historyDay.IsZero() {
		t.Fatalf("expected filter to clear")
	}
}

func TestFormatTaskSummaryMarksState(t *testing.T) {
	cases := []struct {
		name  string
		state *model.TimerState
		want  string
	}{
		{"new", nil, "  Task | 0 min"},
		{"running", &model.TimerState{IsRunning: true}, "● Task | 0 min"},
		{"resting", &model.TimerState{IsRunning: true, IsResting: true}, "~ Task | 0 min"},
		{"paused", &model.TimerState{}, "○ Task | 0 min"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatTaskSummary(model.Task{Name: "Task", TimerState: tc.state})
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func newTestUI(t *testing.T) (*UI, *db.Store, func()) {
	t.Helper()
	dbConn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := db.NewStore(dbConn)
	shell := app.New(store, app.Options{Settings: config.DefaultSettings(), TickInterval: time.Hour})
	return newUI(shell), store, func() {
		_ = shell.Close(context.Background())
		_ = dbConn.Close()
	}
}
