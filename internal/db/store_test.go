package db

import (
	"context"
	"testing"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/model"
)

func TestAddTaskKeepsInsertionOrder(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, name := range []string{"First", "Second", "Third"} {
		if _, err := store.AddTask(ctx, TaskInput{Name: name}); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	tasks, err := store.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if tasks[i].Name != want {
			t.Fatalf("expected task %d to be %q, got %q", i, want, tasks[i].Name)
		}
		if tasks[i].ID == "" {
			t.Fatalf("expected task %d to have an id", i)
		}
		if tasks[i].TimerState != nil {
			t.Fatalf("expected new task to have no timer state")
		}
	}
}

func TestUpdateAndRemoveUnknownTaskAreNoOps(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created, err := store.AddTask(ctx, TaskInput{Name: "Keep me"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	found, err := store.UpdateTask(ctx, "missing", TaskInput{Name: "Other"})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if found {
		t.Fatalf("expected update of missing id to report not found")
	}

	found, err = store.RemoveTask(ctx, "missing")
	if err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if found {
		t.Fatalf("expected remove of missing id to report not found")
	}

	found, err = store.UpdateTask(ctx, created.ID, TaskInput{Name: " Renamed ", Description: "notes"})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !found {
		t.Fatalf("expected update to find task")
	}

	task, ok, err := store.GetTask(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("get task: ok=%v err=%v", ok, err)
	}
	if task.Name != "Renamed" || task.Description != "notes" {
		t.Fatalf("unexpected task after update: %+v", task)
	}

	if _, err := store.RemoveTask(ctx, created.ID); err != nil {
		t.Fatalf("remove task: %v", err)
	}
	tasks, err := store.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(tasks))
	}
}

func TestSaveTimerStateRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created, err := store.AddTask(ctx, TaskInput{Name: "Deep work"})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	started := time.Date(2024, 3, 15, 9, 30, 0, 0, time.Local)
	state := &model.TimerState{
		IsRunning:               true,
		IsResting:               true,
		Seconds:                 90,
		RestSeconds:             40,
		RestCount:               2,
		CurrentRestTimer:        7,
		TotalFocusTime:          300,
		FocusSessions:           []model.FocusSession{{CompletedDate: started, FocusDuration: 90, RestDuration: 40}},
		CurrentSessionRestStart: 40,
		CurrentSessionRestTime:  40,
		IsCountdownMode:         true,
		CountdownDuration:       25,
		CountdownSeconds:        1410,
	}

	if found, err := store.SaveTimerState(ctx, created.ID, state); err != nil || !found {
		t.Fatalf("save timer state: found=%v err=%v", found, err)
	}

	task, _, err := store.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.TotalFocusTime != 300 {
		t.Fatalf("expected total focus time 300, got %d", task.TotalFocusTime)
	}
	got := task.TimerState
	if got == nil {
		t.Fatalf("expected timer state to be stored")
	}
	if !got.IsRunning || !got.IsResting || got.Seconds != 90 || got.RestSeconds != 40 || got.RestCount != 2 ||
		got.CurrentRestTimer != 7 || got.CurrentSessionRestStart != 40 || got.CurrentSessionRestTime != 40 ||
		!got.IsCountdownMode || got.CountdownDuration != 25 || got.CountdownSeconds != 1410 {
		t.Fatalf("timer state did not round trip: %+v", got)
	}
	if len(got.FocusSessions) != 1 || !got.FocusSessions[0].CompletedDate.Equal(started) {
		t.Fatalf("focus sessions did not round trip: %+v", got.FocusSessions)
	}

	if _, err := store.SaveTimerState(ctx, created.ID, nil); err != nil {
		t.Fatalf("clear timer state: %v", err)
	}
	task, _, _ = store.GetTask(ctx, created.ID)
	if task.TimerState != nil {
		t.Fatalf("expected timer state to be cleared")
	}
}

func TestActiveTaskSkipsExcludedID(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	idle, _ := store.AddTask(ctx, TaskInput{Name: "Idle"})
	running, _ := store.AddTask(ctx, TaskInput{Name: "Running"})
	if _, err := store.SaveTimerState(ctx, running.ID, &model.TimerState{IsRunning: true}); err != nil {
		t.Fatalf("save timer state: %v", err)
	}

	active, err := store.ActiveTask(ctx, idle.ID)
	if err != nil {
		t.Fatalf("active task: %v", err)
	}
	if active == nil || active.ID != running.ID {
		t.Fatalf("expected running task to be active, got %+v", active)
	}

	active, err = store.ActiveTask(ctx, running.ID)
	if err != nil {
		t.Fatalf("active task: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no other active task, got %+v", active)
	}
}

func TestCompleteTaskPrependsHistory(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	ctx := context.Background()
	first, _ := store.AddTask(ctx, TaskInput{Name: "Write report"})
	second, _ := store.AddTask(ctx, TaskInput{Name: "Review"})

	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)
	completed, found, err := store.CompleteTask(ctx, first.ID, 125, at)
	if err != nil || !found {
		t.Fatalf("complete first: found=%v err=%v", found, err)
	}
	if completed.Duration != 125 || completed.ID != first.ID {
		t.Fatalf("unexpected completed task: %+v", completed)
	}
	if _, _, err := store.CompleteTask(ctx, second.ID, 60, at.Add(time.Hour)); err != nil {
		t.Fatalf("complete second: %v", err)
	}

	_, found, err = store.CompleteTask(ctx, "missing", 10, at)
	if err != nil {
		t.Fatalf("complete missing: %v", err)
	}
	if found {
		t.Fatalf("expected completing a missing task to be a no-op")
	}

	tasks, _ := store.ListTasks(ctx)
	if len(tasks) != 0 {
		t.Fatalf("expected active list to be empty, got %d", len(tasks))
	}

	history, err := store.ListCompleted(ctx)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("expected most recent completion first, got %q then %q", history[0].Name, history[1].Name)
	}
	if !history[1].CompletedAt.Equal(at) {
		t.Fatalf("expected completion time %v, got %v", at, history[1].CompletedAt)
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
