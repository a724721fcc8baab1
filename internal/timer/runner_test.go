package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/model"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestRunnerTicksUntilPaused(t *testing.T) {
	ctrl, _, _ := newTestController(t, model.Task{ID: "a"})
	runner := NewRunner(ctrl, 5*time.Millisecond, nil)
	defer runner.Close()

	var ticks atomic.Int32
	runner.SetOnTick(func(State) { ticks.Add(1) })

	runner.Load(model.Task{ID: "a"})
	if runner.Ticking() {
		t.Fatalf("expected idle task not to tick")
	}
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return runner.Snapshot().Seconds >= 3 })

	if err := runner.Pause(context.Background()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if runner.Ticking() {
		t.Fatalf("expected pause to stop the ticker")
	}

	// Let a callback from a tick that finished before the pause drain.
	time.Sleep(10 * time.Millisecond)
	seen := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if got := runner.Snapshot().Seconds; got != 0 {
		t.Fatalf("expected no ticks after pause, got %d seconds", got)
	}
	if ticks.Load() != seen {
		t.Fatalf("expected OnTick to stop after pause")
	}
}

func TestRunnerLoadResumesRunningTask(t *testing.T) {
	stored := model.Task{ID: "a", TimerState: &model.TimerState{IsRunning: true, Seconds: 10}}
	ctrl, _, _ := newTestController(t, stored)
	runner := NewRunner(ctrl, 5*time.Millisecond, nil)
	defer runner.Close()

	runner.Load(stored)
	if !runner.Ticking() {
		t.Fatalf("expected running snapshot to resume ticking")
	}
	waitFor(t, func() bool { return runner.Snapshot().Seconds > 10 })

	if err := runner.Suspend(context.Background()); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if runner.Ticking() {
		t.Fatalf("expected suspend to stop ticking")
	}
	if runner.State() != FocusRunning {
		t.Fatalf("expected suspend to keep the running state, got %s", runner.State())
	}
}

func TestRunnerCountdownStopsTicker(t *testing.T) {
	stored := model.Task{ID: "a", TimerState: &model.TimerState{
		IsRunning:         true,
		IsCountdownMode:   true,
		CountdownDuration: 1,
		CountdownSeconds:  2,
	}}
	ctrl, store, _ := newTestController(t, stored)
	runner := NewRunner(ctrl, 5*time.Millisecond, nil)
	defer runner.Close()

	runner.Load(stored)
	waitFor(t, func() bool { return runner.State() == Idle })

	if runner.Ticking() {
		t.Fatalf("expected auto-stop to stop the ticker")
	}
	if got := runner.Snapshot().Seconds; got != 2 {
		t.Fatalf("expected exactly 2 ticks, got %d", got)
	}
	if store.tasks["a"].IsRunning() {
		t.Fatalf("expected auto-stop to be persisted")
	}
}
