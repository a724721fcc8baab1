package timer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/model"
)

// Runner owns the tick source for a Controller. All controller access goes
// through the runner's mutex, and stopping the ticker happens under that
// mutex so no tick lands after a pause or completion has been persisted.
type Runner struct {
	mu       sync.Mutex
	ctrl     *Controller
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
	onTick   func(State)
}

func NewRunner(ctrl *Controller, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Runner{ctrl: ctrl, interval: interval, logger: logger}
	ctrl.stopTicks = r.stopLocked
	return r
}

// Load stops any running ticker, hydrates the controller and resumes ticking
// if the stored snapshot was mid-session.
func (r *Runner) Load(task model.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.ctrl.Load(task)
	if r.ctrl.State().Running() {
		r.startLocked()
	}
}

func (r *Runner) Unload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.ctrl.Suspend(ctx)
	r.ctrl.Unload()
	return err
}

func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ctrl.Start(ctx); err != nil {
		return err
	}
	r.startLocked()
	return nil
}

func (r *Runner) ToggleRest(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.ToggleRest(ctx)
}

func (r *Runner) Pause(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.Pause(ctx)
}

// Complete ends the run and returns its duration along with the snapshot
// taken just before, so a caller that fails to record the completion can
// hand it back to Restore.
func (r *Runner) Complete(ctx context.Context) (int, *model.TimerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := r.ctrl.Snapshot()
	duration, err := r.ctrl.Complete(ctx)
	if err != nil {
		return 0, nil, err
	}
	return duration, before, nil
}

// Restore reloads task, writes its snapshot back and resumes ticking if it
// was mid-session.
func (r *Runner) Restore(ctx context.Context, task model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.ctrl.Load(task)
	if r.ctrl.State().Running() {
		r.startLocked()
	}
	return r.ctrl.persist(ctx)
}

func (r *Runner) Leave(ctx context.Context, choice LeaveChoice) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.Leave(ctx, choice)
}

func (r *Runner) Suspend(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.Suspend(ctx)
}

func (r *Runner) SetCountdown(ctx context.Context, enabled bool, minutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.SetCountdown(ctx, enabled, minutes)
}

func (r *Runner) SkipPauseWarning(skip bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctrl.SkipPauseWarning(skip)
}

func (r *Runner) SetDefaultCountdown(minutes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctrl.SetDefaultCountdown(minutes)
}

func (r *Runner) PauseNeedsConfirmation() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.PauseNeedsConfirmation()
}

func (r *Runner) LeaveNeedsConfirmation() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.LeaveNeedsConfirmation()
}

func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.State()
}

func (r *Runner) TaskID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.TaskID()
}

func (r *Runner) Snapshot() *model.TimerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.Snapshot()
}

// LiveSnapshot returns the in-memory snapshot when taskID is the loaded
// task. Stored snapshots lag behind it by the ticks since the last
// transition.
func (r *Runner) LiveSnapshot(taskID string) (*model.TimerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if taskID == "" || r.ctrl.TaskID() != taskID {
		return nil, false
	}
	return r.ctrl.Snapshot(), true
}

// SetOnTick registers fn to be called, outside the lock, after every tick
// of the ticker.
func (r *Runner) SetOnTick(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = fn
}

// Tick advances the loaded timer by one second without waiting for the
// ticker.
func (r *Runner) Tick(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl.Tick(ctx)
}

// Ticking reports whether a tick goroutine is live.
func (r *Runner) Ticking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// Close stops the ticker and waits for its goroutine to exit.
func (r *Runner) Close() {
	r.mu.Lock()
	done := r.done
	r.stopLocked()
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (r *Runner) startLocked() {
	if r.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	r.stop = stop
	r.done = done
	ticker := time.NewTicker(r.interval)
	go r.loop(ticker, stop, done)
}

func (r *Runner) stopLocked() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	r.stop = nil
}

func (r *Runner) loop(ticker *time.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		r.mu.Lock()
		select {
		case <-stop:
			r.mu.Unlock()
			return
		default:
		}
		err := r.ctrl.Tick(context.Background())
		state := r.ctrl.State()
		onTick := r.onTick
		r.mu.Unlock()

		if err != nil {
			r.logger.Error("timer tick failed", "err", err)
		}
		if onTick != nil {
			onTick(state)
		}
	}
}
