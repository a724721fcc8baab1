package tui

import (
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazyfocus/internal/history"
	"github.com/Joseda-hg/lazyfocus/internal/timer"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

func (u *UI) modalKey(key rune) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		return u.answerModal(key)
	}
}

// answerModal applies a key press to the open modal. Esc and n always
// dismiss without side effects.
func (u *UI) answerModal(key rune) error {
	kind := u.modal
	if key == keyEsc || key == 'n' || key == 'q' {
		u.dismiss()
		return nil
	}

	switch kind {
	case modalPauseConfirm:
		switch key {
		case 'd':
			u.skipPause = !u.skipPause
		case 'y':
			skip := u.skipPause
			u.dismiss()
			if skip {
				if err := u.focus.SkipPauseWarning(); err != nil {
					u.status = err.Error()
				}
			}
			return u.report(u.focus.Pause(u.ctx))
		}
	case modalLeaveConfirm:
		choice := timer.LeaveCancel
		switch key {
		case 'r':
			choice = timer.LeaveTakeRest
		case 'l':
			choice = timer.LeaveAnyway
		default:
			return nil
		}
		u.dismiss()
		_, err := u.focus.BackFromTimer(u.ctx, choice)
		return u.report(err)
	case modalActiveTask:
		if key != 'g' || u.modalTask == nil {
			return nil
		}
		target := u.modalTask.ID
		u.dismiss()
		return u.report(u.focus.OpenTimer(u.ctx, target))
	case modalDeleteConfirm:
		if key != 'y' || u.modalTask == nil {
			return nil
		}
		target := u.modalTask.ID
		u.dismiss()
		if err := u.home.DeleteTask(u.ctx, target); err != nil {
			return u.report(err)
		}
		u.refreshTasks()
	case modalSessions, modalHelp:
		u.dismiss()
	}
	return nil
}

func (u *UI) closeModal(_ *gocui.Gui, _ *gocui.View) error {
	u.dismiss()
	return nil
}

func (u *UI) dismiss() {
	u.modal = modalNone
	u.modalTask = nil
	u.skipPause = false
}

func (u *UI) openHelp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.modal = modalHelp
	return nil
}

func (u *UI) modalContent() (string, string) {
	switch u.modal {
	case modalPauseConfirm:
		check := "[ ]"
		if u.skipPause {
			check = "[x]"
		}
		return "Pause timer?", strings.Join([]string{
			"Pausing discards the focus time of the current run.",
			"Your total focus time is kept.",
			"",
			check + " d don't show again",
			"",
			"y pause | n cancel",
		}, "\n")
	case modalLeaveConfirm:
		rest := "Take a rest"
		if minutes := u.prefs.Settings().DefaultRestMinutes; minutes > 0 {
			rest = fmt.Sprintf("Take a %d-minute rest", minutes)
		}
		return "Leave the timer?", strings.Join([]string{
			"The timer is still running.",
			"",
			"r " + rest,
			"l Leave anyway (pauses the timer)",
			"n Cancel",
		}, "\n")
	case modalActiveTask:
		name := ""
		if u.modalTask != nil {
			name = u.modalTask.Name
		}
		return "Another task is active", strings.Join([]string{
			fmt.Sprintf("%q is already running.", name),
			"Only one task can run at a time.",
			"",
			"g go to that task | n cancel",
		}, "\n")
	case modalDeleteConfirm:
		name := ""
		if u.modalTask != nil {
			name = u.modalTask.Name
		}
		return "Delete task?", fmt.Sprintf("Delete %q? This cannot be undone.\n\ny delete | n cancel", name)
	case modalSessions:
		return "Focus sessions", formatSessions(u.focus.TimerSnapshot(), u.records.Now())
	case modalHelp:
		return "Help", helpText()
	default:
		return "", ""
	}
}

func (u *UI) showModal(gui *gocui.Gui) error {
	title, body := u.modalContent()
	lines := strings.Count(body, "\n") + 1

	maxX, maxY := gui.Size()
	width := min(max(50, maxX/2), maxX-2)
	height := min(lines+1, maxY-2)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewModal, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = title
	view.FrameColor = gocui.ColorYellow
	view.Clear()
	fmt.Fprint(view, body)
	_, _ = gui.SetViewOnTop(viewModal)
	return nil
}

func (u *UI) showDateFilter(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/3)
	height := 2
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	view, err := gui.SetView(viewDateFilter, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Filter date (YYYY-MM-DD)"
		view.Clear()
		day := u.historyDay
		if day.IsZero() {
			day = u.records.Now()
		}
		fmt.Fprint(view, day.In(u.records.Location()).Format(history.DayLayout))
		view.SetCursor(len(history.DayLayout), 0)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetViewOnTop(viewDateFilter)
	return nil
}

func helpText() string {
	return strings.Join([]string{
		"Pages:",
		"  1 Home | 2 History | 3 Settings",
		"",
		"Home:",
		"  j/k move | enter open timer | a add | e edit | d delete",
		"",
		"Start:",
		"  tab next field | enter save | ctrl+n start without task | esc back",
		"",
		"Timer:",
		"  space start/pause | r rest | c complete",
		"  t countdown on/off | +/- countdown minutes | s sessions | esc back",
		"",
		"History:",
		"  enter details | f filter date | [/] prev/next day | g clear filter",
		"",
		"esc/n close dialogs | q quit",
	}, "\n")
}
