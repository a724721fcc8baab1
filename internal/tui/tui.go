package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/app"
	"github.com/Joseda-hg/lazyfocus/internal/history"
	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/Joseda-hg/lazyfocus/internal/timer"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

const (
	viewHeader     = "header"
	viewFooter     = "footer"
	viewHome       = "home"
	viewStart      = "start"
	viewTimer      = "timer"
	viewHistory    = "history"
	viewSettings   = "settings"
	viewModal      = "modal"
	viewDateFilter = "dateFilter"
)

var pageViews = []string{viewHome, viewStart, viewTimer, viewHistory, viewSettings}

const keyEsc = '\x1b'

type modalKind int

const (
	modalNone modalKind = iota
	modalPauseConfirm
	modalLeaveConfirm
	modalActiveTask
	modalDeleteConfirm
	modalSessions
	modalDateFilter
	modalHelp
)

type UI struct {
	shell   *app.Shell
	home    app.HomeActions
	start   app.StartActions
	focus   app.TimerActions
	records app.HistorySource
	prefs   app.SettingsActions
	gui     *gocui.Gui
	ctx     context.Context

	tasks    []model.Task
	selected int

	completed       []model.CompletedTask
	hourly          [24]int
	historyDay      time.Time
	selectedHistory int
	expanded        map[string]bool

	form       *formState
	settings   *formState
	formEditor *formEditor

	modal     modalKind
	modalTask *model.Task
	skipPause bool
	status    string
}

type formEditor struct {
	ui *UI
}

func newUI(shell *app.Shell) *UI {
	ui := &UI{
		shell:    shell,
		home:     shell.HomeView(),
		start:    shell.StartView(),
		focus:    shell.TimerView(),
		records:  shell.HistoryView(),
		prefs:    shell.SettingsView(),
		ctx:      context.Background(),
		expanded: make(map[string]bool),
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

func Run(shell *app.Shell) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(shell)
	ui.gui = gui

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.loadTasks(); err != nil {
		return err
	}

	shell.OnTick(func(timer.State) {
		gui.Update(func(*gocui.Gui) error { return nil })
	})
	defer shell.OnTick(nil)

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

type binding struct {
	view    string
	key     any
	handler func(*gocui.Gui, *gocui.View) error
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []binding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", '?', u.openHelp},
		{"", '1', u.navigate(app.PageHome)},
		{"", '2', u.navigate(app.PageHistory)},
		{"", '3', u.navigate(app.PageSettings)},

		{viewHome, gocui.KeyArrowDown, u.moveDown},
		{viewHome, 'j', u.moveDown},
		{viewHome, gocui.KeyArrowUp, u.moveUp},
		{viewHome, 'k', u.moveUp},
		{viewHome, gocui.KeyEnter, u.openSelected},
		{viewHome, 'a', u.addTask},
		{viewHome, 'e', u.editTask},
		{viewHome, 'd', u.askDelete},

		{viewStart, gocui.KeyEnter, u.submitForm},
		{viewStart, gocui.KeyTab, u.nextFormField},
		{viewStart, gocui.KeyArrowDown, u.nextFormField},
		{viewStart, gocui.KeyArrowUp, u.prevFormField},
		{viewStart, gocui.KeyEsc, u.cancelForm},
		{viewStart, gocui.KeyCtrlN, u.startWithoutTask},

		{viewTimer, gocui.KeySpace, u.startOrPause},
		{viewTimer, 'r', u.toggleRest},
		{viewTimer, 'c', u.complete},
		{viewTimer, 't', u.toggleCountdown},
		{viewTimer, '+', u.adjustCountdown(5)},
		{viewTimer, '-', u.adjustCountdown(-5)},
		{viewTimer, 's', u.showSessions},
		{viewTimer, gocui.KeyEsc, u.backFromTimer},
		{viewTimer, 'b', u.backFromTimer},

		{viewHistory, gocui.KeyArrowDown, u.moveDown},
		{viewHistory, 'j', u.moveDown},
		{viewHistory, gocui.KeyArrowUp, u.moveUp},
		{viewHistory, 'k', u.moveUp},
		{viewHistory, gocui.KeyEnter, u.toggleExpand},
		{viewHistory, 'f', u.openDateFilter},
		{viewHistory, 'g', u.clearDateFilter},
		{viewHistory, '[', u.shiftDay(-1)},
		{viewHistory, ']', u.shiftDay(1)},

		{viewSettings, gocui.KeyEnter, u.submitSettings},
		{viewSettings, gocui.KeyTab, u.nextFormField},
		{viewSettings, gocui.KeyArrowDown, u.nextFormField},
		{viewSettings, gocui.KeyArrowUp, u.prevFormField},
		{viewSettings, gocui.KeyEsc, u.resetSettings},

		{viewDateFilter, gocui.KeyEnter, u.submitDateFilter},
		{viewDateFilter, gocui.KeyEsc, u.closeModal},
		{viewModal, gocui.KeyEsc, u.modalKey(keyEsc)},
	}
	for _, ch := range []rune{'y', 'n', 'd', 'r', 'l', 'g', 'q'} {
		bindings = append(bindings, binding{viewModal, ch, u.modalKey(ch)})
	}

	for _, b := range bindings {
		if err := gui.SetKeybinding(b.view, b.key, gocui.ModNone, b.handler); err != nil {
			return err
		}
	}
	return nil
}

func pageView(page app.Page) string {
	switch page {
	case app.PageStart:
		return viewStart
	case app.PageTimer:
		return viewTimer
	case app.PageHistory:
		return viewHistory
	case app.PageSettings:
		return viewSettings
	default:
		return viewHome
	}
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}

	page := u.shell.Page()
	name := pageView(page)
	for _, other := range pageViews {
		if other != name {
			_ = gui.DeleteView(other)
		}
	}

	body, err := gui.SetView(name, 0, bodyTop, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		body.Wrap = true
	}
	applyViewStyle(body, u.modal == modalNone, false)

	switch page {
	case app.PageHome:
		body.Title = "Tasks"
		u.refreshTasks()
		u.renderHome(body)
	case app.PageStart:
		u.ensureForm()
		body.Title = "New Task"
		if u.form != nil && u.form.taskID != "" {
			body.Title = "Edit Task"
		}
		body.Editable = true
		body.KeybindOnEdit = true
		body.Editor = u.formEditor
		u.renderForm(body, u.form)
	case app.PageTimer:
		body.Title = "Timer"
		u.renderTimer(body)
	case app.PageHistory:
		body.Title = "History"
		u.refreshHistory()
		u.renderHistory(body, maxX)
	case app.PageSettings:
		u.ensureSettings()
		body.Title = "Settings"
		body.Editable = true
		body.KeybindOnEdit = true
		body.Editor = u.formEditor
		u.renderForm(body, u.settings)
	}

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	target := name
	switch u.modal {
	case modalNone:
		_ = gui.DeleteView(viewModal)
		_ = gui.DeleteView(viewDateFilter)
	case modalDateFilter:
		_ = gui.DeleteView(viewModal)
		if err := u.showDateFilter(gui); err != nil {
			return err
		}
		target = viewDateFilter
	default:
		_ = gui.DeleteView(viewDateFilter)
		if err := u.showModal(gui); err != nil {
			return err
		}
		target = viewModal
	}

	if current := gui.CurrentView(); current == nil || current.Name() != target {
		_, _ = gui.SetCurrentView(target)
	}
	gui.Cursor = u.modal == modalDateFilter || (u.modal == modalNone && (page == app.PageStart || page == app.PageSettings))

	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	page := u.shell.Page()
	tabs := make([]string, 0, len(app.NavPages))
	for i, nav := range app.NavPages {
		label := fmt.Sprintf("%d %s", i+1, pageTitle(nav))
		if nav == page {
			label = "[" + label + "]"
		}
		tabs = append(tabs, label)
	}
	title := "lazyfocus"
	if page == app.PageStart || page == app.PageTimer {
		title += " > " + pageTitle(page)
	}
	fmt.Fprintf(view, "%s | %s", title, strings.Join(tabs, " "))
}

func pageTitle(page app.Page) string {
	switch page {
	case app.PageHome:
		return "Home"
	case app.PageStart:
		return "Start"
	case app.PageTimer:
		return "Timer"
	case app.PageHistory:
		return "History"
	case app.PageSettings:
		return "Settings"
	default:
		return ""
	}
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)

	switch u.shell.Page() {
	case app.PageHome:
		fmt.Fprintln(view, "enter open timer | a add | e edit | d delete | j/k move | 1-3 pages | ? help | q quit")
	case app.PageStart:
		fmt.Fprintln(view, "enter save | tab next field | ctrl+n start without task | esc back")
	case app.PageTimer:
		fmt.Fprintln(view, "space start/pause | r rest | c complete | t countdown | +/- minutes | s sessions | esc back")
	case app.PageHistory:
		fmt.Fprintln(view, "enter details | f filter date | [/] prev/next day | g clear filter | 1-3 pages | q quit")
	case app.PageSettings:
		fmt.Fprintln(view, "enter save | tab next field | space toggle | esc reset | 1-3 pages")
	}
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) refreshTasks() {
	if err := u.loadTasks(); err != nil {
		u.status = err.Error()
	}
}

func (u *UI) loadTasks() error {
	tasks, err := u.home.Tasks(u.ctx)
	if err != nil {
		return err
	}
	u.tasks = tasks
	if u.selected >= len(u.tasks) {
		u.selected = max(len(u.tasks)-1, 0)
	}
	return nil
}

func (u *UI) refreshHistory() {
	if err := u.loadHistory(); err != nil {
		u.status = err.Error()
	}
}

func (u *UI) loadHistory() error {
	completed, hourly, err := u.records.History(u.ctx, u.historyDay)
	if err != nil {
		return err
	}
	u.completed = completed
	u.hourly = hourly
	if u.selectedHistory >= len(u.completed) {
		u.selectedHistory = max(len(u.completed)-1, 0)
	}
	return nil
}

func (u *UI) renderHome(view *gocui.View) {
	view.Clear()
	if len(u.tasks) == 0 {
		fmt.Fprintln(view, "No tasks yet. Press a to add one.")
		return
	}
	for i, task := range u.tasks {
		prefix := " "
		if i == u.selected {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatTaskSummary(task))
	}
}

func (u *UI) renderTimer(view *gocui.View) {
	view.Clear()
	task, ok, err := u.focus.CurrentTask(u.ctx)
	if err != nil {
		fmt.Fprintln(view, err.Error())
		return
	}
	if !ok {
		fmt.Fprintln(view, "No task selected")
		return
	}

	state := u.focus.TimerState()
	snap := u.focus.TimerSnapshot()

	fmt.Fprintln(view, task.Name)
	if task.Description != "" {
		fmt.Fprintln(view, task.Description)
	}
	fmt.Fprintln(view)

	clock := history.Clock(snap.Seconds)
	switch {
	case state == timer.Resting:
		clock = history.Clock(snap.CurrentRestTimer)
	case state == timer.CountdownFocusRunning:
		clock = history.Clock(snap.CountdownSeconds)
	}
	fmt.Fprintf(view, "    %s    %s\n\n", clock, stateLabel(state))

	if snap.IsCountdownMode {
		fmt.Fprintf(view, "Time left: %s\n", history.Clock(snap.CountdownSeconds))
	} else {
		fmt.Fprintf(view, "Focus time: %s\n", history.Clock(snap.Seconds))
	}
	fmt.Fprintf(view, "Total focus: %s\n", history.Clock(snap.TotalFocusTime))
	fmt.Fprintf(view, "Rests: %d (%s)\n", snap.RestCount, history.Clock(snap.RestSeconds))
	fmt.Fprintf(view, "Countdown: %s, %s\n", formatToggle(snap.IsCountdownMode), history.Minutes(snap.CountdownDuration*60))
	fmt.Fprintf(view, "Sessions: %d\n", len(snap.FocusSessions))
	if u.focus.RestDue() {
		fmt.Fprintln(view, "\nRest interval reached. Press r to take a rest.")
	}
}

func stateLabel(state timer.State) string {
	switch state {
	case timer.FocusRunning:
		return "Focusing"
	case timer.CountdownFocusRunning:
		return "Focusing (countdown)"
	case timer.Resting:
		return "Resting"
	default:
		return "Ready"
	}
}

func (u *UI) renderHistory(view *gocui.View, width int) {
	view.Clear()
	now := u.records.Now()

	if u.historyDay.IsZero() {
		fmt.Fprintln(view, "Showing all completed tasks")
	} else {
		fmt.Fprintf(view, "Showing %s\n", u.historyDay.Format(history.DayLayout))
		for _, line := range formatHourly(u.hourly, width/3) {
			fmt.Fprintln(view, line)
		}
	}
	fmt.Fprintln(view)

	if len(u.completed) == 0 {
		fmt.Fprintln(view, "No completed tasks")
		return
	}
	for i, task := range u.completed {
		prefix := " "
		if i == u.selectedHistory {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatCompletedSummary(task))
		if u.expanded[task.ID] {
			for _, line := range formatCompletedDetail(task, now) {
				fmt.Fprintln(view, line)
			}
		}
	}
}

func (u *UI) renderForm(view *gocui.View, form *formState) {
	if form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range form.fields {
		prefix := "  "
		if index == form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	label := form.fields[form.index].Label + ": "
	cursorX := len([]rune(label)) + len([]rune(form.fields[form.index].Value)) + 2
	view.SetCursor(cursorX, form.index)
}

func (u *UI) activeForm() *formState {
	switch u.shell.Page() {
	case app.PageStart:
		return u.form
	case app.PageSettings:
		return u.settings
	default:
		return nil
	}
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	form := ui.activeForm()
	if form == nil || view == nil {
		return false
	}
	field := &form.fields[form.index]

	switch field.Kind {
	case fieldToggle:
		if key == gocui.KeySpace || key == gocui.KeyArrowLeft || key == gocui.KeyArrowRight {
			field.Value = formatToggle(field.Value != formatToggle(true))
		}
	case fieldNumber:
		switch key {
		case gocui.KeyBackspace, gocui.KeyBackspace2:
			field.Value = dropLast(field.Value)
		case gocui.KeyCtrlU:
			field.Value = ""
		}
		if ch >= '0' && ch <= '9' && mod == 0 {
			field.Value += string(ch)
		}
	default:
		switch key {
		case gocui.KeyBackspace, gocui.KeyBackspace2:
			field.Value = dropLast(field.Value)
		case gocui.KeySpace:
			field.Value += " "
		case gocui.KeyCtrlU:
			field.Value = ""
		}
		if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
			field.Value += string(ch)
		}
	}

	ui.renderForm(view, form)
	return true
}

func dropLast(value string) string {
	runes := []rune(value)
	if len(runes) == 0 {
		return value
	}
	return string(runes[:len(runes)-1])
}

func (u *UI) ensureForm() {
	if u.form != nil {
		return
	}
	editing, ok, err := u.start.EditingTask(u.ctx)
	if err != nil {
		u.status = err.Error()
	}
	if ok {
		u.form = &formState{taskID: editing.ID, fields: buildTaskFields(&editing)}
		return
	}
	u.form = &formState{fields: buildTaskFields(nil)}
}

func (u *UI) ensureSettings() {
	if u.settings == nil {
		u.settings = &formState{fields: buildSettingsFields(u.prefs.Settings())}
	}
}

func (u *UI) navigate(page app.Page) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.inputActive() {
			return nil
		}
		current := u.shell.Page()
		if current == app.PageStart || current == app.PageTimer {
			return nil
		}
		u.settings = nil
		u.status = ""
		u.shell.Navigate(page)
		return nil
	}
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	switch u.shell.Page() {
	case app.PageHome:
		u.selected = min(u.selected+1, max(len(u.tasks)-1, 0))
	case app.PageHistory:
		u.selectedHistory = min(u.selectedHistory+1, max(len(u.completed)-1, 0))
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	switch u.shell.Page() {
	case app.PageHome:
		u.selected = max(u.selected-1, 0)
	case app.PageHistory:
		u.selectedHistory = max(u.selectedHistory-1, 0)
	}
	return nil
}

func (u *UI) selectedTask() *model.Task {
	if u.selected < 0 || u.selected >= len(u.tasks) {
		return nil
	}
	return &u.tasks[u.selected]
}

func (u *UI) openSelected(_ *gocui.Gui, _ *gocui.View) error {
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.status = ""
	return u.report(u.home.OpenTimer(u.ctx, selected.ID))
}

func (u *UI) addTask(_ *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.home.AddTask()
	u.ensureForm()
	return nil
}

func (u *UI) editTask(_ *gocui.Gui, _ *gocui.View) error {
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	u.form = nil
	u.home.EditTask(selected.ID)
	u.ensureForm()
	return nil
}

func (u *UI) askDelete(_ *gocui.Gui, _ *gocui.View) error {
	selected := u.selectedTask()
	if selected == nil {
		return nil
	}
	task := *selected
	u.modalTask = &task
	u.modal = modalDeleteConfirm
	return nil
}

func (u *UI) submitForm(_ *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	name, description := parseTaskFields(u.form.fields)

	var err error
	if u.form.taskID == "" {
		_, err = u.start.CreateTask(u.ctx, name, description)
	} else {
		err = u.start.UpdateTask(u.ctx, u.form.taskID, name, description)
	}
	if errors.Is(err, app.ErrInvalidInput) {
		u.status = "Enter a task name"
		return nil
	}
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.form = nil
	u.status = ""
	return nil
}

func (u *UI) startWithoutTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.form != nil && u.form.taskID != "" {
		return nil
	}
	if _, err := u.start.StartWithoutTask(u.ctx); err != nil {
		u.status = err.Error()
		return nil
	}
	u.form = nil
	u.status = ""
	return nil
}

func (u *UI) cancelForm(_ *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.status = ""
	u.start.BackFromStart()
	return nil
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	form := u.activeForm()
	if form == nil {
		return nil
	}
	if form.index < len(form.fields)-1 {
		form.index++
	}
	u.renderForm(view, form)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	form := u.activeForm()
	if form == nil {
		return nil
	}
	if form.index > 0 {
		form.index--
	}
	u.renderForm(view, form)
	return nil
}

func (u *UI) submitSettings(_ *gocui.Gui, _ *gocui.View) error {
	if u.settings == nil {
		return nil
	}
	settings, err := parseSettingsFields(u.settings.fields, u.prefs.Settings())
	if err != nil {
		u.status = err.Error()
		return nil
	}
	if err := u.prefs.SaveSettings(settings); err != nil {
		u.status = err.Error()
		return nil
	}
	u.settings = nil
	u.status = "Settings saved"
	return nil
}

func (u *UI) resetSettings(_ *gocui.Gui, _ *gocui.View) error {
	u.settings = nil
	u.status = ""
	return nil
}

func (u *UI) startOrPause(_ *gocui.Gui, _ *gocui.View) error {
	u.status = ""
	if u.focus.TimerState() == timer.Idle {
		err := u.focus.Start(u.ctx)
		var conflict *timer.ConflictError
		if errors.As(err, &conflict) {
			active := conflict.Active
			u.modalTask = &active
			u.modal = modalActiveTask
			return nil
		}
		return u.report(err)
	}
	if u.focus.PauseNeedsConfirmation() {
		u.skipPause = false
		u.modal = modalPauseConfirm
		return nil
	}
	return u.report(u.focus.Pause(u.ctx))
}

func (u *UI) toggleRest(_ *gocui.Gui, _ *gocui.View) error {
	err := u.focus.ToggleRest(u.ctx)
	switch {
	case errors.Is(err, timer.ErrNotRunning):
		u.status = "Start the timer first"
		return nil
	case errors.Is(err, timer.ErrTransitioning):
		return nil
	}
	return u.report(err)
}

func (u *UI) complete(_ *gocui.Gui, _ *gocui.View) error {
	completed, err := u.focus.CompleteCurrent(u.ctx)
	if err != nil {
		return u.report(err)
	}
	u.status = fmt.Sprintf("Completed %s in %s", completed.Name, history.Short(completed.Duration))
	return nil
}

func (u *UI) toggleCountdown(_ *gocui.Gui, _ *gocui.View) error {
	snap := u.focus.TimerSnapshot()
	return u.setCountdown(!snap.IsCountdownMode, snap.CountdownDuration)
}

func (u *UI) adjustCountdown(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		snap := u.focus.TimerSnapshot()
		minutes := min(max(snap.CountdownDuration+delta, timer.MinCountdownMinutes), timer.MaxCountdownMinutes)
		return u.setCountdown(snap.IsCountdownMode, minutes)
	}
}

func (u *UI) setCountdown(enabled bool, minutes int) error {
	err := u.focus.SetCountdown(u.ctx, enabled, minutes)
	if errors.Is(err, timer.ErrAlreadyRunning) {
		u.status = "Pause the timer to change the countdown"
		return nil
	}
	return u.report(err)
}

func (u *UI) showSessions(_ *gocui.Gui, _ *gocui.View) error {
	u.modal = modalSessions
	return nil
}

func (u *UI) backFromTimer(_ *gocui.Gui, _ *gocui.View) error {
	if u.focus.LeaveNeedsConfirmation() {
		u.modal = modalLeaveConfirm
		return nil
	}
	_, err := u.focus.BackFromTimer(u.ctx, timer.LeaveCancel)
	return u.report(err)
}

func (u *UI) toggleExpand(_ *gocui.Gui, _ *gocui.View) error {
	if u.selectedHistory < 0 || u.selectedHistory >= len(u.completed) {
		return nil
	}
	id := u.completed[u.selectedHistory].ID
	u.expanded[id] = !u.expanded[id]
	return nil
}

func (u *UI) openDateFilter(_ *gocui.Gui, _ *gocui.View) error {
	u.modal = modalDateFilter
	return nil
}

func (u *UI) submitDateFilter(_ *gocui.Gui, view *gocui.View) error {
	return u.applyDateFilter(view.Buffer())
}

func (u *UI) applyDateFilter(value string) error {
	day, err := history.ParseDay(value, u.records.Location())
	if err != nil {
		u.status = "Use YYYY-MM-DD"
		return nil
	}
	u.historyDay = day
	u.selectedHistory = 0
	u.modal = modalNone
	u.status = ""
	return nil
}

func (u *UI) clearDateFilter(_ *gocui.Gui, _ *gocui.View) error {
	u.historyDay = time.Time{}
	u.selectedHistory = 0
	return nil
}

func (u *UI) shiftDay(days int) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.historyDay.IsZero() {
			u.historyDay, _ = history.DayBounds(u.records.Now(), u.records.Location())
		} else {
			u.historyDay = u.historyDay.AddDate(0, 0, days)
		}
		u.selectedHistory = 0
		return nil
	}
}

func (u *UI) report(err error) error {
	if err != nil {
		u.status = err.Error()
	}
	return nil
}

func (u *UI) inputActive() bool {
	return u.modal != modalNone
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}
