package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Joseda-hg/lazyfocus/internal/app"
	"github.com/Joseda-hg/lazyfocus/internal/db"
	"github.com/Joseda-hg/lazyfocus/internal/history"
	"github.com/Joseda-hg/lazyfocus/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

// Server exposes the task store over HTTP. Edits go straight to the store.
// Reads go through the shell so the loaded task shows live counters, and
// deletes do too so the timer lets go of a task before it disappears.
type Server struct {
	store  *db.Store
	shell  *app.Shell
	logger *slog.Logger
}

type taskRow struct {
	Task  model.Task
	Focus string
	State string
}

type completedRow struct {
	Name     string
	Duration string
	When     string
}

type taskPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewServer(store *db.Store, shell *app.Shell, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{store: store, shell: shell, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/api/tasks", s.apiTasksHandler)
	mux.HandleFunc("/api/tasks/", s.apiTaskHandler)
	mux.HandleFunc("/api/history", s.apiHistoryHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	tasks, err := s.shell.Tasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	day, err := history.ParseDay(r.URL.Query().Get("date"), s.shell.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	completed, _, err := s.shell.History(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	data := struct {
		Total     int
		Tasks     []taskRow
		Day       string
		Completed []completedRow
	}{Total: len(tasks), Tasks: buildTaskRows(tasks), Completed: buildCompletedRows(completed, s.shell)}
	if !day.IsZero() {
		data.Day = day.Format(history.DayLayout)
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func buildTaskRows(tasks []model.Task) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for _, task := range tasks {
		state := "idle"
		switch {
		case task.TimerState == nil:
			state = "new"
		case task.TimerState.IsRunning && task.TimerState.IsResting:
			state = "resting"
		case task.TimerState.IsRunning:
			state = "running"
		}
		rows = append(rows, taskRow{Task: task, Focus: history.Focus(task.TotalFocusTime), State: state})
	}
	return rows
}

func buildCompletedRows(tasks []model.CompletedTask, clock app.HistorySource) []completedRow {
	now := clock.Now()
	rows := make([]completedRow, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, completedRow{
			Name:     task.Name,
			Duration: history.Short(task.Duration),
			When:     history.Relative(task.CompletedAt, now),
		})
	}
	return rows
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := s.shell.Tasks(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, tasks)
	case http.MethodPost:
		payload, err := decodeTask(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		task, err := s.store.AddTask(r.Context(), db.TaskInput{Name: payload.Name, Description: payload.Description})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.logger.Info("task added", "task", task.ID, "source", "web")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, task)
	default:
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

func (s *Server) apiTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Path, "/api/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		task, found, err := s.shell.Task(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, fmt.Errorf("task %s not found", id))
			return
		}
		writeJSON(w, task)
	case http.MethodPut:
		payload, err := decodeTask(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		found, err := s.store.UpdateTask(r.Context(), id, db.TaskInput{Name: payload.Name, Description: payload.Description})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, fmt.Errorf("task %s not found", id))
			return
		}
		task, _, err := s.shell.Task(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, task)
	case http.MethodDelete:
		if err := s.shell.DeleteTask(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.logger.Info("task deleted", "task", id, "source", "web")
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

func (s *Server) apiHistoryHandler(w http.ResponseWriter, r *http.Request) {
	day, err := history.ParseDay(r.URL.Query().Get("date"), s.shell.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	completed, hourly, err := s.shell.History(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	payload := struct {
		Completed []model.CompletedTask `json:"completed"`
		Hourly    [24]int               `json:"hourly"`
	}{Completed: completed, Hourly: hourly}
	writeJSON(w, payload)
}

func decodeTask(r *http.Request) (taskPayload, error) {
	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return taskPayload{}, fmt.Errorf("decode task: %w", err)
	}
	if strings.TrimSpace(payload.Name) == "" {
		return taskPayload{}, app.ErrInvalidInput
	}
	return payload, nil
}

func parseID(path, prefix string) (string, error) {
	if !strings.HasPrefix(path, prefix) {
		return "", errors.New("invalid path")
	}
	value := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if value == "" {
		return "", errors.New("missing id")
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
