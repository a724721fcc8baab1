package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/google/uuid"
)

// Store is the task store: active tasks in insertion order and completed
// tasks most recent first. Lookups by an unknown id are no-ops.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

type TaskInput struct {
	Name        string
	Description string
}

const taskColumns = `id, name, description, created_at, total_focus_time, timer_state`

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Store) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	task := model.Task{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   s.now(),
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO tasks (id, name, description, created_at, total_focus_time) VALUES (?, ?, ?, ?, 0)`,
		task.ID, task.Name, task.Description, task.CreatedAt.UnixNano(),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *Store) UpdateTask(ctx context.Context, taskID string, input TaskInput) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ? WHERE id = ?`,
		strings.TrimSpace(input.Name), strings.TrimSpace(input.Description), taskID,
	)
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	return affected(res)
}

// SaveTimerState replaces the task's timer snapshot and its focus total.
// A nil state clears the snapshot.
func (s *Store) SaveTimerState(ctx context.Context, taskID string, state *model.TimerState) (bool, error) {
	payload, err := encodeTimerState(state)
	if err != nil {
		return false, err
	}

	var res sql.Result
	if state == nil {
		res, err = s.DB.ExecContext(ctx, `UPDATE tasks SET timer_state = NULL WHERE id = ?`, taskID)
	} else {
		res, err = s.DB.ExecContext(ctx,
			`UPDATE tasks SET timer_state = ?, total_focus_time = ? WHERE id = ?`,
			payload, state.TotalFocusTime, taskID,
		)
	}
	if err != nil {
		return false, fmt.Errorf("save timer state: %w", err)
	}
	return affected(res)
}

func (s *Store) RemoveTask(ctx context.Context, taskID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return affected(res)
}

// CompleteTask moves the task into the completed history with the given
// duration. It reports false when the task does not exist.
func (s *Store) CompleteTask(ctx context.Context, taskID string, duration int, at time.Time) (model.CompletedTask, bool, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.CompletedTask{}, false, fmt.Errorf("begin complete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	task, found, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID))
	if err != nil {
		return model.CompletedTask{}, false, err
	}
	if !found {
		return model.CompletedTask{}, false, nil
	}

	payload, err := encodeTimerState(task.TimerState)
	if err != nil {
		return model.CompletedTask{}, false, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO completed_tasks (task_id, name, description, created_at, total_focus_time, timer_state, completed_at, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Description, task.CreatedAt.UnixNano(), task.TotalFocusTime, payload, at.UnixNano(), duration,
	); err != nil {
		return model.CompletedTask{}, false, fmt.Errorf("insert completed task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
		return model.CompletedTask{}, false, fmt.Errorf("delete completed task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.CompletedTask{}, false, fmt.Errorf("commit complete: %w", err)
	}

	return model.CompletedTask{Task: task, CompletedAt: time.Unix(0, at.UnixNano()), Duration: duration}, true, nil
}

func (s *Store) GetTask(ctx context.Context, taskID string) (model.Task, bool, error) {
	return scanTask(s.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID))
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, _, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ActiveTask returns the first task other than excludeID whose timer is
// running, or nil.
func (s *Store) ActiveTask(ctx context.Context, excludeID string) (*model.Task, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID != excludeID && tasks[i].IsRunning() {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

func (s *Store) ListCompleted(ctx context.Context) ([]model.CompletedTask, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT task_id, name, description, created_at, total_focus_time, timer_state, completed_at, duration
		 FROM completed_tasks ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	defer rows.Close()

	completed := []model.CompletedTask{}
	for rows.Next() {
		var (
			entry       model.CompletedTask
			createdAt   int64
			completedAt int64
			state       sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Description, &createdAt, &entry.TotalFocusTime, &state, &completedAt, &entry.Duration); err != nil {
			return nil, fmt.Errorf("scan completed task: %w", err)
		}
		entry.CreatedAt = time.Unix(0, createdAt)
		entry.CompletedAt = time.Unix(0, completedAt)
		if entry.TimerState, err = decodeTimerState(state); err != nil {
			return nil, err
		}
		completed = append(completed, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	return completed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, bool, error) {
	var (
		task      model.Task
		createdAt int64
		state     sql.NullString
	)
	err := row.Scan(&task.ID, &task.Name, &task.Description, &createdAt, &task.TotalFocusTime, &state)
	if err == sql.ErrNoRows {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, fmt.Errorf("scan task: %w", err)
	}
	task.CreatedAt = time.Unix(0, createdAt)
	if task.TimerState, err = decodeTimerState(state); err != nil {
		return model.Task{}, false, err
	}
	return task, true, nil
}

func encodeTimerState(state *model.TimerState) (sql.NullString, error) {
	if state == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode timer state: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeTimerState(value sql.NullString) (*model.TimerState, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var state model.TimerState
	if err := json.Unmarshal([]byte(value.String), &state); err != nil {
		return nil, fmt.Errorf("decode timer state: %w", err)
	}
	return &state, nil
}

func affected(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}
