package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Joseda-hg/lazyfocus/internal/app"
	"github.com/Joseda-hg/lazyfocus/internal/config"
	"github.com/Joseda-hg/lazyfocus/internal/db"
	"github.com/Joseda-hg/lazyfocus/internal/model"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func TestToolHandlers(t *testing.T) {
	s, store, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()

	var taskID string

	t.Run("add_task", func(t *testing.T) {
		result := callTool(t, s, "add_task", map[string]any{"name": "Write report", "description": "q3"})
		if result.IsError {
			t.Fatalf("tool returned error: %v", result.Content[0])
		}
		var task model.Task
		if err := json.Unmarshal([]byte(resultText(result)), &task); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if task.ID == "" || task.Name != "Write report" {
			t.Fatalf("unexpected task: %+v", task)
		}
		taskID = task.ID
	})

	t.Run("add_task rejects empty name", func(t *testing.T) {
		result := callTool(t, s, "add_task", map[string]any{"name": " "})
		if !result.IsError {
			t.Fatalf("expected error for empty name")
		}
	})

	t.Run("list_tasks", func(t *testing.T) {
		result := callTool(t, s, "list_tasks", map[string]any{})
		var resp struct {
			Tasks []model.Task `json:"tasks"`
		}
		if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(resp.Tasks))
		}
	})

	t.Run("update_task", func(t *testing.T) {
		result := callTool(t, s, "update_task", map[string]any{"id": taskID, "name": "Final report"})
		if result.IsError {
			t.Fatalf("tool returned error: %v", result.Content[0])
		}
		task, _, _ := store.GetTask(ctx, taskID)
		if task.Name != "Final report" || task.Description != "q3" {
			t.Fatalf("expected name change that keeps the description, got %+v", task)
		}

		result = callTool(t, s, "update_task", map[string]any{"id": "missing", "name": "x"})
		if !result.IsError {
			t.Fatalf("expected error for unknown id")
		}
	})

	t.Run("timer_status", func(t *testing.T) {
		result := callTool(t, s, "timer_status", map[string]any{})
		if resultText(result) != "No task is running." {
			t.Fatalf("unexpected idle status: %s", resultText(result))
		}

		state := &model.TimerState{IsRunning: true, IsResting: true, Seconds: 65}
		if _, err := store.SaveTimerState(ctx, taskID, state); err != nil {
			t.Fatalf("save timer state: %v", err)
		}
		result = callTool(t, s, "timer_status", map[string]any{})
		var resp struct {
			Task  model.Task `json:"task"`
			State string     `json:"state"`
			Focus string     `json:"focus"`
		}
		if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Task.ID != taskID || resp.State != "resting" || resp.Focus != "1:05" {
			t.Fatalf("unexpected status: %+v", resp)
		}
	})

	t.Run("list_history", func(t *testing.T) {
		at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
		if _, _, err := store.CompleteTask(ctx, taskID, 300, at); err != nil {
			t.Fatalf("complete: %v", err)
		}

		result := callTool(t, s, "list_history", map[string]any{"date": "2024-03-15"})
		var resp struct {
			Completed []model.CompletedTask `json:"completed"`
		}
		if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Completed) != 1 || resp.Completed[0].Duration != 300 {
			t.Fatalf("unexpected history: %+v", resp.Completed)
		}

		result = callTool(t, s, "list_history", map[string]any{"date": "yesterday"})
		if !result.IsError {
			t.Fatalf("expected error for malformed date")
		}
	})

	t.Run("delete_task", func(t *testing.T) {
		other, _ := store.AddTask(ctx, db.TaskInput{Name: "Throwaway"})
		result := callTool(t, s, "delete_task", map[string]any{"id": other.ID})
		if result.IsError {
			t.Fatalf("tool returned error: %v", result.Content[0])
		}
		if _, found, _ := store.GetTask(ctx, other.ID); found {
			t.Fatalf("expected task to be deleted")
		}
	})
}

func TestTimerStatusReportsLiveTimer(t *testing.T) {
	s, _, shell, cleanup := newTestServerWithShell(t, 5*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	task, _ := shell.CreateTask(ctx, "Focus", "")
	if err := shell.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for shell.TimerSnapshot().Seconds < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("timer did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}

	result := callTool(t, s, "timer_status", map[string]any{})
	var resp struct {
		Task  model.Task `json:"task"`
		State string     `json:"state"`
	}
	if err := json.Unmarshal([]byte(resultText(result)), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Task.ID != task.ID || resp.State != "focus" || resp.Task.TotalFocusTime < 3 {
		t.Fatalf("expected live status, got %+v", resp)
	}
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	if tool == nil {
		t.Fatalf("tool %s not found", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	return result
}

func resultText(result *mcp.CallToolResult) string {
	return result.Content[0].(mcp.TextContent).Text
}

func newTestServer(t *testing.T) (*server.MCPServer, *db.Store, func()) {
	t.Helper()
	s, store, _, cleanup := newTestServerWithShell(t, time.Hour)
	return s, store, cleanup
}

func newTestServerWithShell(t *testing.T, tick time.Duration) (*server.MCPServer, *db.Store, *app.Shell, func()) {
	t.Helper()
	dbConn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := db.NewStore(dbConn)
	shell := app.New(store, app.Options{
		Settings:     config.DefaultSettings(),
		Location:     time.UTC,
		TickInterval: tick,
	})
	return NewServer(store, shell), store, shell, func() {
		_ = shell.Close(context.Background())
		_ = dbConn.Close()
	}
}
