package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazyfocus/internal/app"
	"github.com/Joseda-hg/lazyfocus/internal/db"
	"github.com/Joseda-hg/lazyfocus/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "0.1.0"

// NewServer exposes the task store as MCP tools. Edits go to the store;
// reads, deletes and history go through the shell, like the web API.
func NewServer(store *db.Store, shell *app.Shell) *server.MCPServer {
	s := server.NewMCPServer("lazyfocus", serverVersion)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List active tasks in creation order, with their focus time and timer state."),
	), listTasksHandler(shell))

	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the active list."),
		mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Optional description")),
	), addTaskHandler(store))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Rename a task or change its description."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("New description")),
	), updateTaskHandler(store))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete an active task. Its timer is stopped first."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(shell))

	s.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List completed tasks, most recent first."),
		mcp.WithString("date", mcp.Description("Only tasks completed on this day (YYYY-MM-DD)")),
	), listHistoryHandler(shell))

	s.AddTool(mcp.NewTool("timer_status",
		mcp.WithDescription("Report the running task, if any, and its timer state."),
	), timerStatusHandler(shell))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func listTasksHandler(shell *app.Shell) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := shell.Tasks(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func addTaskHandler(store *db.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := mcp.ParseString(request, "name", "")
		if strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError(app.ErrInvalidInput.Error()), nil
		}
		description := mcp.ParseString(request, "description", "")

		task, err := store.AddTask(ctx, db.TaskInput{Name: name, Description: description})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task)
	}
}

func updateTaskHandler(store *db.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		name := mcp.ParseString(request, "name", "")
		if strings.TrimSpace(name) == "" {
			return mcp.NewToolResultError(app.ErrInvalidInput.Error()), nil
		}

		task, found, err := store.GetTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}

		description := mcp.ParseString(request, "description", task.Description)
		if _, err := store.UpdateTask(ctx, id, db.TaskInput{Name: name, Description: description}); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' updated.", strings.TrimSpace(name))), nil
	}
}

func deleteTaskHandler(shell *app.Shell) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		if err := shell.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' deleted.", id)), nil
	}
}

func listHistoryHandler(shell *app.Shell) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		day, err := history.ParseDay(mcp.ParseString(request, "date", ""), shell.Location())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		completed, hourly, err := shell.History(ctx, day)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload := map[string]any{"completed": completed}
		if !day.IsZero() {
			payload["hourly"] = hourly
		}
		return jsonResult(payload)
	}
}

func timerStatusHandler(shell *app.Shell) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		active, err := shell.ActiveTask(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if active == nil {
			return mcp.NewToolResultText("No task is running."), nil
		}

		state := "focus"
		if active.TimerState.IsResting {
			state = "resting"
		} else if active.TimerState.IsCountdownMode {
			state = "countdown"
		}
		return jsonResult(map[string]any{
			"task":  active,
			"state": state,
			"focus": history.Clock(active.TimerState.Seconds),
		})
	}
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
