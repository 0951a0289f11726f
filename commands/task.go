package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"remindo/cache"
	"remindo/todo"
)

func init() {
	Register(&Command{
		Name:        "/add",
		Description: "Add a to-do item (due date defaults to now, change it with /due)",
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /add <title>")
				return false
			}

			ctx := context.Background()
			title := strings.Join(args, " ")

			task, err := GetRepository().Create(ctx, todo.CreateInput{Title: title})
			if err != nil {
				fmt.Printf("Error adding to-do: %v\n", err)
				return false
			}

			GetCache().Invalidate(cache.TasksKey)
			scheduleReminder(ctx, task)

			fmt.Printf("Added to-do: %s (ID: %d)\n", task.Title, task.ID)
			return false
		},
	})

	Register(&Command{
		Name:        "/list",
		Description: "List all to-do items",
		Handler: func(args []string) bool {
			tasks, err := listTasks()
			if err != nil {
				fmt.Printf("Error listing to-dos: %v\n", err)
				return false
			}

			if len(tasks) == 0 {
				fmt.Println("No to-do items yet. Add one with /add <title>")
				return false
			}

			fmt.Println("To-do items:")
			for _, t := range tasks {
				printTask(t)
			}

			return false
		},
	})

	Register(&Command{
		Name:        "/done",
		Description: "Mark a to-do item as completed",
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /done <id>")
				return false
			}

			id, err := parseID(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			if err := GetRepository().ToggleComplete(context.Background(), id, true); err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			GetCache().Invalidate(cache.TasksKey)
			fmt.Printf("Marked to-do %d as done ✓\n", id)
			return false
		},
	})

	Register(&Command{
		Name:        "/undone",
		Description: "Mark a to-do item as not completed",
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /undone <id>")
				return false
			}

			id, err := parseID(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			if err := GetRepository().ToggleComplete(context.Background(), id, false); err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			GetCache().Invalidate(cache.TasksKey)
			fmt.Printf("Marked to-do %d as not done\n", id)
			return false
		},
	})

	Register(&Command{
		Name:        "/rm",
		Description: "Delete one or more to-do items",
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /rm <id> [id...]")
				return false
			}

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					return false
				}
				ids = append(ids, id)
			}

			if err := GetRepository().Delete(context.Background(), ids); err != nil {
				fmt.Printf("Error deleting to-dos: %v\n", err)
				return false
			}

			GetCache().Invalidate(cache.TasksKey)
			fmt.Printf("Deleted %d to-do item(s)\n", len(ids))
			return false
		},
	})

	Register(&Command{
		Name:        "/edit",
		Description: "Change a to-do item's title",
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /edit <id> <new title>")
				return false
			}

			id, err := parseID(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			task, ok, err := findTask(id)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}
			if !ok {
				fmt.Printf("Error: to-do %d not found\n", id)
				return false
			}

			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				fmt.Println("Error: title cannot be empty")
				return false
			}
			task.Title = title

			ctx := context.Background()
			updated, err := GetRepository().Update(ctx, task)
			if err != nil {
				fmt.Printf("Error updating to-do: %v\n", err)
				return false
			}

			GetCache().Invalidate(cache.TasksKey)
			scheduleReminder(ctx, updated)

			fmt.Printf("Updated to-do: %s\n", updated.Title)
			return false
		},
	})

	Register(&Command{
		Name:        "/due",
		Description: "Set a to-do item's due date, or 'none' to clear it",
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /due <id> <YYYY-MM-DD [HH:MM]|none>")
				return false
			}

			id, err := parseID(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			task, ok, err := findTask(id)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}
			if !ok {
				fmt.Printf("Error: to-do %d not found\n", id)
				return false
			}

			ctx := context.Background()

			if args[1] == "none" {
				task.DueDate = nil
				if _, err := GetRepository().Update(ctx, task); err != nil {
					fmt.Printf("Error updating to-do: %v\n", err)
					return false
				}
				GetCache().Invalidate(cache.TasksKey)
				GetScheduler().CancelTask(ctx, id)
				fmt.Printf("Cleared due date for to-do %d\n", id)
				return false
			}

			dueDate, err := parseDueDate(args[1:])
			if err != nil {
				fmt.Println("Error: Invalid date format. Use YYYY-MM-DD with an optional HH:MM (e.g., 2026-12-31 09:30)")
				return false
			}
			task.DueDate = &dueDate

			updated, err := GetRepository().Update(ctx, task)
			if err != nil {
				fmt.Printf("Error updating to-do: %v\n", err)
				return false
			}

			GetCache().Invalidate(cache.TasksKey)
			scheduleReminder(ctx, updated)

			fmt.Printf("Set due date for to-do %d to %s\n", id, dueDate.Format("2006-01-02 15:04"))
			return false
		},
	})
}

// listTasks reads the task list through the cache.
func listTasks() ([]todo.Task, error) {
	return GetCache().Get(context.Background(), cache.TasksKey, GetRepository().List)
}

// findTask looks a task up by id in the visible list.
func findTask(id int64) (todo.Task, bool, error) {
	tasks, err := listTasks()
	if err != nil {
		return todo.Task{}, false, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true, nil
		}
	}
	return todo.Task{}, false, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid to-do id: %s", arg)
	}
	return id, nil
}

// parseDueDate accepts "YYYY-MM-DD" plus an optional "HH:MM" argument.
func parseDueDate(args []string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if len(args) == 1 {
		return day, nil
	}

	clock, err := time.ParseInLocation("15:04", args[1], time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

func printTask(t todo.Task) {
	status := "[ ]"
	if t.Completed {
		status = "[✓]"
	}

	due := ""
	if t.DueDate != nil {
		due = " (due " + t.DueDate.Format("2006-01-02 15:04") + ")"
	}

	fmt.Printf("  %s [%d] %s%s\n", status, t.ID, t.Title, due)
}

// scheduleReminder registers reminders for the task's due date. Failures are
// reported but never undo the mutation that led here.
func scheduleReminder(ctx context.Context, task todo.Task) {
	if task.DueDate == nil {
		return
	}
	if err := GetScheduler().Schedule(ctx, task.ID, task.Title, *task.DueDate); err != nil {
		fmt.Printf("Warning: could not schedule reminder: %v\n", err)
	}
}
