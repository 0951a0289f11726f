package commands

import (
	"fmt"
	"time"

	"remindo/todo"
)

func init() {
	Register(&Command{
		Name:        "/today",
		Description: "List to-do items due today",
		Handler: func(args []string) bool {
			today := dateOnly(time.Now())
			tomorrow := today.AddDate(0, 0, 1)

			listTasksInRange("today", today, tomorrow)
			return false
		},
	})

	Register(&Command{
		Name:        "/week",
		Description: "List to-do items due this week (Monday through Sunday)",
		Handler: func(args []string) bool {
			today := dateOnly(time.Now())
			weekStart := startOfWeek(today)
			weekEnd := weekStart.AddDate(0, 0, 7)

			listTasksInRange("this week", weekStart, weekEnd)
			return false
		},
	})
}

// dateOnly extracts just the year, month, day as a comparable date in local timezone
// This ignores the time-of-day and original timezone, treating the date as a calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// startOfWeek returns the Monday of the week containing the given time
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is day 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// listTasksInRange lists incomplete items with due dates in [start, end)
func listTasksInRange(label string, start, end time.Time) {
	tasks, err := listTasks()
	if err != nil {
		fmt.Printf("Error listing to-dos: %v\n", err)
		return
	}

	var filtered []todo.Task
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if t.DueDate == nil {
			continue
		}
		due := dateOnly(*t.DueDate)
		if !due.Before(start) && due.Before(end) {
			filtered = append(filtered, t)
		}
	}

	fmt.Printf("To-do items due %s:\n", label)
	if len(filtered) == 0 {
		fmt.Println("  Nothing due")
		return
	}

	for _, t := range filtered {
		printTask(t)
	}
}
