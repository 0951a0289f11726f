package todo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StorageKey is the single key under which the full task collection is
// persisted, as a JSON array.
const StorageKey = "@todos"

var (
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrNoTasks    = errors.New("no to-do items in local storage")
)

// Task is a single to-do item. The JSON shape doubles as the persisted
// layout and the remote API contract, so the field names are fixed.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	UserID    int        `json:"userId"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// CreateInput carries the caller-supplied fields for a new task.
// Zero values fall back to defaults: completed false, userId 1, dueDate now.
type CreateInput struct {
	Title     string
	Completed bool
	UserID    int
	DueDate   *time.Time
}

// RemoteSource is the demo API the repository seeds from on first run and
// notifies on create. Update and delete never touch it.
type RemoteSource interface {
	FetchTodos(ctx context.Context) ([]Task, error)
	AddTodo(ctx context.Context, title string, completed bool, userID int) (Task, error)
}

// storedTask is the persisted shape. Title is a pointer so a record whose
// title key is missing entirely can be told apart from one stored as "".
type storedTask struct {
	ID        int64      `json:"id"`
	Title     *string    `json:"title,omitempty"`
	Completed bool       `json:"completed"`
	UserID    int        `json:"userId"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

func (st storedTask) toTask() Task {
	t := Task{
		ID:        st.ID,
		Completed: st.Completed,
		UserID:    st.UserID,
		DueDate:   st.DueDate,
	}
	if st.Title != nil {
		t.Title = *st.Title
	}
	return t
}

func fromTask(t Task) storedTask {
	title := t.Title
	return storedTask{
		ID:        t.ID,
		Title:     &title,
		Completed: t.Completed,
		UserID:    t.UserID,
		DueDate:   t.DueDate,
	}
}

func placeholderTitle(id int64) string {
	return fmt.Sprintf("Task %d", id)
}
