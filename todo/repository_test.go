package todo

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"remindo/storage"
)

// fakeRemote is an in-memory RemoteSource with scriptable failures.
type fakeRemote struct {
	todos      []Task
	fetchErr   error
	fetchCalls int

	addResp  Task
	addErr   error
	addCalls int
}

func (f *fakeRemote) FetchTodos(ctx context.Context) ([]Task, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.todos, nil
}

func (f *fakeRemote) AddTodo(ctx context.Context, title string, completed bool, userID int) (Task, error) {
	f.addCalls++
	if f.addErr != nil {
		return Task{}, f.addErr
	}
	if f.addResp.Title == "" {
		return Task{ID: 9999, Title: title, Completed: completed, UserID: userID}, nil
	}
	return f.addResp, nil
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk on fire")
}
func (failingStore) Close() error { return nil }

// countingStore counts writes going through to the wrapped store.
type countingStore struct {
	storage.Store
	sets int
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.Store.Set(ctx, key, value)
}

func newTestRepo(remote *fakeRemote) (*Repository, storage.Store) {
	store := storage.NewMemoryStore()
	return NewRepository(store, remote), store
}

// seedRaw writes a raw JSON collection directly into the store.
func seedRaw(t *testing.T, store storage.Store, raw string) {
	t.Helper()
	if err := store.Set(context.Background(), StorageKey, []byte(raw)); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
}

func TestListSeedsFromRemoteOnce(t *testing.T) {
	remote := &fakeRemote{todos: []Task{
		{ID: 1, Title: "walk the dog", UserID: 1},
		{ID: 2, Title: "", UserID: 1}, // no title from the API
	}}
	repo, store := newTestRepo(remote)
	ctx := context.Background()

	tasks, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].Title != "Task 2" {
		t.Errorf("Expected placeholder title 'Task 2', got: %s", tasks[1].Title)
	}

	// Seed must have persisted
	if _, err := store.Get(ctx, StorageKey); err != nil {
		t.Errorf("Expected seed to persist, got: %v", err)
	}

	// Second list stays local
	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("Failed to list again: %v", err)
	}
	if remote.fetchCalls != 1 {
		t.Errorf("Expected exactly 1 remote fetch, got %d", remote.fetchCalls)
	}
}

func TestListSeedFailure(t *testing.T) {
	remote := &fakeRemote{fetchErr: errors.New("network down")}
	repo, _ := newTestRepo(remote)

	_, err := repo.List(context.Background())
	if err == nil {
		t.Fatal("Expected seed failure to surface")
	}
	if !strings.Contains(err.Error(), "network down") {
		t.Errorf("Expected wrapped remote error, got: %v", err)
	}
}

func TestListDeduplicatesByID(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[
		{"id":1,"title":"first"},
		{"id":2,"title":"other"},
		{"id":1,"title":"second"}
	]`)

	tasks, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks after dedup, got %d", len(tasks))
	}
	// Last occurrence wins and keeps its own position
	if tasks[0].ID != 2 || tasks[1].ID != 1 {
		t.Errorf("Expected order [2, 1], got [%d, %d]", tasks[0].ID, tasks[1].ID)
	}
	if tasks[1].Title != "second" {
		t.Errorf("Expected last duplicate to win, got: %s", tasks[1].Title)
	}
}

func TestListTitleNormalization(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[
		{"id":1},
		{"id":2,"title":""},
		{"id":3,"title":"   "},
		{"id":4,"title":"real"}
	]`)

	tasks, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected blank-titled records hidden, got %d tasks", len(tasks))
	}
	if tasks[0].Title != "Task 1" {
		t.Errorf("Expected placeholder for missing title, got: %s", tasks[0].Title)
	}
	if tasks[1].Title != "real" {
		t.Errorf("Expected real title, got: %s", tasks[1].Title)
	}

	// Hidden records must remain in storage untouched
	raw, _ := store.Get(context.Background(), StorageKey)
	if !strings.Contains(string(raw), `"id":2`) || !strings.Contains(string(raw), `"id":3`) {
		t.Errorf("Hidden records should stay in storage, got: %s", raw)
	}
}

func TestCreateValidatesTitle(t *testing.T) {
	repo, _ := newTestRepo(&fakeRemote{})

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := repo.Create(context.Background(), CreateInput{Title: title})
		if !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Expected ErrEmptyTitle for %q, got: %v", title, err)
		}
	}
}

func TestCreateDefaults(t *testing.T) {
	remote := &fakeRemote{}
	repo, _ := newTestRepo(remote)
	before := time.Now()

	task, err := repo.Create(context.Background(), CreateInput{Title: "  buy milk  "})
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	if task.Title != "buy milk" {
		t.Errorf("Expected trimmed title, got: %q", task.Title)
	}
	if task.Completed {
		t.Error("Expected new task to be incomplete")
	}
	if task.UserID != 1 {
		t.Errorf("Expected default userId 1, got %d", task.UserID)
	}
	if task.DueDate == nil {
		t.Fatal("Expected default due date")
	}
	if task.DueDate.Before(before) || task.DueDate.After(time.Now()) {
		t.Errorf("Expected due date to default to now, got: %v", task.DueDate)
	}
	if remote.addCalls != 1 {
		t.Errorf("Expected 1 remote add call, got %d", remote.addCalls)
	}

	// The task must be listable afterwards
	tasks, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Errorf("Expected created task in list, got: %+v", tasks)
	}
}

func TestCreateIgnoresRemoteID(t *testing.T) {
	remote := &fakeRemote{addResp: Task{ID: 7, Title: "from server", Completed: true, UserID: 3}}
	repo, _ := newTestRepo(remote)

	task, err := repo.Create(context.Background(), CreateInput{Title: "local title"})
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	// Remote response informs fields but never the id
	if task.ID == 7 {
		t.Error("Remote id must not be trusted")
	}
	if task.Title != "from server" {
		t.Errorf("Expected remote title to apply, got: %q", task.Title)
	}
	if !task.Completed {
		t.Error("Expected remote completed flag to apply")
	}
	if task.UserID != 3 {
		t.Errorf("Expected remote userId to apply, got %d", task.UserID)
	}
}

func TestCreateRemoteFailurePolicy(t *testing.T) {
	remote := &fakeRemote{addErr: errors.New("server exploded")}
	repo, _ := newTestRepo(remote)
	ctx := context.Background()

	// Default: proceed local-only
	task, err := repo.Create(ctx, CreateInput{Title: "offline task"})
	if err != nil {
		t.Fatalf("Expected local-only create to succeed, got: %v", err)
	}
	if task.Title != "offline task" {
		t.Errorf("Expected local title, got: %q", task.Title)
	}

	// Strict mode: the failure aborts the create
	repo.RequireRemoteAdd(true)
	_, err = repo.Create(ctx, CreateInput{Title: "must sync"})
	if err == nil {
		t.Fatal("Expected create to fail with RequireRemoteAdd")
	}
	if !strings.Contains(err.Error(), "server exploded") {
		t.Errorf("Expected wrapped remote error, got: %v", err)
	}

	tasks, _ := repo.List(ctx)
	if len(tasks) != 1 {
		t.Errorf("Aborted create must not persist, got %d tasks", len(tasks))
	}
}

func TestCreateIDCollision(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})

	// Freeze the clock and script the random offsets: the first candidate
	// collides with an existing id, forcing a resample.
	frozen := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return frozen }
	offsets := []int{5, 5, 9}
	repo.randInt = func(n int) int {
		next := offsets[0]
		offsets = offsets[1:]
		return next
	}

	taken := frozen.UnixMilli() + 5
	seedRaw(t, store, `[{"id":`+strconv.FormatInt(taken, 10)+`,"title":"existing"}]`)

	task, err := repo.Create(context.Background(), CreateInput{Title: "new"})
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if task.ID != frozen.UnixMilli()+9 {
		t.Errorf("Expected resampled id %d, got %d", frozen.UnixMilli()+9, task.ID)
	}
}

func TestUpdateReplacesMatchingTask(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[{"id":1,"title":"old"},{"id":2,"title":"keep"}]`)
	ctx := context.Background()

	due := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, Task{ID: 1, Title: "new", Completed: true, UserID: 1, DueDate: &due})
	if err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if updated.Title != "new" {
		t.Errorf("Expected updated task back, got: %+v", updated)
	}

	tasks, _ := repo.List(ctx)
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "new" || !tasks[0].Completed {
		t.Errorf("Expected persisted update, got: %+v", tasks[0])
	}
	if tasks[1].Title != "keep" {
		t.Errorf("Expected untouched sibling, got: %+v", tasks[1])
	}
}

func TestUpdateMissingIDIsNoOp(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[{"id":1,"title":"only"}]`)
	ctx := context.Background()

	if _, err := repo.Update(ctx, Task{ID: 999, Title: "ghost"}); err != nil {
		t.Fatalf("Expected silent no-op, got: %v", err)
	}

	tasks, _ := repo.List(ctx)
	if len(tasks) != 1 || tasks[0].Title != "only" {
		t.Errorf("Expected collection unchanged, got: %+v", tasks)
	}
}

func TestUpdateRevealsHiddenTask(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[{"id":1,"title":""},{"id":2,"title":"visible"}]`)
	ctx := context.Background()

	// Hidden before the fix
	tasks, _ := repo.List(ctx)
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 visible task, got %d", len(tasks))
	}

	if _, err := repo.Update(ctx, Task{ID: 1, Title: "fixed"}); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	tasks, _ = repo.List(ctx)
	if len(tasks) != 2 {
		t.Fatalf("Expected fixed task to become visible, got %d", len(tasks))
	}
	if tasks[0].Title != "fixed" {
		t.Errorf("Expected fixed title, got: %s", tasks[0].Title)
	}
}

func TestUpdatePersistsPlaceholders(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[{"id":1},{"id":2,"title":"target"}]`)
	ctx := context.Background()

	if _, err := repo.Update(ctx, Task{ID: 2, Title: "renamed"}); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}

	// The record that had no title key now carries its placeholder on disk
	raw, _ := store.Get(ctx, StorageKey)
	if !strings.Contains(string(raw), "Task 1") {
		t.Errorf("Expected placeholder persisted for titleless record, got: %s", raw)
	}
}

func TestToggleComplete(t *testing.T) {
	repo, store := newTestRepo(&fakeRemote{})
	seedRaw(t, store, `[{"id":1,"title":"a"},{"id":2,"title":""}]`)
	ctx := context.Background()

	if err := repo.ToggleComplete(ctx, 1, true); err != nil {
		t.Fatalf("Failed to toggle: %v", err)
	}

	tasks, _ := repo.List(ctx)
	if !tasks[0].Completed {
		t.Error("Expected task 1 completed")
	}

	// The toggle path must not normalize: the blank-titled record stays blank
	raw, _ := store.Get(ctx, StorageKey)
	if strings.Contains(string(raw), "Task 2") {
		t.Errorf("Toggle must not rewrite titles, got: %s", raw)
	}

	if err := repo.ToggleComplete(ctx, 1, false); err != nil {
		t.Fatalf("Failed to toggle back: %v", err)
	}
	tasks, _ = repo.List(ctx)
	if tasks[0].Completed {
		t.Error("Expected task 1 incomplete again")
	}
}

func TestToggleCompleteEmptyStore(t *testing.T) {
	remote := &fakeRemote{}
	repo, _ := newTestRepo(remote)

	if err := repo.ToggleComplete(context.Background(), 1, true); err != nil {
		t.Errorf("Expected no-op on empty store, got: %v", err)
	}
	if remote.fetchCalls != 0 {
		t.Errorf("Toggle must never hit the network, got %d fetches", remote.fetchCalls)
	}
}

func TestDeleteBatch(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore()}
	repo := NewRepository(store, &fakeRemote{})
	ctx := context.Background()
	seedRaw(t, store, `[{"id":1,"title":"a"},{"id":2,"title":"b"},{"id":3,"title":"c"}]`)
	store.sets = 0

	// Batch delete with one missing id: one read, one write, missing skipped
	if err := repo.Delete(ctx, []int64{1, 3, 999}); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if store.sets != 1 {
		t.Errorf("Expected a single write for the batch, got %d", store.sets)
	}

	tasks, _ := repo.List(ctx)
	if len(tasks) != 1 || tasks[0].ID != 2 {
		t.Errorf("Expected only task 2 to survive, got: %+v", tasks)
	}
}

func TestDeleteEmptyStore(t *testing.T) {
	repo, _ := newTestRepo(&fakeRemote{})

	err := repo.Delete(context.Background(), []int64{1})
	if !errors.Is(err, ErrNoTasks) {
		t.Errorf("Expected ErrNoTasks, got: %v", err)
	}
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	repo := NewRepository(failingStore{}, &fakeRemote{})
	ctx := context.Background()

	if _, err := repo.List(ctx); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Expected wrapped store error from List, got: %v", err)
	}
	if _, err := repo.Create(ctx, CreateInput{Title: "x"}); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Expected wrapped store error from Create, got: %v", err)
	}
	if err := repo.ToggleComplete(ctx, 1, true); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Expected wrapped store error from ToggleComplete, got: %v", err)
	}
}
