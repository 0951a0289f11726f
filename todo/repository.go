package todo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"remindo/storage"
)

// Repository owns the canonical task collection. Local storage is the sole
// source of truth once populated; the remote source is consulted only to
// seed an empty store and, best-effort, on create. All writes are full
// read-modify-write of the collection under StorageKey, so racing mutations
// are last-write-wins by design.
type Repository struct {
	store  storage.Store
	remote RemoteSource

	requireRemoteAdd bool

	now     func() time.Time
	randInt func(n int) int
}

// NewRepository creates a repository over the given store and remote source.
func NewRepository(store storage.Store, remote RemoteSource) *Repository {
	return &Repository{
		store:   store,
		remote:  remote,
		now:     time.Now,
		randInt: rand.IntN,
	}
}

// RequireRemoteAdd makes Create fail when the remote add call fails,
// instead of the default of proceeding with local-only creation.
func (r *Repository) RequireRemoteAdd(require bool) {
	r.requireRemoteAdd = require
}

// List returns the visible task collection. When local storage already holds
// a collection it is served as-is (deduplicated, never touching the network);
// otherwise the collection is fetched from the remote source, normalized,
// and persisted once.
//
// Records missing a title key get the "Task <id>" placeholder. Records whose
// title is blank after trimming are hidden from the result but left untouched
// in storage; fixing the title via Update makes them visible again.
func (r *Repository) List(ctx context.Context) ([]Task, error) {
	stored, err := r.loadRaw(ctx)
	if errors.Is(err, storage.ErrKeyNotFound) {
		stored, err = r.seed(ctx)
	}
	if err != nil {
		return nil, err
	}

	return visible(dedupeByID(stored)), nil
}

// seed fetches the owner's collection from the remote source, gives every
// record a title, and persists the normalized result. Runs at most once per
// store lifetime: any later call finds the key present and stays local.
func (r *Repository) seed(ctx context.Context) ([]storedTask, error) {
	fetched, err := r.remote.FetchTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed from remote: %w", err)
	}

	stored := make([]storedTask, len(fetched))
	for i, t := range fetched {
		if t.Title == "" {
			t.Title = placeholderTitle(t.ID)
		}
		stored[i] = fromTask(t)
	}

	if err := r.writeRaw(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Create validates and persists a new task, assigning a collision-free id.
// The remote add call runs first, best-effort: its response only informs
// default field values and is never trusted for the id. Unless
// RequireRemoteAdd is set, a remote failure does not block local creation.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	userID := input.UserID
	if userID == 0 {
		userID = 1
	}

	completed := input.Completed
	dueDate := input.DueDate

	remoteTask, remoteErr := r.remote.AddTodo(ctx, title, completed, userID)
	if remoteErr != nil && r.requireRemoteAdd {
		return Task{}, fmt.Errorf("remote add: %w", remoteErr)
	}
	if remoteErr == nil {
		if remoteTask.Title != "" {
			title = remoteTask.Title
		}
		if remoteTask.Completed {
			completed = true
		}
		if remoteTask.UserID != 0 {
			userID = remoteTask.UserID
		}
		if remoteTask.DueDate != nil {
			dueDate = remoteTask.DueDate
		}
	}

	if dueDate == nil {
		now := r.now()
		dueDate = &now
	}

	// Create appends to whatever is stored right now; an absent key just
	// means the collection starts empty. No seeding on this path.
	existing, err := r.loadRaw(ctx)
	if errors.Is(err, storage.ErrKeyNotFound) {
		existing, err = nil, nil
	}
	if err != nil {
		return Task{}, err
	}

	task := storedTask{
		ID:        r.newID(existing),
		Title:     &title,
		Completed: completed,
		UserID:    userID,
		DueDate:   dueDate,
	}

	existing = append(existing, task)
	if err := r.writeRaw(ctx, existing); err != nil {
		return Task{}, err
	}

	return task.toTask(), nil
}

// newID picks a fresh id: current millis plus a random offset, resampled
// until it collides with nothing currently stored.
func (r *Repository) newID(existing []storedTask) int64 {
	ids := make(map[int64]bool, len(existing))
	for _, t := range existing {
		ids[t.ID] = true
	}

	candidate := r.now().UnixMilli() + int64(r.randInt(1000))
	for ids[candidate] {
		candidate = r.now().UnixMilli() + int64(r.randInt(1000))
	}
	return candidate
}

// Update replaces the entry whose id matches and writes the collection back.
// A missing id is a silent no-op, not an error. The collection is loaded
// with List semantics, so an empty store seeds from remote first; hidden
// records pass through untouched.
func (r *Repository) Update(ctx context.Context, task Task) (Task, error) {
	stored, err := r.loadRaw(ctx)
	if errors.Is(err, storage.ErrKeyNotFound) {
		stored, err = r.seed(ctx)
	}
	if err != nil {
		return Task{}, err
	}

	stored = dedupeByID(stored)
	for i := range stored {
		if stored[i].ID == task.ID {
			stored[i] = fromTask(task)
		} else if stored[i].Title == nil {
			title := placeholderTitle(stored[i].ID)
			stored[i].Title = &title
		}
	}

	if err := r.writeRaw(ctx, stored); err != nil {
		return Task{}, err
	}
	return task, nil
}

// ToggleComplete flips the completed flag on one entry, in place, cheaply.
// It reads and writes the raw stored collection: no title validation, no
// placeholder pass, no remote call. An empty store is a no-op.
func (r *Repository) ToggleComplete(ctx context.Context, id int64, completed bool) error {
	stored, err := r.loadRaw(ctx)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for i := range stored {
		if stored[i].ID == id {
			stored[i].Completed = completed
		}
	}

	return r.writeRaw(ctx, stored)
}

// Delete removes every task whose id is in ids: one read, one filter over
// the whole id set, one write. Ids not present are skipped silently; only a
// wholly absent collection is an error.
func (r *Repository) Delete(ctx context.Context, ids []int64) error {
	stored, err := r.loadRaw(ctx)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return ErrNoTasks
	}
	if err != nil {
		return err
	}

	doomed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	kept := stored[:0]
	for _, t := range stored {
		if !doomed[t.ID] {
			kept = append(kept, t)
		}
	}

	return r.writeRaw(ctx, kept)
}

func (r *Repository) loadRaw(ctx context.Context) ([]storedTask, error) {
	raw, err := r.store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("read local store: %w", err)
	}

	var stored []storedTask
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("parse local store: %w", err)
	}
	return stored, nil
}

func (r *Repository) writeRaw(ctx context.Context, stored []storedTask) error {
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := r.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return nil
}

// dedupeByID drops earlier duplicates: the last occurrence of an id wins and
// keeps its own position.
func dedupeByID(stored []storedTask) []storedTask {
	last := make(map[int64]int, len(stored))
	for i, t := range stored {
		last[t.ID] = i
	}

	out := make([]storedTask, 0, len(stored))
	for i, t := range stored {
		if last[t.ID] == i {
			out = append(out, t)
		}
	}
	return out
}

// visible converts stored records to tasks for callers: missing titles get
// the placeholder, blank titles hide the record without deleting it.
func visible(stored []storedTask) []Task {
	out := make([]Task, 0, len(stored))
	for _, st := range stored {
		if st.Title == nil {
			t := st.toTask()
			t.Title = placeholderTitle(st.ID)
			out = append(out, t)
			continue
		}
		if strings.TrimSpace(*st.Title) == "" {
			continue
		}
		out = append(out, st.toTask())
	}
	return out
}
