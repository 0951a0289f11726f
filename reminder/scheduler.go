// Package reminder computes and registers due-date notification triggers.
// Registered triggers are owned by the Notifier once scheduled; the
// scheduler only holds their handles for later cancellation.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Notifier is the platform notification capability the scheduler registers
// triggers with. Nothing may be scheduled before permission is granted.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, at time.Time, title, body string) (handle string, err error)
	Cancel(ctx context.Context, handle string) error
}

// dueSoonLead is how far ahead of the due time the early reminder fires.
const dueSoonLead = 5 * time.Minute

// Scheduler registers up to two triggers per task: an early reminder five
// minutes ahead and one at the due time itself. Triggers are keyed by task
// id so rescheduling one task never cancels another's.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time

	mu      sync.Mutex
	granted *bool
	handles map[int64][]string
}

// NewScheduler creates a scheduler over the given notifier.
func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		now:      time.Now,
		handles:  map[int64][]string{},
	}
}

// Schedule supersedes any triggers previously registered for the task and
// registers a new pair for dueAt. Depending on how far out dueAt is, zero,
// one, or both triggers register: past due dates register nothing, and a due
// date under five minutes out only gets the due trigger.
//
// Without notification permission this is a no-op; the caller decides how to
// surface that. A registration failure is returned for reporting but never
// rolls back whatever did register.
func (s *Scheduler) Schedule(ctx context.Context, taskID int64, title string, dueAt time.Time) error {
	granted, err := s.permission(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return nil
	}

	s.CancelTask(ctx, taskID)

	now := s.now()
	var handles []string
	var errs []error

	fiveMinBefore := dueAt.Add(-dueSoonLead).Truncate(time.Minute)
	if fiveMinBefore.After(now) {
		handle, err := s.notifier.Schedule(ctx, fiveMinBefore,
			"To-Do Reminder", fmt.Sprintf("%q is due in 5 minutes", title))
		if err != nil {
			errs = append(errs, err)
		} else {
			handles = append(handles, handle)
		}
	}

	if dueAt.After(now) {
		handle, err := s.notifier.Schedule(ctx, dueAt,
			"To-Do Due", fmt.Sprintf("%q is now due", title))
		if err != nil {
			errs = append(errs, err)
		} else {
			handles = append(handles, handle)
		}
	}

	if len(handles) > 0 {
		s.mu.Lock()
		s.handles[taskID] = handles
		s.mu.Unlock()
	}

	return errors.Join(errs...)
}

// CancelTask cancels the task's registered triggers, if any. Cancellation is
// best-effort: a handle the notifier no longer knows is not an error.
func (s *Scheduler) CancelTask(ctx context.Context, taskID int64) {
	s.mu.Lock()
	handles := s.handles[taskID]
	delete(s.handles, taskID)
	s.mu.Unlock()

	for _, handle := range handles {
		s.notifier.Cancel(ctx, handle)
	}
}

// permission asks the notifier once and caches the answer.
func (s *Scheduler) permission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.granted != nil {
		return *s.granted, nil
	}

	granted, err := s.notifier.RequestPermission(ctx)
	if err != nil {
		return false, err
	}
	s.granted = &granted
	return granted, nil
}
