package reminder

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimerNotifier is an in-process Notifier backed by time.AfterFunc. Fired
// triggers print to the writer; anything still pending dies with the
// process, which is the same lifetime the to-do session has.
type TimerNotifier struct {
	out io.Writer

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerNotifier creates a notifier writing to out (nil means stdout).
func NewTimerNotifier(out io.Writer) *TimerNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &TimerNotifier{
		out:    out,
		timers: map[string]*time.Timer{},
	}
}

// RequestPermission always grants: printing to the terminal needs none.
func (n *TimerNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// Schedule arms a timer for the trigger time and returns its handle.
func (n *TimerNotifier) Schedule(ctx context.Context, at time.Time, title, body string) (string, error) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	handle := uuid.NewString()
	timer := time.AfterFunc(delay, func() {
		fmt.Fprintf(n.out, "\n[%s] %s\n", title, body)

		n.mu.Lock()
		delete(n.timers, handle)
		n.mu.Unlock()
	})

	n.mu.Lock()
	n.timers[handle] = timer
	n.mu.Unlock()

	return handle, nil
}

// Cancel stops the timer for a handle. Unknown handles (already fired or
// cancelled) are not an error.
func (n *TimerNotifier) Cancel(ctx context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if timer, ok := n.timers[handle]; ok {
		timer.Stop()
		delete(n.timers, handle)
	}
	return nil
}

// Close stops every pending timer.
func (n *TimerNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for handle, timer := range n.timers {
		timer.Stop()
		delete(n.timers, handle)
	}
	return nil
}
