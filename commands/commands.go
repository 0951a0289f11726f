package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"remindo/cache"
	"remindo/reminder"
	"remindo/todo"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Handler     func(args []string) bool // returns true to quit
}

var (
	registry  = make(map[string]*Command)
	repo      *todo.Repository
	taskCache *cache.Cache
	scheduler *reminder.Scheduler
)

// Register adds a command to the registry
func Register(cmd *Command) {
	registry[strings.ToLower(cmd.Name)] = cmd
}

// SetRepository sets the task repository for commands to use
func SetRepository(r *todo.Repository) {
	repo = r
}

// GetRepository returns the task repository
func GetRepository() *todo.Repository {
	return repo
}

// SetCache sets the read cache for commands to use
func SetCache(c *cache.Cache) {
	taskCache = c
}

// GetCache returns the read cache
func GetCache() *cache.Cache {
	return taskCache
}

// SetScheduler sets the reminder scheduler for commands to use
func SetScheduler(s *reminder.Scheduler) {
	scheduler = s
}

// GetScheduler returns the reminder scheduler
func GetScheduler() *reminder.Scheduler {
	return scheduler
}

// Execute runs a command by name with arguments
func Execute(input string) (bool, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false, fmt.Errorf("empty command")
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, exists := registry[cmdName]
	if !exists {
		return false, fmt.Errorf("unknown command: %s", cmdName)
	}

	return cmd.Handler(args), nil
}

// ExecuteWithOutput runs a command and returns its captured stdout output
func ExecuteWithOutput(input string) (quit bool, output string, err error) {
	// Save original stdout
	oldStdout := os.Stdout

	// Create a pipe
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		return false, "", fmt.Errorf("failed to create pipe: %w", pipeErr)
	}

	// Redirect stdout to the pipe
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	// Read in a goroutine to prevent pipe buffer deadlock
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	// Run the command
	quit, err = Execute(input)

	// Close the write end of the pipe and wait for read to complete
	w.Close()
	<-done
	r.Close()

	output = strings.TrimSpace(buf.String())
	return quit, output, err
}

// List returns all registered commands
func List() []*Command {
	cmds := make([]*Command, 0, len(registry))
	for _, cmd := range registry {
		cmds = append(cmds, cmd)
	}
	return cmds
}
