package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"remindo/cache"
	"remindo/commands"
	"remindo/config"
	"remindo/reminder"
	"remindo/remote"
	"remindo/storage"
	"remindo/todo"
)

func main() {
	// .env is optional; the environment wins either way
	godotenv.Load()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	api := remote.NewAPI(cfg.APIBaseURL, cfg.UserID)
	repo := todo.NewRepository(store, api)
	repo.RequireRemoteAdd(cfg.RequireRemoteAdd)

	notifier := reminder.NewTimerNotifier(os.Stdout)
	defer notifier.Close()

	commands.SetRepository(repo)
	commands.SetCache(cache.New(cfg.CacheStale))
	commands.SetScheduler(reminder.NewScheduler(notifier))

	rl, err := readline.New("> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("Welcome to Remindo! Type /help for available commands.")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := commands.Execute(input)
			if err != nil {
				fmt.Printf("%v. Type /help for available commands.\n", err)
				continue
			}
			if quit {
				break
			}
		} else {
			fmt.Println("Type /help for available commands.")
		}
	}
}

// openStore picks the storage backend from configuration.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return storage.NewPostgresStore(cfg.DatabaseURL)
	case "memory":
		return storage.NewMemoryStore(), nil
	case "json":
		return storage.NewJSONStore(cfg.StorePath)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}
