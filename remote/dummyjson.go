// Package remote implements todo.RemoteSource against the public demo
// todos API. The API is demo-only: reads are real, writes don't persist,
// which is why the repository only ever seeds from it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"remindo/todo"
)

// DefaultBaseURL is the public demo API endpoint.
const DefaultBaseURL = "https://dummyjson.com"

var ErrAddFailed = errors.New("remote add failed")

// API is an HTTP client for the demo todos API.
type API struct {
	baseURL    string
	userID     int
	httpClient *http.Client
}

// NewAPI creates a client. An empty baseURL falls back to DefaultBaseURL;
// userID scopes the seed fetch and defaults to 1.
func NewAPI(baseURL string, userID int) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userID == 0 {
		userID = 1
	}

	return &API{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchTodos fetches the owner's task collection. The API answers with
// either {"todos": [...]} or a bare array; both are accepted.
func (a *API) FetchTodos(ctx context.Context) ([]todo.Task, error) {
	url := fmt.Sprintf("%s/todos/user/%d", a.baseURL, a.userID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var wrapped struct {
		Todos []todo.Task `json:"todos"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Todos != nil {
		return wrapped.Todos, nil
	}

	var bare []todo.Task
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return bare, nil
}

// AddTodo posts a new task to the demo API. The response, when the call
// succeeds, carries the server's defaults; callers must not trust its id.
func (a *API) AddTodo(ctx context.Context, title string, completed bool, userID int) (todo.Task, error) {
	reqBody := struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
		UserID    int    `json:"userId"`
	}{title, completed, userID}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return todo.Task{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/todos/add", bytes.NewReader(jsonBody))
	if err != nil {
		return todo.Task{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return todo.Task{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return todo.Task{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			return todo.Task{}, fmt.Errorf("%w: %s", ErrAddFailed, errResp.Message)
		}
		return todo.Task{}, fmt.Errorf("%w: status %d", ErrAddFailed, resp.StatusCode)
	}

	var task todo.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return todo.Task{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return task, nil
}
