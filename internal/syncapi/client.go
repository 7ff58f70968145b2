package syncapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

// ErrNoActiveSession indicates the remote store has no active session.
var ErrNoActiveSession = errors.New("no active session")

// APIError is a non-2xx response from the remote store.
type APIError struct {
	Status int
	Body   string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("remote store returned %d: %s", err.Status, err.Body)
}

// Client talks to the remote pomodoro backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. The token, when not
// empty, is sent as a bearer credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ActiveSession pulls the authoritative timer state. It returns
// ErrNoActiveSession when none is active.
func (client *Client) ActiveSession(ctx context.Context) (model.RemoteState, error) {
	var response activeSessionResponse
	err := client.do(ctx, http.MethodGet, "/sessions/active", nil, &response)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return model.RemoteState{}, ErrNoActiveSession
		}
		return model.RemoteState{}, err
	}
	return response.toModel(), nil
}

// UpdateActiveSession pushes a partial timer-state update.
func (client *Client) UpdateActiveSession(ctx context.Context, patch model.StatePatch) error {
	return client.do(ctx, http.MethodPatch, "/sessions/active", patchToWire(patch), nil)
}

// StartActiveSession activates the given session on the remote store.
func (client *Client) StartActiveSession(ctx context.Context, sessionID int) error {
	path := fmt.Sprintf("/sessions/%d/start", sessionID)
	return client.do(ctx, http.MethodPost, path, nil, nil)
}

// Session fetches a session's pomodoro configuration.
func (client *Client) Session(ctx context.Context, sessionID int) (model.SessionConfig, error) {
	var response sessionResponse
	path := fmt.Sprintf("/sessions/%d", sessionID)
	if err := client.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return model.SessionConfig{}, err
	}
	return response.toModel(), nil
}

// Schedule asks the schedule builder for an ordered task queue covering the
// given sessions.
func (client *Client) Schedule(ctx context.Context, sessionIDs []int) (model.Schedule, error) {
	var response scheduleResponse
	request := scheduleRequest{SessionIDs: sessionIDs}
	if err := client.do(ctx, http.MethodPost, "/scheduler/", request, &response); err != nil {
		return model.Schedule{}, err
	}
	return response.toModel(), nil
}

// CompleteTask marks a task completed on the remote store.
func (client *Client) CompleteTask(ctx context.Context, taskID int) error {
	path := fmt.Sprintf("/tasks/%d/complete", taskID)
	return client.do(ctx, http.MethodPost, path, nil, nil)
}

// UncompleteTask clears a task's completed flag on the remote store.
func (client *Client) UncompleteTask(ctx context.Context, taskID int) error {
	path := fmt.Sprintf("/tasks/%d/uncomplete", taskID)
	return client.do(ctx, http.MethodPost, path, nil, nil)
}

func (client *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if client.token != "" {
		request.Header.Set("Authorization", "Bearer "+client.token)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &APIError{Status: response.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
