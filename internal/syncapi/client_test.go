package syncapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

func TestActiveSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/sessions/active", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"time_remaining": 1287,
			"is_running": true,
			"phase": "focus",
			"current_task_id": 4,
			"session_id": 2,
			"pomodoros_completed": 1
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sekrit")
	state, err := client.ActiveSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1287, state.TimeRemaining)
	assert.True(t, state.IsRunning)
	assert.Equal(t, model.PhaseFocus, state.Phase)
	require.NotNil(t, state.CurrentTaskID)
	assert.Equal(t, 4, *state.CurrentTaskID)
	require.NotNil(t, state.SessionID)
	assert.Equal(t, 2, *state.SessionID)
	assert.Equal(t, 1, state.PomodorosCompleted)
}

func TestActiveSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "No active session"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.ActiveSession(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestActiveSessionUnknownPhaseFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"time_remaining": 10, "phase": "siesta"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	state, err := client.ActiveSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.PhaseFocus, state.Phase)
}

func TestUpdateActiveSessionOmitsNilFields(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/sessions/active", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.UpdateActiveSession(context.Background(), model.StatePatch{
		CurrentTaskID: model.IntPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"current_task_id": float64(5)}, captured,
		"unset fields must stay out of the payload")
}

func TestUpdateActiveSessionFullPatch(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.UpdateActiveSession(context.Background(), model.StatePatch{
		TimeRemaining:      model.IntPtr(300),
		IsRunning:          model.BoolPtr(false),
		Phase:              model.PhasePtr(model.PhaseLongBreak),
		CurrentTaskID:      model.IntPtr(9),
		PomodorosCompleted: model.IntPtr(4),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"time_remaining":      float64(300),
		"is_running":          false,
		"phase":               "long_break",
		"current_task_id":     float64(9),
		"pomodoros_completed": float64(4),
	}, captured)
}

func TestStartActiveSession(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		path = r.URL.Path
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	require.NoError(t, client.StartActiveSession(context.Background(), 12))
	assert.Equal(t, "/sessions/12/start", path)
}

func TestSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/3", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 3,
			"description": "thesis",
			"focus_duration": 50,
			"short_break_duration": 10,
			"long_break_duration": 30,
			"long_break_per_pomodoros": 2
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	config, err := client.Session(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, model.SessionConfig{
		ID:                 3,
		Description:        "thesis",
		FocusDuration:      50,
		ShortBreakDuration: 10,
		LongBreakDuration:  30,
		BreaksPerCycle:     2,
	}, config)
}

func TestSchedule(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scheduler/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{
			"scheduled_tasks": [
				{"id": 4, "name": "outline", "estimated_completion_time": 25, "session_id": 2, "category": "writing"},
				{"id": 6, "name": "cite sources", "estimated_completion_time": 50, "session_id": 3, "category": "research"}
			],
			"total_schedule_time": 75
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	schedule, err := client.Schedule(context.Background(), []int{2, 3})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"session_ids": []any{float64(2), float64(3)}}, captured)
	assert.Equal(t, 75, schedule.TotalMinutes)
	require.Len(t, schedule.Tasks, 2)
	assert.Equal(t, model.ScheduledTask{
		ID:               4,
		SessionID:        2,
		Name:             "outline",
		EstimatedMinutes: 25,
		Category:         "writing",
		OrderIndex:       0,
	}, schedule.Tasks[0])
	assert.Equal(t, 1, schedule.Tasks[1].OrderIndex)
}

func TestCompleteAndUncompleteTask(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	require.NoError(t, client.CompleteTask(context.Background(), 41))
	require.NoError(t, client.UncompleteTask(context.Background(), 41))
	assert.Equal(t, []string{"/tasks/41/complete", "/tasks/41/uncomplete"}, paths)
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session is locked", http.StatusConflict)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.StartActiveSession(context.Background(), 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "session is locked", apiErr.Body)
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	require.NoError(t, client.CompleteTask(context.Background(), 1))
}
