package syncapi

import "github.com/jkalasas/pomotoro-app-sub000/internal/core/model"

// Wire shapes mirror the backend's snake_case JSON schemas. All durations are
// minutes except time_remaining, which is seconds.

type activeSessionResponse struct {
	TimeRemaining      int    `json:"time_remaining"`
	IsRunning          bool   `json:"is_running"`
	Phase              string `json:"phase"`
	CurrentTaskID      *int   `json:"current_task_id"`
	SessionID          *int   `json:"session_id"`
	PomodorosCompleted int    `json:"pomodoros_completed"`
}

type activeSessionUpdate struct {
	TimeRemaining      *int    `json:"time_remaining,omitempty"`
	IsRunning          *bool   `json:"is_running,omitempty"`
	Phase              *string `json:"phase,omitempty"`
	CurrentTaskID      *int    `json:"current_task_id,omitempty"`
	PomodorosCompleted *int    `json:"pomodoros_completed,omitempty"`
}

type sessionResponse struct {
	ID                    int    `json:"id"`
	Description           string `json:"description"`
	FocusDuration         int    `json:"focus_duration"`
	ShortBreakDuration    int    `json:"short_break_duration"`
	LongBreakDuration     int    `json:"long_break_duration"`
	LongBreakPerPomodoros int    `json:"long_break_per_pomodoros"`
}

type scheduleRequest struct {
	SessionIDs []int `json:"session_ids"`
}

type scheduledTaskResponse struct {
	ID                      int    `json:"id"`
	Name                    string `json:"name"`
	EstimatedCompletionTime int    `json:"estimated_completion_time"`
	SessionID               int    `json:"session_id"`
	Category                string `json:"category"`
}

type scheduleResponse struct {
	ScheduledTasks    []scheduledTaskResponse `json:"scheduled_tasks"`
	TotalScheduleTime int                     `json:"total_schedule_time"`
}

func (response activeSessionResponse) toModel() model.RemoteState {
	phase := model.Phase(response.Phase)
	if !phase.Valid() {
		phase = model.PhaseFocus
	}
	return model.RemoteState{
		TimeRemaining:      response.TimeRemaining,
		IsRunning:          response.IsRunning,
		Phase:              phase,
		CurrentTaskID:      response.CurrentTaskID,
		SessionID:          response.SessionID,
		PomodorosCompleted: response.PomodorosCompleted,
	}
}

func patchToWire(patch model.StatePatch) activeSessionUpdate {
	update := activeSessionUpdate{
		TimeRemaining:      patch.TimeRemaining,
		IsRunning:          patch.IsRunning,
		CurrentTaskID:      patch.CurrentTaskID,
		PomodorosCompleted: patch.PomodorosCompleted,
	}
	if patch.Phase != nil {
		value := string(*patch.Phase)
		update.Phase = &value
	}
	return update
}

func (response sessionResponse) toModel() model.SessionConfig {
	return model.SessionConfig{
		ID:                 response.ID,
		Description:        response.Description,
		FocusDuration:      response.FocusDuration,
		ShortBreakDuration: response.ShortBreakDuration,
		LongBreakDuration:  response.LongBreakDuration,
		BreaksPerCycle:     response.LongBreakPerPomodoros,
	}
}

func (response scheduleResponse) toModel() model.Schedule {
	tasks := make([]model.ScheduledTask, 0, len(response.ScheduledTasks))
	for index, task := range response.ScheduledTasks {
		tasks = append(tasks, model.ScheduledTask{
			ID:               task.ID,
			SessionID:        task.SessionID,
			Name:             task.Name,
			EstimatedMinutes: task.EstimatedCompletionTime,
			Category:         task.Category,
			OrderIndex:       index,
		})
	}
	return model.Schedule{Tasks: tasks, TotalMinutes: response.TotalScheduleTime}
}
