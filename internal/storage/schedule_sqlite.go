package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jkalasas/pomotoro-app-sub000/internal/core/model"
)

const scheduleFileName = "schedule.db"

const scheduleSchema = `
CREATE TABLE IF NOT EXISTS schedule_tasks (
	id INTEGER PRIMARY KEY,
	session_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	estimated_minutes INTEGER NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	order_index INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS selected_sessions (
	session_id INTEGER PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS schedule_meta (
	key TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

// ScheduleStore caches the last-known schedule and session selection locally
// so the task queue can be shown before the next remote pull completes.
type ScheduleStore struct {
	db *sql.DB
}

// DefaultSchedulePath returns the schedule database location under the
// OS-standard configuration directory.
func DefaultSchedulePath(appName string) (string, error) {
	return resolveConfigPath(appName, scheduleFileName)
}

// OpenScheduleStore opens (creating if needed) the schedule cache at path.
func OpenScheduleStore(path string) (*ScheduleStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create schedule directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open schedule database: %w", err)
	}
	if _, err := db.Exec(scheduleSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schedule schema: %w", err)
	}
	return &ScheduleStore{db: db}, nil
}

// Close releases the database handle.
func (store *ScheduleStore) Close() error {
	return store.db.Close()
}

// SaveSchedule replaces the cached schedule and session selection.
func (store *ScheduleStore) SaveSchedule(schedule model.Schedule, selectedSessionIDs []int) error {
	tx, err := store.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schedule save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"schedule_tasks", "selected_sessions", "schedule_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, task := range schedule.Tasks {
		_, err := tx.Exec(
			`INSERT INTO schedule_tasks (id, session_id, name, estimated_minutes, category, completed, archived, order_index)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.SessionID, task.Name, task.EstimatedMinutes, task.Category,
			boolToInt(task.Completed), boolToInt(task.Archived), task.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("insert task %d: %w", task.ID, err)
		}
	}

	for _, sessionID := range selectedSessionIDs {
		if _, err := tx.Exec("INSERT INTO selected_sessions (session_id) VALUES (?)", sessionID); err != nil {
			return fmt.Errorf("insert selected session %d: %w", sessionID, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO schedule_meta (key, value) VALUES ('total_minutes', ?)", schedule.TotalMinutes); err != nil {
		return fmt.Errorf("insert schedule meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule save: %w", err)
	}
	return nil
}

// LoadSchedule returns the cached schedule and selected session ids. An empty
// cache yields an empty schedule, not an error.
func (store *ScheduleStore) LoadSchedule() (model.Schedule, []int, error) {
	rows, err := store.db.Query(
		`SELECT id, session_id, name, estimated_minutes, category, completed, archived, order_index
		 FROM schedule_tasks ORDER BY order_index`,
	)
	if err != nil {
		return model.Schedule{}, nil, fmt.Errorf("query schedule tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var schedule model.Schedule
	for rows.Next() {
		var task model.ScheduledTask
		var completed, archived int
		err := rows.Scan(&task.ID, &task.SessionID, &task.Name, &task.EstimatedMinutes,
			&task.Category, &completed, &archived, &task.OrderIndex)
		if err != nil {
			return model.Schedule{}, nil, fmt.Errorf("scan schedule task: %w", err)
		}
		task.Completed = completed != 0
		task.Archived = archived != 0
		schedule.Tasks = append(schedule.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return model.Schedule{}, nil, fmt.Errorf("iterate schedule tasks: %w", err)
	}

	var totalMinutes int
	err = store.db.QueryRow("SELECT value FROM schedule_meta WHERE key = 'total_minutes'").Scan(&totalMinutes)
	if err != nil && err != sql.ErrNoRows {
		return model.Schedule{}, nil, fmt.Errorf("query schedule meta: %w", err)
	}
	schedule.TotalMinutes = totalMinutes

	sessionRows, err := store.db.Query("SELECT session_id FROM selected_sessions ORDER BY session_id")
	if err != nil {
		return model.Schedule{}, nil, fmt.Errorf("query selected sessions: %w", err)
	}
	defer func() {
		_ = sessionRows.Close()
	}()

	var selected []int
	for sessionRows.Next() {
		var sessionID int
		if err := sessionRows.Scan(&sessionID); err != nil {
			return model.Schedule{}, nil, fmt.Errorf("scan selected session: %w", err)
		}
		selected = append(selected, sessionID)
	}
	if err := sessionRows.Err(); err != nil {
		return model.Schedule{}, nil, fmt.Errorf("iterate selected sessions: %w", err)
	}

	return schedule, selected, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
