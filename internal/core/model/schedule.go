package model

// ScheduledTask is one element of the ordered task queue produced by the
// schedule builder.
type ScheduledTask struct {
	ID               int
	SessionID        int
	Name             string
	EstimatedMinutes int
	Category         string
	Completed        bool
	Archived         bool
	OrderIndex       int
}

// Schedule is the ordered task queue the engine advances through.
type Schedule struct {
	Tasks        []ScheduledTask
	TotalMinutes int
}

// CurrentTask returns the first task that is neither completed nor archived.
func (schedule Schedule) CurrentTask() (ScheduledTask, bool) {
	for _, task := range schedule.Tasks {
		if !task.Completed && !task.Archived {
			return task, true
		}
	}
	return ScheduledTask{}, false
}

// NextAfter returns the first incomplete, non-archived task ordered after the
// task with the given id. The second result is false when the queue is
// exhausted past that point or the id is unknown.
func (schedule Schedule) NextAfter(taskID int) (ScheduledTask, bool) {
	index := schedule.indexOf(taskID)
	if index < 0 {
		return ScheduledTask{}, false
	}
	for _, task := range schedule.Tasks[index+1:] {
		if !task.Completed && !task.Archived {
			return task, true
		}
	}
	return ScheduledTask{}, false
}

// MarkCompleted flags the task with the given id as completed. It reports
// whether the task was found.
func (schedule *Schedule) MarkCompleted(taskID int) bool {
	return schedule.setCompleted(taskID, true)
}

// MarkUncompleted clears the completed flag on the task with the given id.
func (schedule *Schedule) MarkUncompleted(taskID int) bool {
	return schedule.setCompleted(taskID, false)
}

// Task returns the task with the given id.
func (schedule Schedule) Task(taskID int) (ScheduledTask, bool) {
	index := schedule.indexOf(taskID)
	if index < 0 {
		return ScheduledTask{}, false
	}
	return schedule.Tasks[index], true
}

func (schedule *Schedule) setCompleted(taskID int, completed bool) bool {
	index := schedule.indexOf(taskID)
	if index < 0 {
		return false
	}
	schedule.Tasks[index].Completed = completed
	return true
}

func (schedule Schedule) indexOf(taskID int) int {
	for index, task := range schedule.Tasks {
		if task.ID == taskID {
			return index
		}
	}
	return -1
}
