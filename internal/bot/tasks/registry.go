package tasks

import (
	"context"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// Task is a named periodic job. Its schedule and enabled flag come from
// scheduler.tasks under the same name.
type Task struct {
	Name string
	Run  ScheduledTaskFunc
}

// RegisterAllTasks returns every periodic job in registration order.
func RegisterAllTasks(deps TaskDeps) []Task {
	tasks := []Task{
		{Name: "alarm_checker", Run: newAlarmCheckerTask(deps)},
		{Name: "sql_maintenance", Run: newSQLMaintenanceTask(deps)},
	}
	if deps.Feeds != nil {
		tasks = append(tasks, Task{Name: "rss_subscriber", Run: newRSSSubscriberTask(deps)})
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
