package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Hazealign/black-angus-main/internal/bot/tasks"
	"github.com/Hazealign/black-angus-main/internal/config"
	"github.com/Hazealign/black-angus-main/internal/crontab"
	"github.com/Hazealign/black-angus-main/internal/logger"
)

// Scheduler manages scheduled tasks using the gocron library. Schedules are
// evaluated in the configured scheduler timezone, not the host's.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	tasks     []tasks.Task

	mu      sync.Mutex
	running bool
	jobs    map[string]gocron.Job
}

// NewScheduler creates a new scheduler instance using gocron. Extra options,
// such as gocron.WithClock in tests, are applied last.
func NewScheduler(log *slog.Logger, cfg *config.Config, taskList []tasks.Task, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "scheduler")

	options := append([]gocron.SchedulerOption{
		gocron.WithLocation(cfg.Location()),
		gocron.WithLogger(logger.NewGocronLogger(log)),
	}, opts...)

	s, err := gocron.NewScheduler(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log,
		cfg:       &cfg.Scheduler,
		tasks:     taskList,
		jobs:      make(map[string]gocron.Job),
	}, nil
}

// Start schedules every enabled task and starts ticking. Tasks run with a
// context derived from ctx that is not cancelled with it, so Stop can let
// running jobs finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	runCtx := context.WithoutCancel(ctx)
	for _, task := range s.tasks {
		taskConfig, ok := s.cfg.Tasks[task.Name]
		if !ok {
			s.logger.Warn("Task has no configuration, skipping", "task_name", task.Name)
			continue
		}
		if !taskConfig.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", task.Name)
			continue
		}
		if err := crontab.Validate(taskConfig.Schedule); err != nil {
			s.logger.Error("Invalid task schedule, skipping", "task_name", task.Name, "schedule", taskConfig.Schedule, "error", err)
			continue
		}

		jobOpts := []gocron.JobOption{gocron.WithName(task.Name)}
		if s.cfg.Overlap == config.OverlapSkip {
			jobOpts = append(jobOpts, gocron.WithSingletonMode(gocron.LimitModeReschedule))
		}

		name, run := task.Name, task.Run
		job, err := s.scheduler.NewJob(
			gocron.CronJob(taskConfig.Schedule, false),
			gocron.NewTask(func() { s.runTask(runCtx, name, run) }),
			jobOpts...,
		)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", task.Name, "schedule", taskConfig.Schedule, "error", err)
			continue
		}

		s.jobs[task.Name] = job
		s.logger.Info("Scheduled task", "task_name", task.Name, "schedule", taskConfig.Schedule)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.jobs), "timezone", s.cfg.Timezone, "overlap", s.cfg.Overlap)
	return nil
}

// runTask is the failure boundary of one job run.
func (s *Scheduler) runTask(ctx context.Context, name string, run tasks.ScheduledTaskFunc) {
	log := s.logger.With("task_name", name)
	startTime := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.ErrorContext(ctx, "Scheduled task panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
		}
	}()

	log.DebugContext(ctx, "Running scheduled task")
	if err := run(ctx); err != nil {
		log.ErrorContext(ctx, "Scheduled task failed", "error", err, "duration", time.Since(startTime))
		return
	}
	log.DebugContext(ctx, "Finished scheduled task", "duration", time.Since(startTime))
}

// Scheduled returns the names of the tasks that were registered with gocron.
func (s *Scheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, task := range s.tasks {
		if _, ok := s.jobs[task.Name]; ok {
			names = append(names, task.Name)
		}
	}
	return names
}

// RunNow runs the named task immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("task %q is not scheduled", name)
	}
	return job.RunNow()
}

// NextRun returns when the named task fires next.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return time.Time{}, fmt.Errorf("task %q is not scheduled", name)
	}
	return job.NextRun()
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop")
		return nil
	}

	s.logger.Debug("Stopping scheduler gracefully (waiting for jobs)")
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully")
	}

	s.running = false
	return err
}
