package notify

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/pkg/metrics"
)

const dateLayout = "2006-01-02"

// TaskStore is the slice of the task storage this package consumes.
// Read-only; the scanner never mutates a task.
type TaskStore interface {
	// FindWithDeadlineBetween returns non-DONE tasks whose deadline is
	// in (start, end].
	FindWithDeadlineBetween(ctx context.Context, start, end time.Time) ([]model.Task, error)
	// FindOverdue returns non-DONE tasks whose deadline is before now.
	FindOverdue(ctx context.Context, now time.Time) ([]model.Task, error)
	// FindByID returns (nil, nil) when the task does not exist.
	FindByID(ctx context.Context, id int) (*model.Task, error)
}

// Broadcaster is the emit side the scanner pushes into. Satisfied by
// *Notifier.
type Broadcaster interface {
	Publish(event *model.Notification)
}

// ScannerConfig are the recognized scanner options.
type ScannerConfig struct {
	Interval   time.Duration
	Lookahead  time.Duration
	Thresholds []int
}

// TaskError records one task whose evaluation failed; the rest of the
// pass is unaffected.
type TaskError struct {
	TaskID int
	Err    error
}

// ScanResult is what one pass did, so callers and tests can assert on
// exactly which tasks fired or failed.
type ScanResult struct {
	Checked  int
	Notified int
	Purged   int
	Failed   []TaskError
}

// Scanner runs the two periodic deadline passes: upcoming-threshold
// reminders and once-per-day overdue alerts. It owns the dedup tracker
// exclusively.
type Scanner struct {
	store    TaskStore
	tracker  Tracker
	policy   *Policy
	notifier Broadcaster
	cfg      ScannerConfig
	logger   *zap.Logger

	// now is swapped out in tests.
	now func() time.Time

	upcomingInFlight atomic.Bool
	overdueInFlight  atomic.Bool
}

func NewScanner(
	store TaskStore,
	tracker Tracker,
	notifier Broadcaster,
	cfg ScannerConfig,
	logger *zap.Logger,
) *Scanner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 72 * time.Hour
	}
	// Bucket windows are one hour wide; scanning on any other period
	// would miss or double-hit windows.
	if cfg.Interval != time.Hour {
		logger.Warn("Scan interval clamped to the 1h bucket width",
			zap.Duration("configured", cfg.Interval),
		)
		cfg.Interval = time.Hour
	}

	return &Scanner{
		store:    store,
		tracker:  tracker,
		policy:   NewPolicy(cfg.Thresholds),
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Run drives both passes on the configured interval until the context
// is cancelled. The first sweep runs immediately.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Deadline scanner stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scanner) sweep(ctx context.Context) {
	upcoming := s.ScanUpcoming(ctx)
	overdue := s.ScanOverdue(ctx)

	s.logger.Info("Deadline sweep completed",
		zap.Int("upcoming_checked", upcoming.Checked),
		zap.Int("upcoming_notified", upcoming.Notified),
		zap.Int("upcoming_failed", len(upcoming.Failed)),
		zap.Int("overdue_checked", overdue.Checked),
		zap.Int("overdue_notified", overdue.Notified),
		zap.Int("overdue_failed", len(overdue.Failed)),
		zap.Int("purged", upcoming.Purged+overdue.Purged),
	)
}

// ScanUpcoming is pass A: tasks with a deadline inside the lookahead
// window get their reminder thresholds evaluated, and first-time window
// crossings fire. A failure on one task is recorded and the pass moves
// on. Afterwards, reminder keys whose task is gone, DONE or already
// past deadline are purged.
func (s *Scanner) ScanUpcoming(ctx context.Context) ScanResult {
	if !s.upcomingInFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping upcoming pass, previous one still running")
		return ScanResult{}
	}
	defer s.upcomingInFlight.Store(false)

	start := time.Now()
	defer func() { metrics.RecordScanDuration("upcoming", time.Since(start)) }()

	now := s.now()
	var res ScanResult

	tasks, err := s.store.FindWithDeadlineBetween(ctx, now, now.Add(s.cfg.Lookahead))
	if err != nil {
		s.logger.Error("Failed to query upcoming tasks", zap.Error(err))
		res.Failed = append(res.Failed, TaskError{Err: err})
		return res
	}

	for i := range tasks {
		task := &tasks[i]
		res.Checked++
		if err := s.checkTask(ctx, now, task, &res); err != nil {
			res.Failed = append(res.Failed, TaskError{TaskID: task.ID, Err: err})
			s.logger.Error("Deadline check failed for task",
				zap.Int("task_id", task.ID),
				zap.Error(err),
			)
		}
	}

	res.Purged = s.tracker.Purge(ctx, s.staleReminderKey(ctx, now))
	return res
}

// checkTask evaluates one task's thresholds and fires at most one
// notification. Panics are contained here so a single bad task cannot
// take down the sweep.
func (s *Scanner) checkTask(ctx context.Context, now time.Time, task *model.Task, res *ScanResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating task: %v", r)
		}
	}()

	bucket := s.policy.Evaluate(now, task)
	if bucket == nil {
		return nil
	}

	if !s.tracker.TryClaim(ctx, ReminderKey(task.ID, bucket.Threshold)) {
		return nil
	}

	until := task.Deadline.Sub(now)
	hoursLeft := int(until.Hours())
	minutesLeft := int(until.Minutes())

	var event *model.Notification
	switch bucket.Class {
	case ClassUrgent:
		event = DeadlineUrgent(now, task.GroupID, task.ID, task.Title, minutesLeft)
	case ClassWarning:
		event = DeadlineWarning(now, task.GroupID, task.ID, task.Title, hoursLeft)
	default:
		event = DeadlineReminder(now, task.GroupID, task.ID, task.Title, hoursLeft)
	}

	s.notifier.Publish(event)
	res.Notified++

	s.logger.Info("Deadline notification fired",
		zap.Int("task_id", task.ID),
		zap.Int("threshold_hours", bucket.Threshold),
		zap.String("class", bucket.Class),
	)
	return nil
}

// ScanOverdue is pass B: every non-DONE task past its deadline fires an
// overdue alert, at most once per calendar day.
func (s *Scanner) ScanOverdue(ctx context.Context) ScanResult {
	if !s.overdueInFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping overdue pass, previous one still running")
		return ScanResult{}
	}
	defer s.overdueInFlight.Store(false)

	start := time.Now()
	defer func() { metrics.RecordScanDuration("overdue", time.Since(start)) }()

	now := s.now()
	today := now.Format(dateLayout)
	var res ScanResult

	tasks, err := s.store.FindOverdue(ctx, now)
	if err != nil {
		s.logger.Error("Failed to query overdue tasks", zap.Error(err))
		res.Failed = append(res.Failed, TaskError{Err: err})
		return res
	}

	for i := range tasks {
		task := &tasks[i]
		res.Checked++
		if err := s.alertOverdue(ctx, now, today, task, &res); err != nil {
			res.Failed = append(res.Failed, TaskError{TaskID: task.ID, Err: err})
			s.logger.Error("Overdue check failed for task",
				zap.Int("task_id", task.ID),
				zap.Error(err),
			)
		}
	}

	res.Purged = s.tracker.Purge(ctx, s.staleOverdueKey(ctx, today))
	return res
}

func (s *Scanner) alertOverdue(ctx context.Context, now time.Time, today string, task *model.Task, res *ScanResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating task: %v", r)
		}
	}()

	if task.Deadline == nil || task.Status == model.TaskStatusDone {
		return nil
	}

	if !s.tracker.TryClaim(ctx, OverdueKey(task.ID, today)) {
		return nil
	}

	s.notifier.Publish(DeadlineOverdue(now, task.GroupID, task.ID, task.Title))
	res.Notified++

	s.logger.Info("Overdue notification fired", zap.Int("task_id", task.ID))
	return nil
}

// staleReminderKey marks a reminder key for purging when its task is
// gone, finished, or already past its deadline. Store errors keep the
// key; wrongly purging risks a duplicate, which is the acceptable side.
func (s *Scanner) staleReminderKey(ctx context.Context, now time.Time) func(Key) bool {
	return func(key Key) bool {
		if key.Kind != KindReminder {
			return false
		}
		task, err := s.store.FindByID(ctx, key.TaskID)
		if err != nil {
			return false
		}
		if task == nil || task.Status == model.TaskStatusDone {
			return true
		}
		return task.Deadline != nil && task.Deadline.Before(now)
	}
}

// staleOverdueKey marks an overdue key for purging when its date is not
// today or its task is gone, finished, or no longer overdue.
func (s *Scanner) staleOverdueKey(ctx context.Context, today string) func(Key) bool {
	return func(key Key) bool {
		if key.Kind != KindOverdue {
			return false
		}
		if key.Date != today {
			return true
		}
		task, err := s.store.FindByID(ctx, key.TaskID)
		if err != nil {
			return false
		}
		return task == nil || task.Status == model.TaskStatusDone || task.Deadline == nil
	}
}
