package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

const taskColumns = `id, group_id, created_by, title, COALESCE(description, ''), status, deadline, COALESCE(reminders, ''), created_at`

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	query := `
        INSERT INTO tasks (group_id, created_by, title, description, status, deadline, reminders, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		t.GroupID,
		t.CreatedBy,
		t.Title,
		t.Description,
		t.Status,
		t.Deadline,
		t.Reminders,
		t.CreatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Int("group_id", t.GroupID),
			zap.Error(err),
		)
		return 0, err
	}
	r.logger.Info("Task inserted",
		zap.Int("task_id", id),
		zap.Int("group_id", t.GroupID),
	)
	return id, nil
}

// FindByID returns (nil, nil) when no task with the id exists.
func (r *TaskRepository) FindByID(ctx context.Context, id int) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t model.Task
	err := scanTask(r.db.QueryRow(ctx, query, id), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find task", zap.Int("task_id", id), zap.Error(err))
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByGroup(ctx context.Context, groupID int) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE group_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Int("group_id", groupID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID int, status string) error {
	result, err := r.db.Exec(ctx, `UPDATE tasks SET status = $1 WHERE id = $2`, status, taskID)
	if err != nil {
		r.logger.Error("Failed to update task status",
			zap.Int("task_id", taskID),
			zap.String("status", status),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("Task status updated",
		zap.Int("task_id", taskID),
		zap.String("status", status),
	)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Int("task_id", taskID), zap.Error(err))
		return err
	}
	return nil
}

// FindWithDeadlineBetween returns non-DONE tasks with a deadline in
// (start, end]. This is the scanner's pass A query.
func (r *TaskRepository) FindWithDeadlineBetween(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE deadline IS NOT NULL AND deadline > $1 AND deadline <= $2 AND status != 'DONE'
    `
	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		r.logger.Error("Failed to query upcoming tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

// FindOverdue returns non-DONE tasks whose deadline has passed. This is
// the scanner's pass B query.
func (r *TaskRepository) FindOverdue(ctx context.Context, now time.Time) ([]model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE deadline IS NOT NULL AND deadline < $1 AND status != 'DONE'
    `
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.logger.Error("Failed to query overdue tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func scanTask(row pgx.Row, t *model.Task) error {
	return row.Scan(
		&t.ID,
		&t.GroupID,
		&t.CreatedBy,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Deadline,
		&t.Reminders,
		&t.CreatedAt,
	)
}

func collectTasks(rows pgx.Rows) ([]model.Task, error) {
	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
