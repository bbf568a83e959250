package repository

import (
	"context"
	"database/sql"
	"fmt"

	"minicrm/internal/model"
)

// TaskRepository defines operations for task data
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindUpcomingByUser(ctx context.Context, userID, limit int) ([]model.Task, error)
	CountByUserAndStatus(ctx context.Context, userID int, status string) (int, error)
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create inserts a new task into the database
func (r *taskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `INSERT INTO tasks (title, description, due_date, status, priority, user_id, customer_id, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Description, t.DueDate, t.Status, t.Priority, t.UserID, t.CustomerID, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindUpcomingByUser retrieves the user's tasks ordered by due date
// ascending, capped at limit. Tasks without a due date sort last; the
// "due_date IS NULL" key pins that on both sqlite and postgres, which
// disagree on bare NULL ordering.
func (r *taskRepository) FindUpcomingByUser(ctx context.Context, userID, limit int) ([]model.Task, error) {
	query := `SELECT id, title, description, due_date, status, priority, user_id, customer_id, created_at
              FROM tasks WHERE user_id = $1 ORDER BY due_date IS NULL, due_date, id LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.Priority,
			&t.UserID, &t.CustomerID, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// CountByUserAndStatus counts the user's tasks with the given status
func (r *taskRepository) CountByUserAndStatus(ctx context.Context, userID int, status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, userID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks by status: %w", err)
	}
	return count, nil
}
