package model

import "time"

const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task is a to-do item owned by a user, optionally linked to a customer
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"` // Pointer for optional field
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	UserID      int        `json:"user_id"`
	CustomerID  *int       `json:"customer_id,omitempty"` // A task may exist without a customer
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateTaskRequest carries the add-task form fields. DueDate stays a raw
// string here; the service parses it with the YYYY-MM-DD layout.
type CreateTaskRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	DueDate     string `form:"due_date"`
	Priority    string `form:"priority"`
	CustomerID  string `form:"customer_id"`
}
