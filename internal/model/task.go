package model

import "time"

// Task status values. Status is stored as text, matching the enum the
// clients send.
const (
	TaskStatusOpen       = "OPEN"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

type Task struct {
	ID          int        `json:"id"`
	GroupID     int        `json:"group_id"`
	CreatedBy   int        `json:"created_by"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline"`
	// Reminders holds a JSON array of hours-before-deadline thresholds,
	// e.g. "[48,12,2]". Empty means the configured defaults apply.
	Reminders string    `json:"reminders"`
	CreatedAt time.Time `json:"created_at"`
}
