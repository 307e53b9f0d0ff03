package model

import (
	"fmt"
	"time"
)

// Notification event types pushed to connected clients.
const (
	NotifyNewTask           = "NEW_TASK"
	NotifyTaskStatusChanged = "TASK_STATUS_CHANGED"
	NotifyNewGroup          = "NEW_GROUP"
	NotifyNewMember         = "NEW_MEMBER"
	NotifyNewResource       = "NEW_RESOURCE"
	NotifyDeadlineReminder  = "DEADLINE_REMINDER"
	NotifyDeadlineWarning   = "DEADLINE_WARNING"
	NotifyDeadlineUrgent    = "DEADLINE_URGENT"
	NotifyDeadlineOverdue   = "DEADLINE_OVERDUE"
)

// Notification is the wire-level event sent to every connected client,
// one JSON object per websocket frame. GroupID, TaskID and UserID are
// nullable depending on the event kind. Immutable once composed.
type Notification struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	GroupID   *int      `json:"groupId"`
	TaskID    *int      `json:"taskId"`
	UserID    *int      `json:"userId"`
	Timestamp Timestamp `json:"timestamp"`
}

const timestampLayout = "2006-01-02T15:04:05"

// Timestamp serializes as a local date-time without zone offset,
// e.g. "2024-03-01T10:00:00", matching what clients expect.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(timestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp: %s", s)
	}
	parsed, err := time.Parse(timestampLayout, s[1:len(s)-1])
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
