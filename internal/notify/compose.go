package notify

import (
	"fmt"
	"time"

	"studyhub/internal/model"
)

// Composers build wire-level notifications from internal events. All of
// them are pure: same inputs, same event. The caller supplies the
// timestamp so scans driven by an injected clock stay deterministic.

func NewTaskCreated(at time.Time, groupID, taskID int, title string) *model.Notification {
	return newNotification(model.NotifyNewTask, "New task created: "+title, at, &groupID, &taskID, nil)
}

func TaskStatusChanged(at time.Time, groupID, taskID int, title, newStatus string) *model.Notification {
	msg := fmt.Sprintf("Task '%s' status changed to: %s", title, newStatus)
	return newNotification(model.NotifyTaskStatusChanged, msg, at, &groupID, &taskID, nil)
}

func NewGroupCreated(at time.Time, groupID int, name string) *model.Notification {
	return newNotification(model.NotifyNewGroup, "New group created: "+name, at, &groupID, nil, nil)
}

func NewMemberJoined(at time.Time, groupID, userID int, memberName string) *model.Notification {
	return newNotification(model.NotifyNewMember, memberName+" joined the group", at, &groupID, nil, &userID)
}

func NewResourceShared(at time.Time, groupID int, title, resourceType string) *model.Notification {
	msg := "New URL shared: " + title
	if resourceType == model.ResourceTypeFile {
		msg = "New file uploaded: " + title
	}
	return newNotification(model.NotifyNewResource, msg, at, &groupID, nil, nil)
}

// DeadlineUrgent is the under-one-hour notification; minutesLeft of one
// or less reads as "less than 1 minute".
func DeadlineUrgent(at time.Time, groupID, taskID int, title string, minutesLeft int) *model.Notification {
	var msg string
	if minutesLeft <= 1 {
		msg = fmt.Sprintf("Task '%s' deadline approaching! Only less than 1 minute remaining!", title)
	} else {
		msg = fmt.Sprintf("Task '%s' deadline approaching! Only %d minutes remaining!", title, minutesLeft)
	}
	return newNotification(model.NotifyDeadlineUrgent, msg, at, &groupID, &taskID, nil)
}

func DeadlineWarning(at time.Time, groupID, taskID int, title string, hoursLeft int) *model.Notification {
	msg := fmt.Sprintf("Task '%s' deadline approaching! %d hours remaining.", title, hoursLeft)
	return newNotification(model.NotifyDeadlineWarning, msg, at, &groupID, &taskID, nil)
}

// DeadlineReminder switches to days once the deadline is a day or more out.
func DeadlineReminder(at time.Time, groupID, taskID int, title string, hoursLeft int) *model.Notification {
	var msg string
	if hoursLeft >= 24 {
		msg = fmt.Sprintf("Reminder: Task '%s' deadline in %d day(s)", title, hoursLeft/24)
	} else {
		msg = fmt.Sprintf("Reminder: Task '%s' deadline in %d hours", title, hoursLeft)
	}
	return newNotification(model.NotifyDeadlineReminder, msg, at, &groupID, &taskID, nil)
}

func DeadlineOverdue(at time.Time, groupID, taskID int, title string) *model.Notification {
	msg := fmt.Sprintf("Task '%s' is overdue!", title)
	return newNotification(model.NotifyDeadlineOverdue, msg, at, &groupID, &taskID, nil)
}

func newNotification(eventType, message string, at time.Time, groupID, taskID, userID *int) *model.Notification {
	return &model.Notification{
		Type:      eventType,
		Message:   message,
		GroupID:   groupID,
		TaskID:    taskID,
		UserID:    userID,
		Timestamp: model.Timestamp(at),
	}
}
