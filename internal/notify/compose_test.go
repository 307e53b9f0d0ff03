package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub/internal/model"
)

var composeAt = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func TestCompose_Messages(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.Notification
		wantType string
		wantMsg  string
	}{
		{
			"task created",
			NewTaskCreated(composeAt, 10, 57, "Essay"),
			model.NotifyNewTask,
			"New task created: Essay",
		},
		{
			"status changed",
			TaskStatusChanged(composeAt, 10, 57, "Essay", model.TaskStatusDone),
			model.NotifyTaskStatusChanged,
			"Task 'Essay' status changed to: DONE",
		},
		{
			"group created",
			NewGroupCreated(composeAt, 10, "algebra"),
			model.NotifyNewGroup,
			"New group created: algebra",
		},
		{
			"member joined",
			NewMemberJoined(composeAt, 10, 3, "Alice"),
			model.NotifyNewMember,
			"Alice joined the group",
		},
		{
			"file shared",
			NewResourceShared(composeAt, 10, "notes.pdf", model.ResourceTypeFile),
			model.NotifyNewResource,
			"New file uploaded: notes.pdf",
		},
		{
			"url shared",
			NewResourceShared(composeAt, 10, "lecture recording", model.ResourceTypeURL),
			model.NotifyNewResource,
			"New URL shared: lecture recording",
		},
		{
			"reminder in hours",
			DeadlineReminder(composeAt, 10, 57, "Essay", 23),
			model.NotifyDeadlineReminder,
			"Reminder: Task 'Essay' deadline in 23 hours",
		},
		{
			"reminder in days",
			DeadlineReminder(composeAt, 10, 57, "Essay", 47),
			model.NotifyDeadlineReminder,
			"Reminder: Task 'Essay' deadline in 1 day(s)",
		},
		{
			"warning",
			DeadlineWarning(composeAt, 10, 57, "Essay", 5),
			model.NotifyDeadlineWarning,
			"Task 'Essay' deadline approaching! 5 hours remaining.",
		},
		{
			"urgent with minutes",
			DeadlineUrgent(composeAt, 10, 57, "Essay", 45),
			model.NotifyDeadlineUrgent,
			"Task 'Essay' deadline approaching! Only 45 minutes remaining!",
		},
		{
			"urgent under a minute",
			DeadlineUrgent(composeAt, 10, 57, "Essay", 0),
			model.NotifyDeadlineUrgent,
			"Task 'Essay' deadline approaching! Only less than 1 minute remaining!",
		},
		{
			"overdue",
			DeadlineOverdue(composeAt, 10, 57, "Essay"),
			model.NotifyDeadlineOverdue,
			"Task 'Essay' is overdue!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.event.Type)
			assert.Equal(t, tt.wantMsg, tt.event.Message)
			assert.Equal(t, composeAt, time.Time(tt.event.Timestamp))
		})
	}
}

func TestCompose_WireFormat(t *testing.T) {
	event := DeadlineWarning(composeAt, 10, 57, "Essay", 5)

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	assert.Equal(t, "DEADLINE_WARNING", raw["type"])
	assert.Equal(t, float64(10), raw["groupId"])
	assert.Equal(t, float64(57), raw["taskId"])
	assert.Equal(t, "2024-03-01T10:30:00", raw["timestamp"])
	assert.Nil(t, raw["userId"])

	var got model.Notification
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, event.Type, got.Type)
	assert.Equal(t, event.Message, got.Message)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, 10, *got.GroupID)
	require.NotNil(t, got.TaskID)
	assert.Equal(t, 57, *got.TaskID)
	assert.Equal(t, composeAt, got.Timestamp.Time())
}
