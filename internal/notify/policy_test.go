package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub/internal/model"
)

func taskWithDeadline(deadline time.Time, reminders string) *model.Task {
	return &model.Task{
		ID:        1,
		GroupID:   10,
		Title:     "Essay",
		Status:    model.TaskStatusOpen,
		Deadline:  &deadline,
		Reminders: reminders,
	}
}

func TestPolicy_Evaluate_WindowBoundaries(t *testing.T) {
	p := NewPolicy([]int{24, 6, 1})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		hoursUntil    time.Duration
		wantThreshold int // 0 means no active bucket
	}{
		{"exactly at threshold is inside", 24 * time.Hour, 24},
		{"just inside the window", 23*time.Hour + 30*time.Minute, 24},
		{"lower edge is outside", 23 * time.Hour, 0},
		{"between windows", 12 * time.Hour, 0},
		{"six hour threshold", 6 * time.Hour, 6},
		{"five and a half hours", 5*time.Hour + 30*time.Minute, 6},
		{"one hour threshold", 1 * time.Hour, 1},
		{"thirty minutes", 30 * time.Minute, 1},
		{"deadline passed", -1 * time.Hour, 0},
		{"far out", 48 * time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := taskWithDeadline(now.Add(tt.hoursUntil), "")
			bucket := p.Evaluate(now, task)
			if tt.wantThreshold == 0 {
				assert.Nil(t, bucket)
				return
			}
			require.NotNil(t, bucket)
			assert.Equal(t, tt.wantThreshold, bucket.Threshold)
		})
	}
}

func TestPolicy_Evaluate_Classification(t *testing.T) {
	p := NewPolicy([]int{48, 6, 1})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		hoursUntil time.Duration
		wantClass  string
	}{
		{47*time.Hour + 30*time.Minute, ClassReminder},
		{5*time.Hour + 30*time.Minute, ClassWarning},
		{45 * time.Minute, ClassUrgent},
	}

	for _, tt := range tests {
		task := taskWithDeadline(now.Add(tt.hoursUntil), "")
		bucket := p.Evaluate(now, task)
		require.NotNil(t, bucket)
		assert.Equal(t, tt.wantClass, bucket.Class)
	}
}

func TestPolicy_Evaluate_SkipsDoneAndNoDeadline(t *testing.T) {
	p := NewPolicy(nil)
	now := time.Now()

	done := taskWithDeadline(now.Add(6*time.Hour), "")
	done.Status = model.TaskStatusDone
	assert.Nil(t, p.Evaluate(now, done))

	noDeadline := &model.Task{ID: 2, Status: model.TaskStatusOpen}
	assert.Nil(t, p.Evaluate(now, noDeadline))
}

func TestPolicy_ThresholdsFor_CustomReminders(t *testing.T) {
	p := NewPolicy([]int{24, 6, 1})

	tests := []struct {
		name      string
		reminders string
		want      []int
	}{
		{"custom list", "[48,12]", []int{48, 12}},
		{"unsorted is sorted descending", "[1,24,6]", []int{24, 6, 1}},
		{"duplicates dropped", "[12,12,2]", []int{12, 2}},
		{"non-positive dropped", "[0,-5,8]", []int{8}},
		{"empty falls back", "[]", []int{24, 6, 1}},
		{"garbage falls back", "not json", []int{24, 6, 1}},
		{"all invalid falls back", "[0,-1]", []int{24, 6, 1}},
		{"blank falls back", "", []int{24, 6, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := taskWithDeadline(time.Now(), tt.reminders)
			assert.Equal(t, tt.want, p.ThresholdsFor(task))
		})
	}
}

func TestPolicy_Evaluate_CustomThresholdWindow(t *testing.T) {
	p := NewPolicy([]int{24, 6, 1})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	task := taskWithDeadline(now.Add(11*time.Hour+30*time.Minute), "[48,12]")
	bucket := p.Evaluate(now, task)
	require.NotNil(t, bucket)
	assert.Equal(t, 12, bucket.Threshold)
	assert.Equal(t, ClassReminder, bucket.Class)
}

func TestPolicy_Evaluate_AdjacentThresholdsStayDisjoint(t *testing.T) {
	// Thresholds one hour apart give back-to-back windows; each instant
	// falls into at most one of them.
	p := NewPolicy([]int{3, 2})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	bucket := p.Evaluate(now, taskWithDeadline(now.Add(2*time.Hour+30*time.Minute), ""))
	require.NotNil(t, bucket)
	assert.Equal(t, 3, bucket.Threshold)

	bucket = p.Evaluate(now, taskWithDeadline(now.Add(1*time.Hour+30*time.Minute), ""))
	require.NotNil(t, bucket)
	assert.Equal(t, 2, bucket.Threshold)
}
