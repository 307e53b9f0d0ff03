package notify

import (
	"encoding/json"
	"sort"
	"time"

	"studyhub/internal/model"
)

// Bucket classes, ordered by urgency.
const (
	ClassReminder = "REMINDER"
	ClassWarning  = "WARNING"
	ClassUrgent   = "URGENT"
)

// Bucket is an active reminder window for a task: the threshold (hours
// before deadline) whose 1-hour window the current time falls into.
type Bucket struct {
	Threshold int
	Class     string
}

// Policy decides which reminder threshold, if any, is active for a task
// at a given instant. Stateless; dedup is the tracker's job.
type Policy struct {
	// Defaults is the threshold list used when a task has no custom
	// reminders, sorted descending.
	Defaults []int
}

func NewPolicy(defaults []int) *Policy {
	if len(defaults) == 0 {
		defaults = []int{24, 6, 1}
	}
	return &Policy{Defaults: normalizeThresholds(defaults)}
}

// Evaluate returns the active bucket for the task at time now, or nil.
//
// A threshold T is active when hoursUntilDeadline is inside the
// half-open window (T-1, T]. The window is one hour wide because the
// scan period is one hour; a scan period other than the bucket width
// would miss or duplicate windows, so the two are kept in lockstep.
// Thresholds must therefore be spaced at least one hour apart; on a
// misconfigured list the largest matching threshold wins.
func (p *Policy) Evaluate(now time.Time, task *model.Task) *Bucket {
	if task.Deadline == nil || task.Status == model.TaskStatusDone {
		return nil
	}

	hoursUntil := task.Deadline.Sub(now).Hours()

	for _, t := range p.ThresholdsFor(task) {
		if hoursUntil <= float64(t) && hoursUntil > float64(t-1) {
			return &Bucket{Threshold: t, Class: classify(t)}
		}
	}
	return nil
}

// ThresholdsFor returns the task's custom thresholds when it has a
// parsable non-empty reminder list, otherwise the defaults. Malformed
// reminder data falls back silently; losing a custom threshold is
// recoverable, losing the default reminders is not.
func (p *Policy) ThresholdsFor(task *model.Task) []int {
	if task.Reminders == "" {
		return p.Defaults
	}

	var custom []int
	if err := json.Unmarshal([]byte(task.Reminders), &custom); err != nil {
		return p.Defaults
	}
	custom = normalizeThresholds(custom)
	if len(custom) == 0 {
		return p.Defaults
	}
	return custom
}

// normalizeThresholds sorts descending, drops non-positive values and
// duplicates.
func normalizeThresholds(thresholds []int) []int {
	seen := make(map[int]bool, len(thresholds))
	out := make([]int, 0, len(thresholds))
	for _, t := range thresholds {
		if t <= 0 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func classify(threshold int) string {
	switch {
	case threshold <= 1:
		return ClassUrgent
	case threshold <= 6:
		return ClassWarning
	default:
		return ClassReminder
	}
}
