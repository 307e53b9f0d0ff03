package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"studyhub/pkg/metrics"
)

// Key kinds.
const (
	KindReminder = "reminder"
	KindOverdue  = "overdue"
)

// Key identifies one notification occasion: a reminder key fires at
// most once ever per (task, threshold); an overdue key fires at most
// once per (task, calendar day).
type Key struct {
	Kind      string
	TaskID    int
	Threshold int    // reminder keys
	Date      string // overdue keys, YYYY-MM-DD
}

func ReminderKey(taskID, threshold int) Key {
	return Key{Kind: KindReminder, TaskID: taskID, Threshold: threshold}
}

func OverdueKey(taskID int, date string) Key {
	return Key{Kind: KindOverdue, TaskID: taskID, Date: date}
}

func (k Key) String() string {
	if k.Kind == KindOverdue {
		return fmt.Sprintf("%s:%d:%s", k.Kind, k.TaskID, k.Date)
	}
	return fmt.Sprintf("%s:%d:%d", k.Kind, k.TaskID, k.Threshold)
}

// ParseKey parses the string form produced by Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("malformed dedup key: %q", s)
	}

	taskID, err := strconv.Atoi(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("malformed dedup key: %q", s)
	}

	switch parts[0] {
	case KindReminder:
		threshold, err := strconv.Atoi(parts[2])
		if err != nil {
			return Key{}, fmt.Errorf("malformed dedup key: %q", s)
		}
		return ReminderKey(taskID, threshold), nil
	case KindOverdue:
		return OverdueKey(taskID, parts[2]), nil
	default:
		return Key{}, fmt.Errorf("unknown dedup key kind: %q", s)
	}
}

// Tracker records which notification occasions have already fired.
// TryClaim is atomic check-then-insert: it returns true only the first
// time a key is claimed. Purge removes every key the predicate marks
// stale and returns how many were removed.
//
// Implementations never fail a claim on internal errors; they fail
// open and grant it, trading a possible duplicate notification for
// never silently losing one.
type Tracker interface {
	TryClaim(ctx context.Context, key Key) bool
	Purge(ctx context.Context, stale func(Key) bool) int
}

// MemoryTracker is the default Tracker: a mutex-guarded set. The
// scanner is its only writer, but TryClaim stays atomic so a future
// parallel scan cannot double-fire.
type MemoryTracker struct {
	mu   sync.Mutex
	keys map[Key]struct{}
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{keys: make(map[Key]struct{})}
}

func (t *MemoryTracker) TryClaim(_ context.Context, key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.keys[key]; ok {
		metrics.IncrementDedupRejections(key.Kind)
		return false
	}
	t.keys[key] = struct{}{}
	return true
}

func (t *MemoryTracker) Purge(_ context.Context, stale func(Key) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key := range t.keys {
		if stale(key) {
			delete(t.keys, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live keys.
func (t *MemoryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.keys)
}
