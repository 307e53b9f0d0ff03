package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTracker_TryClaim_FirstClaimWins(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	key := ReminderKey(57, 24)
	assert.True(t, tracker.TryClaim(ctx, key))
	assert.False(t, tracker.TryClaim(ctx, key))
	assert.False(t, tracker.TryClaim(ctx, key))

	// A different threshold for the same task is a different occasion.
	assert.True(t, tracker.TryClaim(ctx, ReminderKey(57, 6)))
	// As is the same task on the overdue track.
	assert.True(t, tracker.TryClaim(ctx, OverdueKey(57, "2024-03-01")))
}

func TestMemoryTracker_TryClaim_Concurrent(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()
	key := ReminderKey(1, 24)

	const goroutines = 32
	var wg sync.WaitGroup
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- tracker.TryClaim(ctx, key)
		}()
	}
	wg.Wait()
	close(results)

	claimed := 0
	for ok := range results {
		if ok {
			claimed++
		}
	}
	assert.Equal(t, 1, claimed, "exactly one concurrent claim must win")
}

func TestMemoryTracker_Purge(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	tracker.TryClaim(ctx, ReminderKey(1, 24))
	tracker.TryClaim(ctx, ReminderKey(2, 24))
	tracker.TryClaim(ctx, OverdueKey(1, "2024-03-01"))

	removed := tracker.Purge(ctx, func(k Key) bool { return k.TaskID == 1 })
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, tracker.Len())

	// The purged key can be claimed again.
	assert.True(t, tracker.TryClaim(ctx, ReminderKey(1, 24)))
}

func TestKey_StringAndParse(t *testing.T) {
	tests := []Key{
		ReminderKey(57, 24),
		ReminderKey(3, 1),
		OverdueKey(57, "2024-03-01"),
	}

	for _, key := range tests {
		parsed, err := ParseKey(key.String())
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, s := range []string{"", "reminder", "reminder:x:24", "reminder:57:x", "bogus:57:24"} {
		_, err := ParseKey(s)
		assert.Error(t, err, "expected error for %q", s)
	}
}
