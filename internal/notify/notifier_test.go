package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type fakeRelay struct {
	mu       sync.Mutex
	keys     []string
	payloads []any
	err      error
}

func (f *fakeRelay) Publish(routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, routingKey)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestNotifier_BroadcastsToHub(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ch := &fakeChannel{}
	hub.Register(ch)

	notifier := NewNotifier(hub, zap.NewNop())
	notifier.Publish(testEvent())

	assert.Equal(t, 1, ch.received())
}

func TestNotifier_RelayRoutingKey(t *testing.T) {
	hub := NewHub(zap.NewNop())
	relay := &fakeRelay{}
	notifier := NewNotifier(hub, zap.NewNop()).WithRelay(relay)

	groupID, taskID := 10, 57
	notifier.Publish(&model.Notification{
		Type:    model.NotifyDeadlineWarning,
		Message: "Task 'Essay' deadline approaching! 5 hours remaining.",
		GroupID: &groupID,
		TaskID:  &taskID,
	})

	require.Len(t, relay.keys, 1)
	assert.Equal(t, "notification.deadline_warning", relay.keys[0])
}

func TestNotifier_RelayFailureDoesNotBlockHub(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ch := &fakeChannel{}
	hub.Register(ch)

	relay := &fakeRelay{err: errors.New("broker down")}
	notifier := NewNotifier(hub, zap.NewNop()).WithRelay(relay)

	// Publish never surfaces the relay error; clients on the hub still
	// get every event.
	for i := 0; i < 10; i++ {
		notifier.Publish(testEvent())
	}
	assert.Equal(t, 10, ch.received())
}

func TestNotifier_NoRelayConfigured(t *testing.T) {
	hub := NewHub(zap.NewNop())
	notifier := NewNotifier(hub, zap.NewNop())

	// No relay, no panic.
	notifier.Publish(testEvent())
}
