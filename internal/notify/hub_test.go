package notify

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type fakeChannel struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (f *fakeChannel) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection reset")
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeChannel) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func testEvent() *model.Notification {
	groupID := 10
	return &model.Notification{
		Type:      model.NotifyNewGroup,
		Message:   "New group created: algebra",
		GroupID:   &groupID,
		Timestamp: model.Timestamp(time.Now()),
	}
}

func TestHub_BroadcastReachesAllChannels(t *testing.T) {
	hub := NewHub(zap.NewNop())

	a, b := &fakeChannel{}, &fakeChannel{}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(testEvent())

	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, b.received())

	// Payload is valid JSON with the event type.
	var got model.Notification
	require.NoError(t, json.Unmarshal(a.payloads[0], &got))
	assert.Equal(t, model.NotifyNewGroup, got.Type)
}

func TestHub_BroadcastIsolation(t *testing.T) {
	hub := NewHub(zap.NewNop())

	a := &fakeChannel{}
	b := &fakeChannel{fail: true}
	c := &fakeChannel{}
	hub.Register(a)
	hub.Register(b)
	hub.Register(c)

	hub.Broadcast(testEvent())

	// A and C were delivered despite B failing, and B is gone.
	assert.Equal(t, 1, a.received())
	assert.Equal(t, 1, c.received())
	assert.Equal(t, 0, b.received())
	assert.Equal(t, 2, hub.Len())

	// B never sees another broadcast.
	hub.Broadcast(testEvent())
	assert.Equal(t, 2, a.received())
	assert.Equal(t, 2, c.received())
	assert.Equal(t, 0, b.received())
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	a := &fakeChannel{}
	id := hub.Register(a)
	assert.Equal(t, 1, hub.Len())

	hub.Unregister(id)
	assert.Equal(t, 0, hub.Len())

	// Unregistering twice is harmless.
	hub.Unregister(id)

	hub.Broadcast(testEvent())
	assert.Equal(t, 0, a.received())
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := hub.Register(&fakeChannel{})
			hub.Unregister(id)
		}()
		go func() {
			defer wg.Done()
			hub.Broadcast(testEvent())
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
}
