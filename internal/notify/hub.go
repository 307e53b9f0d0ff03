package notify

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/pkg/metrics"
)

// Channel is a caller-supplied handle for one persistent connection.
// The hub only ever writes to it; reading from the peer is the
// transport's business.
type Channel interface {
	Send(payload []byte) error
}

type session struct {
	channel      Channel
	registeredAt time.Time
}

// Hub is the registry of live channels. Register, Unregister and
// Broadcast are safe to call concurrently from request handlers and
// the scanner. A channel whose send fails is dropped on the spot and
// never written to again; one dead peer cannot stall or abort delivery
// to the rest.
type Hub struct {
	mu       sync.Mutex
	sessions map[int64]session
	nextID   int64

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[int64]session),
		logger:   logger,
	}
}

// Register adds a channel and returns its registration id.
func (h *Hub) Register(ch Channel) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.sessions[id] = session{channel: ch, registeredAt: time.Now()}
	metrics.ConnectedChannels.Set(float64(len(h.sessions)))

	h.logger.Info("Channel registered",
		zap.Int64("channel_id", id),
		zap.Int("active_channels", len(h.sessions)),
	)
	return id
}

// Unregister removes a channel. Removing an unknown id is a no-op.
func (h *Hub) Unregister(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[id]; !ok {
		return
	}
	delete(h.sessions, id)
	metrics.ConnectedChannels.Set(float64(len(h.sessions)))

	h.logger.Info("Channel unregistered",
		zap.Int64("channel_id", id),
		zap.Int("active_channels", len(h.sessions)),
	)
}

// Len reports the number of registered channels.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Broadcast serializes the event once and sends it to every registered
// channel, best effort. Sends happen outside the registry lock so a
// slow peer blocks neither registration nor other broadcasts' view of
// the registry; per-channel write deadlines bound each send.
func (h *Hub) Broadcast(event *model.Notification) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to serialize notification",
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return
	}

	type target struct {
		id      int64
		channel Channel
	}

	h.mu.Lock()
	targets := make([]target, 0, len(h.sessions))
	for id, s := range h.sessions {
		targets = append(targets, target{id: id, channel: s.channel})
	}
	h.mu.Unlock()

	h.logger.Debug("Broadcasting notification",
		zap.String("type", event.Type),
		zap.Int("channels", len(targets)),
	)

	for _, t := range targets {
		if err := t.channel.Send(payload); err != nil {
			h.logger.Warn("Channel send failed, dropping channel",
				zap.Int64("channel_id", t.id),
				zap.String("type", event.Type),
				zap.Error(err),
			)
			metrics.BroadcastSendFailures.Inc()
			h.Unregister(t.id)
		}
	}
}
