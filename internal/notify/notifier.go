package notify

import (
	"strings"

	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/pkg/circuitbreaker"
	"studyhub/pkg/metrics"
)

// Relay mirrors notifications onto an external message bus for
// consumers outside this process. Satisfied by *mq.Publisher.
type Relay interface {
	Publish(routingKey string, payload any) error
}

// Notifier is the single front door for emitting notifications: CRUD
// handlers push immediate events through it and the scanner pushes
// deduped deadline events. Every event goes to the websocket hub;
// when a relay is configured it also goes to the bus, best effort,
// behind a circuit breaker so a down broker costs one failed call per
// probe instead of one per event.
type Notifier struct {
	hub     *Hub
	relay   Relay
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewNotifier(hub *Hub, logger *zap.Logger) *Notifier {
	return &Notifier{
		hub:     hub,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

// WithRelay enables mirroring to the bus.
func (n *Notifier) WithRelay(relay Relay) *Notifier {
	n.relay = relay
	return n
}

// Publish fans the event out. Never returns an error: delivery is
// fire-and-forget by contract.
func (n *Notifier) Publish(event *model.Notification) {
	metrics.IncrementNotificationsSent(event.Type)
	n.hub.Broadcast(event)

	if n.relay == nil {
		return
	}

	routingKey := "notification." + strings.ToLower(event.Type)
	err := n.breaker.Execute(func() error {
		return n.relay.Publish(routingKey, event)
	})
	if err != nil {
		n.logger.Warn("Failed to relay notification to bus",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
