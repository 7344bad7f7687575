package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"unipool/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Relay feeds messages published on Redis into the local hub, so every
// instance delivers events to the sockets it holds.
type Relay struct {
	hub    *Hub
	prefix string
	logger *logger.Logger
}

func NewRelay(hub *Hub, prefix string, log *logger.Logger) *Relay {
	return &Relay{
		hub:    hub,
		prefix: prefix,
		logger: log,
	}
}

// Run consumes messages until ctx is cancelled or the channel closes.
func (r *Relay) Run(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.forward(ctx, msg)
		}
	}
}

func (r *Relay) forward(ctx context.Context, msg *redis.Message) {
	var envelope Message
	if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
		r.logger.WithField("channel", msg.Channel).WithError(err).Warn("Dropping malformed relay message")
		return
	}

	if envelope.Channel == "" {
		envelope.Channel = strings.TrimPrefix(msg.Channel, r.prefix)
	}

	if err := r.hub.Publish(ctx, &envelope); err != nil {
		r.logger.WithField("channel", envelope.Channel).WithError(err).Warn("Failed to relay message to hub")
	}
}
