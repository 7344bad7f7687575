package services

import (
	"context"
	"sync"
	"time"

	"unipool/pkg/broker"
	"unipool/pkg/cache"
	"unipool/pkg/logger"
	"unipool/pkg/websocket"
)

// NotificationService delivers realtime events after a change has committed.
// Delivery is best effort: Notify never blocks the caller and never fails it.
type NotificationService interface {
	Notify(ctx context.Context, channel, event string, data interface{})
	NotifyMany(ctx context.Context, channels []string, event string, data interface{})

	// Wait blocks until every in-flight delivery has finished.
	Wait()
}

// Publisher is one delivery backend for realtime messages.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, message *websocket.Message) error
}

type notificationService struct {
	publishers []Publisher
	timeout    time.Duration
	logger     *logger.Logger
	wg         sync.WaitGroup
}

func NewNotificationService(log *logger.Logger, timeout time.Duration, publishers ...Publisher) NotificationService {
	return &notificationService{
		publishers: publishers,
		timeout:    timeout,
		logger:     log,
	}
}

func (s *notificationService) Notify(ctx context.Context, channel, event string, data interface{}) {
	s.NotifyMany(ctx, []string{channel}, event, data)
}

func (s *notificationService) NotifyMany(ctx context.Context, channels []string, event string, data interface{}) {
	if len(s.publishers) == 0 {
		return
	}

	for _, channel := range channels {
		message, err := websocket.NewMessage(channel, event, data)
		if err != nil {
			s.logger.WithField("channel", channel).WithField("event", event).WithError(err).Warn("Failed to encode notification")
			continue
		}

		for _, publisher := range s.publishers {
			s.wg.Add(1)
			go s.deliver(context.WithoutCancel(ctx), publisher, message)
		}
	}
}

func (s *notificationService) deliver(ctx context.Context, publisher Publisher, message *websocket.Message) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := publisher.Publish(ctx, message); err != nil {
		s.logger.WithContext(ctx).WithFields(map[string]interface{}{
			"publisher": publisher.Name(),
			"channel":   message.Channel,
			"event":     message.Event,
		}).WithError(err).Warn("Notification dropped")
	}
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}

// Publisher adapters

type hubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) Publisher {
	return &hubPublisher{hub: hub}
}

func (p *hubPublisher) Name() string { return "websocket" }

func (p *hubPublisher) Publish(ctx context.Context, message *websocket.Message) error {
	return p.hub.Publish(ctx, message)
}

type redisPublisher struct {
	cache  *cache.RedisCache
	prefix string
}

// NewRedisPublisher publishes on "<prefix><channel>" for every instance's relay.
func NewRedisPublisher(redisCache *cache.RedisCache, prefix string) Publisher {
	return &redisPublisher{cache: redisCache, prefix: prefix}
}

func (p *redisPublisher) Name() string { return "redis" }

func (p *redisPublisher) Publish(ctx context.Context, message *websocket.Message) error {
	return p.cache.Publish(ctx, p.prefix+message.Channel, message)
}

type amqpPublisher struct {
	publisher *broker.Publisher
}

func NewAMQPPublisher(publisher *broker.Publisher) Publisher {
	return &amqpPublisher{publisher: publisher}
}

func (p *amqpPublisher) Name() string { return "amqp" }

func (p *amqpPublisher) Publish(ctx context.Context, message *websocket.Message) error {
	return p.publisher.Publish(ctx, message.Channel, message)
}
