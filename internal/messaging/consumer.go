package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// DefaultNackDelay spaces out redeliveries of failed messages.
const DefaultNackDelay = time.Second

// Handler processes a single decoded event.
type Handler[T any] func(ctx context.Context, event *T) error

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	nackDelay time.Duration
}

// WithNackDelay sets how long a failed message is held before it is nacked.
func WithNackDelay(d time.Duration) ConsumerOption {
	return func(c *consumerConfig) { c.nackDelay = d }
}

// Consumer subscribes to a topic and processes messages with a typed handler.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	nackDelay  time.Duration
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a new generic consumer for a specific event type.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	cfg := consumerConfig{nackDelay: DefaultNackDelay}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		nackDelay:  cfg.nackDelay,
		done:       make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start begins consuming messages from the topic.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		close(c.done)

		return err
	}

	go c.consumeLoop(ctx, msgs)

	return nil
}

func (c *Consumer[T]) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// handleMessage acks messages that can never succeed (foreign event type,
// undecodable payload) and nacks handler failures for redelivery.
func (c *Consumer[T]) handleMessage(ctx context.Context, msg *message.Message) {
	if eventType := msg.Metadata.Get(MetadataEventType); eventType != "" && eventType != c.topic {
		c.logger.Warn("dropping event of another type",
			zap.String("message_id", msg.UUID),
			zap.String("event_type", eventType),
		)
		msg.Ack()

		return
	}

	var event T

	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("dropping undecodable event",
			zap.String("message_id", msg.UUID),
			zap.Error(err),
		)
		msg.Ack()

		return
	}

	if err := c.handler(ctx, &event); err != nil {
		c.logger.Error("failed to handle event",
			zap.String("message_id", msg.UUID),
			zap.Error(err),
		)
		c.delayNack(ctx, msg)

		return
	}

	msg.Ack()
	c.logger.Debug("processed event", zap.String("message_id", msg.UUID))
}

// delayNack holds a failed message for the nack delay so a broken
// dependency is not hammered with redeliveries. Shutdown cuts the wait short.
func (c *Consumer[T]) delayNack(ctx context.Context, msg *message.Message) {
	if c.nackDelay > 0 {
		timer := time.NewTimer(c.nackDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}

	msg.Nack()
}

// Shutdown stops the consumer and waits for in-flight messages to complete.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
