package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/click-tracker/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers returns one consumer per analytics topic, all feeding store.
func NewConsumers(
	subscriber message.Subscriber,
	store Store,
	logger *zap.Logger,
	opts ...messaging.ConsumerOption,
) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer[TokenIssuedEvent](subscriber, TopicTokenIssued, store.SaveTokenIssued, logger, opts...),
		messaging.NewConsumer[ClickRecordedEvent](subscriber, TopicClickRecorded, store.SaveClickRecorded, logger, opts...),
	}
}
