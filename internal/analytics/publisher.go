package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/click-tracker/internal/messaging"
)

// Publishers holds the typed publish functions for analytics events.
type Publishers struct {
	TokenIssued   messaging.Publish[TokenIssuedEvent]
	ClickRecorded messaging.Publish[ClickRecordedEvent]
}

// NewPublishers binds the analytics topics to publisher.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		TokenIssued:   messaging.NewPublishFunc[TokenIssuedEvent](publisher, TopicTokenIssued),
		ClickRecorded: messaging.NewPublishFunc[ClickRecordedEvent](publisher, TopicClickRecorded),
	}
}

// DiscardPublishers drops every event.
func DiscardPublishers() *Publishers {
	return &Publishers{
		TokenIssued:   messaging.Discard[TokenIssuedEvent](),
		ClickRecorded: messaging.Discard[ClickRecordedEvent](),
	}
}
