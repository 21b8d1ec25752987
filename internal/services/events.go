package services

import (
	"context"
	"encoding/json"

	"github.com/savoria-catering/apiserver/pkg/logger"
)

// EventPublisher is satisfied by *mq.MQ. A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// publishEvent emits a notification event best-effort. Broker failures are
// logged and never fail the calling operation.
func publishEvent(ctx context.Context, publisher EventPublisher, channel, eventType string, payload any) {
	if publisher == nil {
		return
	}

	log := logger.Get()
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to encode event payload")
		return
	}

	if _, err := publisher.Publish(ctx, channel, data, map[string]string{"type": eventType}); err != nil {
		log.Error().Err(err).Str("event", eventType).Str("channel", channel).Msg("failed to publish event")
	}
}
