package pubsub

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

// Service fans engine events out to external subscribers. Delivery is
// best-effort: a failing publication is logged and dropped, it never rolls
// back the ledger transaction that produced the event.
type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) *Service {
	return &Service{pubsub}
}

func (s *Service) PubSub() ports.PubSub {
	return s.pubsub
}

// AddSubscriber registers a webhook endpoint for an event topic.
func (s *Service) AddSubscriber(topic, endpoint, secret string) (string, error) {
	return s.pubsub.Subscribe(topic, endpoint, secret)
}

// RemoveSubscriber removes a webhook registration.
func (s *Service) RemoveSubscriber(id string) error {
	return s.pubsub.Unsubscribe(ports.AnyTopic, id)
}

// PublishEvent serializes a typed engine event and delivers it to the
// subscribers of its topic.
func (s *Service) PublishEvent(event domain.Event) {
	payload := map[string]interface{}{
		"event": event.EventType(),
		"data":  event,
	}
	message, _ := json.Marshal(payload)

	if err := s.pubsub.Publish(event.EventType(), string(message)); err != nil {
		log.WithError(err).Warnf(
			"pubsub: failed to publish %s event", event.EventType(),
		)
	}
}
