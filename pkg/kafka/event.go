package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TopicPrefix is the prefix shared by every platform topic.
const TopicPrefix = "ecommerce"

// Topic builds a fully-qualified topic name such as "ecommerce.product.updated".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}

// ErrMalformedEvent is returned for payloads that are not an event envelope.
var ErrMalformedEvent = errors.New("malformed event envelope")

// Event is the envelope every platform service publishes.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// UnmarshalEvent decodes an event envelope. An envelope without an event
// type is rejected.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if event.EventType == "" {
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	}
	return &event, nil
}

// UnmarshalData decodes the event payload into target.
func (e *Event) UnmarshalData(target any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: empty data", ErrMalformedEvent)
	}
	return json.Unmarshal(e.Data, target)
}
