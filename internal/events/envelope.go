package events

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/charmcart-backend/pkg/enums"
)

// EnvelopeVersion is the current wire layout of Envelope.
const EnvelopeVersion = 1

// Envelope is the stable JSON form of an Event sent outside the process.
type Envelope struct {
	Version    int                 `json:"version"`
	EventID    string              `json:"eventId"`
	EventType  enums.CartEventType `json:"eventType"`
	SessionID  string              `json:"sessionId"`
	OccurredAt time.Time           `json:"occurredAt"`
	Data       json.RawMessage     `json:"data,omitempty"`
}

// NewEnvelope serializes the event payload.
func NewEnvelope(evt Event) (Envelope, error) {
	env := Envelope{
		Version:    EnvelopeVersion,
		EventID:    evt.ID,
		EventType:  evt.Type,
		SessionID:  evt.SessionID,
		OccurredAt: evt.OccurredAt,
	}
	if evt.Payload != nil {
		data, err := json.Marshal(evt.Payload)
		if err != nil {
			return Envelope{}, err
		}
		env.Data = data
	}
	return env, nil
}

// Attributes returns the Pub/Sub message attributes for the envelope.
func (e Envelope) Attributes() map[string]string {
	return map[string]string{
		"event_type": e.EventType.String(),
		"event_id":   e.EventID,
		"session_id": e.SessionID,
	}
}
