package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypeResultCreated is published after a graded attempt is stored.
const TypeResultCreated = "quiz.result.created"

// Event is the envelope of every published message.
type Event struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// ResultCreated is the payload of TypeResultCreated.
type ResultCreated struct {
	ResultID    string    `json:"resultId"`
	UserID      string    `json:"userId"`
	QuizID      string    `json:"quizId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// Encode wraps payload in an Event envelope and marshals it.
func Encode(eventType string, payload any, at time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Event{Type: eventType, Payload: raw, OccurredAt: at.UTC()})
}

// Decode parses an Event envelope.
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}

// ResultCreatedPayload decodes the payload of a TypeResultCreated event.
func (e Event) ResultCreatedPayload() (ResultCreated, error) {
	var p ResultCreated
	if e.Type != TypeResultCreated {
		return p, fmt.Errorf("event type %q is not %s", e.Type, TypeResultCreated)
	}
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return p, nil
}
