// Package events publishes domain events for downstream consumers such as notification workers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event types.
const (
	TypeRegistrationSubmitted = "registration.submitted"
	TypeAllocationCompleted   = "allocation.completed"
)

// Event is the envelope published to the broker.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// RegistrationSubmitted is emitted after a school registration is stored.
type RegistrationSubmitted struct {
	RegistrationID string   `json:"registrationId"`
	SchoolID       string   `json:"schoolId"`
	Cycle          string   `json:"cycle"`
	TeacherEmail   string   `json:"teacherEmail"`
	Students       []string `json:"students"`
}

// AllocationCompleted is emitted after an allocation run is persisted.
type AllocationCompleted struct {
	RunID    string `json:"runId"`
	Placed   int    `json:"placed"`
	Unplaced int    `json:"unplaced"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when events are disabled.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

func buildPublishing(event Event) (amqp.Publishing, error) {
	if event.Type == "" {
		return amqp.Publishing{}, fmt.Errorf("event type is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
	}, nil
}
