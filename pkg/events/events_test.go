package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPublishing(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	msg, err := buildPublishing(Event{
		Type:       TypeRegistrationSubmitted,
		OccurredAt: at,
		Payload:    RegistrationSubmitted{RegistrationID: "r-1", SchoolID: "s-1", Cycle: "4th", Students: []string{"Ana Pop"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, TypeRegistrationSubmitted, msg.Type)
	assert.Equal(t, at, msg.Timestamp)

	var decoded struct {
		Type    string                `json:"type"`
		Payload RegistrationSubmitted `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "r-1", decoded.Payload.RegistrationID)
	assert.Equal(t, []string{"Ana Pop"}, decoded.Payload.Students)
}

func TestBuildPublishingRequiresType(t *testing.T) {
	_, err := buildPublishing(Event{Payload: AllocationCompleted{RunID: "run-1"}})
	assert.Error(t, err)
}

func TestBuildPublishingStampsTime(t *testing.T) {
	msg, err := buildPublishing(Event{Type: TypeAllocationCompleted})
	require.NoError(t, err)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeAllocationCompleted}))
	assert.NoError(t, p.Close())
}
