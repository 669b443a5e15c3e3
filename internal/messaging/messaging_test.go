package messaging

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/mtlprog/panchayat/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		name  string
		event domain.IssueEvent
		want  string
	}{
		{
			name:  "submitted",
			event: domain.IssueEvent{Type: domain.EventTypeSubmitted, Category: domain.CategoryRoad},
			want:  "issue.submitted.road",
		},
		{
			name:  "status changed",
			event: domain.IssueEvent{Type: domain.EventTypeStatusChanged, Category: domain.CategoryWater},
			want:  "issue.status.changed.water",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoutingKey(&tt.event))
		})
	}
}

func TestNewPublishing(t *testing.T) {
	occurred := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	old := domain.StatusSubmitted
	event := &domain.IssueEvent{
		ID:         "b7f3c7a0-3f7e-4f55-9d39-6f1f9b0c1d2e",
		Type:       domain.EventTypeStatusChanged,
		IssueID:    "PTH-2026-4821",
		Category:   domain.CategoryLight,
		OldStatus:  &old,
		NewStatus:  domain.StatusResolved,
		OccurredAt: occurred,
	}

	msg, err := newPublishing(event)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, event.ID, msg.MessageId)
	assert.Equal(t, "issue.status_changed", msg.Type)
	assert.True(t, occurred.Equal(msg.Timestamp))

	var decoded domain.IssueEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event.IssueID, decoded.IssueID)
	require.NotNil(t, decoded.OldStatus)
	assert.Equal(t, domain.StatusSubmitted, *decoded.OldStatus)
	assert.Nil(t, decoded.ActorID)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), &domain.IssueEvent{}))
}

func TestRabbitMQ_ReopensClosedChannel(t *testing.T) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		t.Skip("AMQP_URL not set")
	}

	mq, err := NewRabbitMQ(url)
	require.NoError(t, err)
	defer mq.Close()

	// Simulate a broker-side channel exception: the connection stays up.
	require.NoError(t, mq.channel.Close())
	require.False(t, mq.conn.IsClosed())

	event := &domain.IssueEvent{
		ID:         "evt-1",
		Type:       domain.EventTypeSubmitted,
		IssueID:    "PTH-2026-4821",
		Category:   domain.CategoryRoad,
		Urgency:    domain.UrgencyHigh,
		NewStatus:  domain.StatusSubmitted,
		OccurredAt: time.Now(),
	}
	require.NoError(t, mq.Publish(context.Background(), event))
	assert.False(t, mq.channel.IsClosed())
}
