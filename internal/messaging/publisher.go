// Package messaging publishes issue events to downstream consumers.
package messaging

import (
	"context"

	"github.com/mtlprog/panchayat/internal/domain"
)

const (
	// ExchangeName is the topic exchange issue events are published to.
	ExchangeName = "panchayat.issues"

	RoutingKeySubmitted     = "issue.submitted"
	RoutingKeyStatusChanged = "issue.status.changed"
)

// Publisher delivers issue events after they have been persisted.
type Publisher interface {
	Publish(ctx context.Context, event *domain.IssueEvent) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *domain.IssueEvent) error {
	return nil
}

// RoutingKey returns the routing key for an event type. Officers can bind
// per-category queues with patterns such as "issue.#.water".
func RoutingKey(event *domain.IssueEvent) string {
	base := RoutingKeyStatusChanged
	if event.Type == domain.EventTypeSubmitted {
		base = RoutingKeySubmitted
	}
	return base + "." + string(event.Category)
}
