package domain

import "time"

// EventType represents the type of issue event.
type EventType string

const (
	EventTypeSubmitted     EventType = "issue.submitted"
	EventTypeStatusChanged EventType = "issue.status_changed"
)

// IssueEvent is a notification emitted after an issue change has been persisted.
type IssueEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	IssueID    string    `json:"issue_id"`
	Category   Category  `json:"category"`
	Urgency    Urgency   `json:"urgency,omitempty"`
	ActorID    *string   `json:"actor_id,omitempty"` // nil for citizen submissions
	OldStatus  *Status   `json:"old_status,omitempty"`
	NewStatus  Status    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IsCitizenEvent returns true if the event was not caused by a dashboard viewer.
func (e *IssueEvent) IsCitizenEvent() bool {
	return e.ActorID == nil
}
