package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/messaging"
	"github.com/mtlprog/panchayat/internal/repository"
	"github.com/mtlprog/panchayat/internal/tracking"
)

// IssueService coordinates submissions, status changes and dashboard reads.
type IssueService struct {
	issueRepo *repository.IssueRepository
	generator *tracking.Generator
	lifecycle *Lifecycle
	publisher messaging.Publisher
}

// NewIssueService creates a new IssueService. A nil publisher discards events.
func NewIssueService(
	issueRepo *repository.IssueRepository,
	generator *tracking.Generator,
	lifecycle *Lifecycle,
	publisher messaging.Publisher,
) *IssueService {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &IssueService{
		issueRepo: issueRepo,
		generator: generator,
		lifecycle: lifecycle,
		publisher: publisher,
	}
}

// Warmup tells the generator about every stored id so it does not hand them out again.
func (s *IssueService) Warmup(ctx context.Context) int {
	issues := s.issueRepo.GetAll(ctx)
	ids := make([]string, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.ID)
	}
	s.generator.Reserve(ids...)

	slog.Debug("tracking ids reserved", "count", len(ids))
	return len(ids)
}

// Submit validates a draft, assigns a tracking id and stores the new issue.
func (s *IssueService) Submit(ctx context.Context, draft Draft) (*domain.Issue, error) {
	issue, err := s.lifecycle.NewIssue(s.generator.Next(), draft)
	if err != nil {
		return nil, err
	}

	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	slog.Info("issue submitted",
		"issue_id", issue.ID,
		"category", issue.Category,
		"urgency", issue.Urgency,
		"anonymous", issue.IsAnonymous,
	)

	s.publish(ctx, &domain.IssueEvent{
		ID:         uuid.NewString(),
		Type:       domain.EventTypeSubmitted,
		IssueID:    issue.ID,
		Category:   issue.Category,
		Urgency:    issue.Urgency,
		NewStatus:  issue.Status,
		OccurredAt: issue.CreatedAt,
	})

	return issue, nil
}

// Track looks up an issue by the id a citizen was given.
// Surrounding whitespace is ignored.
func (s *IssueService) Track(ctx context.Context, id string) (*domain.Issue, error) {
	id = strings.TrimSpace(id)
	if !tracking.Valid(id) {
		return nil, &domain.ValidationError{Field: "id", Reason: "must look like PTH-YYYY-NNNN"}
	}
	return s.issueRepo.GetByID(ctx, id)
}

// Dashboard returns the issues the viewer may see that pass the filter.
func (s *IssueService) Dashboard(ctx context.Context, viewer domain.Viewer, filter StatusFilter) ([]*domain.Issue, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	return Visible(s.issueRepo.GetAll(ctx), viewer, filter), nil
}

// TransitionStatus moves an issue to a new status on behalf of the viewer.
// Officers may only change issues in their own category.
func (s *IssueService) TransitionStatus(
	ctx context.Context,
	viewer domain.Viewer,
	id string,
	status domain.Status,
) (*domain.Issue, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}

	issue, err := s.issueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !issue.VisibleTo(viewer) {
		return nil, fmt.Errorf("%w: %s %s cannot change %s issue %s",
			domain.ErrPermissionDenied, viewer.Role, viewer.ID, issue.Category, issue.ID)
	}

	if err := CanTransition(issue.Status, status); err != nil {
		return nil, fmt.Errorf("issue %s: %w", issue.ID, err)
	}

	updated, err := s.issueRepo.UpdateStatusFrom(ctx, id, issue.Status, status)
	if err != nil {
		return nil, err
	}

	slog.Info("issue status changed",
		"issue_id", updated.ID,
		"category", updated.Category,
		"old_status", issue.Status,
		"new_status", updated.Status,
		"viewer_id", viewer.ID,
	)

	last, _ := updated.LastChange()
	oldStatus := issue.Status
	actorID := viewer.ID
	s.publish(ctx, &domain.IssueEvent{
		ID:         uuid.NewString(),
		Type:       domain.EventTypeStatusChanged,
		IssueID:    updated.ID,
		Category:   updated.Category,
		Urgency:    updated.Urgency,
		ActorID:    &actorID,
		OldStatus:  &oldStatus,
		NewStatus:  updated.Status,
		OccurredAt: last.Timestamp,
	})

	return updated, nil
}

// Resolve marks an issue resolved.
func (s *IssueService) Resolve(ctx context.Context, viewer domain.Viewer, id string) (*domain.Issue, error) {
	return s.TransitionStatus(ctx, viewer, id, domain.StatusResolved)
}

// Stats summarizes the issues visible to a viewer.
type Stats struct {
	Total      int                     `json:"total"`
	Submitted  int                     `json:"submitted"`
	InProgress int                     `json:"in_progress"`
	Resolved   int                     `json:"resolved"`
	ByCategory map[domain.Category]int `json:"by_category"`
	// Oldest open issue, nil when nothing is open.
	OldestOpenSince *time.Time `json:"oldest_open_since,omitempty"`
}

// Stats counts the viewer's visible issues by status and category.
func (s *IssueService) Stats(ctx context.Context, viewer domain.Viewer) (*Stats, error) {
	issues, err := s.Dashboard(ctx, viewer, StatusFilterAll)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:      len(issues),
		ByCategory: make(map[domain.Category]int),
	}
	for _, issue := range issues {
		stats.ByCategory[issue.Category]++

		switch issue.Status {
		case domain.StatusSubmitted:
			stats.Submitted++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusResolved:
			stats.Resolved++
		}

		if !issue.Status.IsTerminal() {
			if stats.OldestOpenSince == nil || issue.CreatedAt.Before(*stats.OldestOpenSince) {
				created := issue.CreatedAt
				stats.OldestOpenSince = &created
			}
		}
	}

	return stats, nil
}

func requireViewer(viewer domain.Viewer) error {
	if viewer.ID == "" || !viewer.Role.IsValid() {
		return domain.ErrUnauthenticated
	}
	return nil
}

// publish delivers an event; the change is already stored, so failures are only logged.
func (s *IssueService) publish(ctx context.Context, event *domain.IssueEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Error("failed to publish issue event",
			"event_id", event.ID,
			"type", event.Type,
			"issue_id", event.IssueID,
			"error", err,
		)
	}
}
