package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/panchayat/internal/domain"
)

// IssueRepository is the persisted collection of issue records.
//
// Every mutation reads the whole collection, changes it and writes it back
// before returning. Mutations are serialized in-process; backends that
// implement Transactor also serialize them across processes.
type IssueRepository struct {
	backend Backend
	key     string
	now     func() time.Time
	mu      sync.Mutex
}

// Option configures an IssueRepository.
type Option func(*IssueRepository)

// WithCollectionKey overrides DefaultCollectionKey.
func WithCollectionKey(key string) Option {
	return func(r *IssueRepository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithClock sets the time source for status history timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *IssueRepository) {
		r.now = now
	}
}

// NewIssueRepository creates a new IssueRepository on top of backend.
func NewIssueRepository(backend Backend, opts ...Option) *IssueRepository {
	r := &IssueRepository{
		backend: backend,
		key:     DefaultCollectionKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init creates an empty collection if none exists yet.
func (r *IssueRepository) Init(ctx context.Context) error {
	if err := r.backend.Open(ctx, r.key); err != nil {
		return fmt.Errorf("init issue collection: %w", err)
	}
	return nil
}

// Ping checks the backend when it has a remote dependency.
func (r *IssueRepository) Ping(ctx context.Context) error {
	if p, ok := r.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// GetAll returns every issue in insertion order.
// An absent or unreadable collection yields an empty slice; the failure is logged.
func (r *IssueRepository) GetAll(ctx context.Context) []*domain.Issue {
	doc, err := r.backend.Read(ctx, r.key)
	if err != nil {
		slog.Error("failed to read issue collection", "collection", r.key, "error", err)
		return []*domain.Issue{}
	}

	issues, err := decodeIssues(doc)
	if err != nil {
		slog.Error("issue collection is corrupt", "collection", r.key, "error", err)
		return []*domain.Issue{}
	}
	return issues
}

// GetByID retrieves an issue by its tracking id.
func (r *IssueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	for _, issue := range r.GetAll(ctx) {
		if issue.ID == id {
			return issue, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, id)
}

// Create appends a fully-formed issue to the collection.
// Returns ErrDuplicateID if an issue with the same id already exists.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	return r.mutate(ctx, func(issues []*domain.Issue) ([]*domain.Issue, error) {
		for _, existing := range issues {
			if existing.ID == issue.ID {
				return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateID, issue.ID)
			}
		}
		return append(issues, issue.Clone()), nil
	})
}

// UpdateStatus sets the issue status and appends a history entry stamped now.
// Returns ErrIssueNotFound if no issue has the id. The returned issue is a copy
// of the stored record after the change.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Issue, error) {
	return r.updateStatus(ctx, id, nil, status)
}

// UpdateStatusFrom is UpdateStatus with optimistic locking: it fails with
// ErrStatusConflict when the stored status is no longer expected.
func (r *IssueRepository) UpdateStatusFrom(
	ctx context.Context,
	id string,
	expected domain.Status,
	status domain.Status,
) (*domain.Issue, error) {
	return r.updateStatus(ctx, id, &expected, status)
}

func (r *IssueRepository) updateStatus(
	ctx context.Context,
	id string,
	expected *domain.Status,
	status domain.Status,
) (*domain.Issue, error) {
	var updated *domain.Issue

	err := r.mutate(ctx, func(issues []*domain.Issue) ([]*domain.Issue, error) {
		for _, issue := range issues {
			if issue.ID != id {
				continue
			}
			if expected != nil && issue.Status != *expected {
				return nil, fmt.Errorf("%w: issue %s is %s, expected %s",
					domain.ErrStatusConflict, id, issue.Status, *expected)
			}
			issue.Status = status
			issue.StatusHistory = append(issue.StatusHistory, domain.StatusChange{
				Status:    status,
				Timestamp: r.now(),
			})
			updated = issue.Clone()
			return issues, nil
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, id)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// mutate runs one read-modify-write cycle over the whole collection.
func (r *IssueRepository) mutate(ctx context.Context, fn func([]*domain.Issue) ([]*domain.Issue, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apply := func(doc []byte) ([]byte, error) {
		issues, err := decodeIssues(doc)
		if err != nil {
			return nil, fmt.Errorf("load issue collection: %w", err)
		}
		issues, err = fn(issues)
		if err != nil {
			return nil, err
		}
		next, err := json.Marshal(issues)
		if err != nil {
			return nil, fmt.Errorf("encode issue collection: %w", err)
		}
		return next, nil
	}

	if tx, ok := r.backend.(Transactor); ok {
		return tx.Update(ctx, r.key, apply)
	}

	doc, err := r.backend.Read(ctx, r.key)
	if err != nil {
		return err
	}
	next, err := apply(doc)
	if err != nil {
		return err
	}
	return r.backend.Write(ctx, r.key, next)
}

func decodeIssues(doc []byte) ([]*domain.Issue, error) {
	issues := []*domain.Issue{}
	if len(doc) == 0 {
		return issues, nil
	}
	if err := json.Unmarshal(doc, &issues); err != nil {
		return nil, err
	}
	if issues == nil {
		// A stored "null" document counts as empty.
		issues = []*domain.Issue{}
	}
	for i, issue := range issues {
		if issue == nil {
			return nil, fmt.Errorf("issue record %d is null", i)
		}
	}
	return issues, nil
}
