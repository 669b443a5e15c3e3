package service

import (
	"fmt"
	"strings"

	"github.com/mtlprog/panchayat/internal/domain"
)

// StatusFilter selects issues by status. The zero value matches every status.
type StatusFilter struct {
	status domain.Status
}

// StatusFilterAll matches every status.
var StatusFilterAll = StatusFilter{}

// FilterByStatus matches exactly one status.
func FilterByStatus(status domain.Status) StatusFilter {
	return StatusFilter{status: status}
}

// ParseStatusFilter accepts "all", an empty string or a status value.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return StatusFilterAll, nil
	}

	status := domain.Status(raw)
	if !status.IsValid() {
		return StatusFilter{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, raw)
	}
	return FilterByStatus(status), nil
}

// Matches reports whether the status passes the filter.
func (f StatusFilter) Matches(status domain.Status) bool {
	return f.status == "" || f.status == status
}

// String returns "all" or the selected status.
func (f StatusFilter) String() string {
	if f.status == "" {
		return "all"
	}
	return string(f.status)
}

// Visible returns the issues within the viewer's scope that pass the filter,
// in their original order. The input slice is not modified.
func Visible(issues []*domain.Issue, viewer domain.Viewer, filter StatusFilter) []*domain.Issue {
	result := make([]*domain.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.VisibleTo(viewer) && filter.Matches(issue.Status) {
			result = append(result, issue)
		}
	}
	return result
}
