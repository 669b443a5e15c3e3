package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/panchayat/internal/domain"
)

func sampleIssue() *domain.Issue {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &domain.Issue{
		ID:          "PTH-2026-4821",
		Category:    domain.CategoryWater,
		Title:       "Pipe burst near school",
		Images:      []string{"data:image/png;base64,AAAA"},
		Location:    "Kochi, Edappally",
		Urgency:     domain.UrgencyHigh,
		Contact:     &domain.Contact{Phone: "9999999999"},
		Status:      domain.StatusSubmitted,
		CreatedAt:   at,
		StatusHistory: []domain.StatusChange{
			{Status: domain.StatusSubmitted, Timestamp: at},
		},
	}
}

func TestIssueClone_SharesNoMemory(t *testing.T) {
	orig := sampleIssue()
	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Images[0] = "changed"
	clone.Contact.Phone = "000"
	clone.StatusHistory[0].Status = domain.StatusResolved
	clone.StatusHistory = append(clone.StatusHistory, domain.StatusChange{Status: domain.StatusResolved})

	assert.Equal(t, "data:image/png;base64,AAAA", orig.Images[0])
	assert.Equal(t, "9999999999", orig.Contact.Phone)
	assert.Equal(t, domain.StatusSubmitted, orig.StatusHistory[0].Status)
	assert.Len(t, orig.StatusHistory, 1)
}

func TestIssueClone_Nil(t *testing.T) {
	var issue *domain.Issue
	assert.Nil(t, issue.Clone())
}

func TestIssueHistoryConsistent(t *testing.T) {
	issue := sampleIssue()
	assert.True(t, issue.HistoryConsistent())

	issue.Status = domain.StatusResolved
	assert.False(t, issue.HistoryConsistent())

	issue.StatusHistory = nil
	assert.False(t, issue.HistoryConsistent())
}

func TestIssueVisibleTo(t *testing.T) {
	issue := sampleIssue()

	tests := []struct {
		name   string
		viewer domain.Viewer
		want   bool
	}{
		{"admin sees everything", domain.Viewer{ID: "admin", Role: domain.RoleAdmin}, true},
		{"officer of same category", domain.Viewer{ID: "w", Role: domain.RoleOfficer, Category: domain.CategoryWater}, true},
		{"officer of other category", domain.Viewer{ID: "r", Role: domain.RoleOfficer, Category: domain.CategoryRoad}, false},
		{"officer without category", domain.Viewer{ID: "x", Role: domain.RoleOfficer}, false},
		{"unknown role", domain.Viewer{ID: "c", Role: "citizen"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, issue.VisibleTo(tt.viewer))
		})
	}
}

func TestViewerIsOfficer(t *testing.T) {
	assert.True(t, domain.Viewer{Role: domain.RoleOfficer, Category: domain.CategoryRoad}.IsOfficer())
	assert.False(t, domain.Viewer{Role: domain.RoleAdmin}.IsOfficer())
	assert.False(t, domain.Viewer{Role: "citizen"}.IsOfficer())
}

func TestEnumValidity(t *testing.T) {
	for _, c := range domain.Categories {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, domain.Category("roads").IsValid())
	assert.False(t, domain.Category("").IsValid())

	for _, s := range domain.Statuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, domain.Status("InProgress").IsValid())
	assert.True(t, domain.StatusResolved.IsTerminal())
	assert.False(t, domain.StatusInProgress.IsTerminal())

	assert.True(t, domain.UrgencyMedium.IsValid())
	assert.False(t, domain.Urgency("urgent").IsValid())
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	var err error = &domain.ValidationError{Field: "location", Reason: "is required"}
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, "validation failed: location is required", err.Error())
}
