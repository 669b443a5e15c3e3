package service_test

import (
	"testing"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueFixture(id string, category domain.Category, status domain.Status) *domain.Issue {
	return &domain.Issue{ID: id, Category: category, Status: status}
}

func TestVisible_Scenario4(t *testing.T) {
	issues := []*domain.Issue{
		issueFixture("PTH-2026-1001", domain.CategoryRoad, domain.StatusSubmitted),
		issueFixture("PTH-2026-1002", domain.CategoryLight, domain.StatusSubmitted),
		issueFixture("PTH-2026-1003", domain.CategoryRoad, domain.StatusResolved),
		issueFixture("PTH-2026-1004", domain.CategoryLight, domain.StatusInProgress),
		issueFixture("PTH-2026-1005", domain.CategoryRoad, domain.StatusInProgress),
	}
	officer := domain.Viewer{ID: "officer_light", Role: domain.RoleOfficer, Category: domain.CategoryLight}

	got := service.Visible(issues, officer, service.StatusFilterAll)

	require.Len(t, got, 2)
	assert.Equal(t, "PTH-2026-1002", got[0].ID)
	assert.Equal(t, "PTH-2026-1004", got[1].ID)
	assert.Len(t, issues, 5)
}

func TestVisible_OfficerNeverSeesOtherCategories(t *testing.T) {
	var issues []*domain.Issue
	for i, category := range domain.Categories {
		for j, status := range domain.Statuses {
			issues = append(issues, issueFixture(
				string(rune('A'+i))+string(rune('a'+j)), category, status))
		}
	}
	officer := domain.Viewer{ID: "officer_water", Role: domain.RoleOfficer, Category: domain.CategoryWater}

	filters := []service.StatusFilter{service.StatusFilterAll}
	for _, status := range domain.Statuses {
		filters = append(filters, service.FilterByStatus(status))
	}

	for _, filter := range filters {
		got := service.Visible(issues, officer, filter)
		assert.NotEmpty(t, got, filter.String())
		for _, issue := range got {
			assert.Equal(t, domain.CategoryWater, issue.Category, filter.String())
		}
	}
}

func TestVisible_AdminAndUnknownRole(t *testing.T) {
	issues := []*domain.Issue{
		issueFixture("PTH-2026-1001", domain.CategoryRoad, domain.StatusSubmitted),
		issueFixture("PTH-2026-1002", domain.CategoryWaste, domain.StatusResolved),
	}

	admin := domain.Viewer{ID: "admin", Role: domain.RoleAdmin}
	assert.Len(t, service.Visible(issues, admin, service.StatusFilterAll), 2)

	resolved := service.Visible(issues, admin, service.FilterByStatus(domain.StatusResolved))
	require.Len(t, resolved, 1)
	assert.Equal(t, "PTH-2026-1002", resolved[0].ID)

	stranger := domain.Viewer{ID: "x", Role: domain.Role("citizen")}
	assert.Empty(t, service.Visible(issues, stranger, service.StatusFilterAll))

	scopeless := domain.Viewer{ID: "officer", Role: domain.RoleOfficer}
	assert.Empty(t, service.Visible(issues, scopeless, service.StatusFilterAll))
}

func TestParseStatusFilter(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: "all"},
		{raw: "all", want: "all"},
		{raw: "ALL", want: "all"},
		{raw: "Submitted", want: "Submitted"},
		{raw: "In Progress", want: "In Progress"},
		{raw: "Resolved", want: "Resolved"},
		{raw: "resolved", wantErr: true},
		{raw: "Closed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			filter, err := service.ParseStatusFilter(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter.String())
		})
	}
}
