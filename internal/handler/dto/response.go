package dto

import (
	"time"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/service"
)

// CategoryLabels are the display names shown next to category codes.
var CategoryLabels = map[domain.Category]string{
	domain.CategoryRoad:  "Broken Road / Pothole",
	domain.CategoryLight: "Streetlight Issue",
	domain.CategoryWater: "Water Leak / Pipe",
	domain.CategoryDrain: "Drainage / Flood",
	domain.CategoryWaste: "Garbage / Waste",
	domain.CategoryPower: "Electricity",
	domain.CategoryProp:  "Public Damage",
	domain.CategoryOther: "Other",
}

// CategoryLabel returns the display name of a category, or its code if unknown.
func CategoryLabel(c domain.Category) string {
	if label, ok := CategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// SubmitIssueResponse is returned after a successful submission.
type SubmitIssueResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusChangeInfo is one timeline entry.
type StatusChangeInfo struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// PublicIssueResponse is the tracker view of an issue; it never carries contact details.
type PublicIssueResponse struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	CategoryLabel string             `json:"category_label"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Location      string             `json:"location"`
	Urgency       string             `json:"urgency"`
	Images        []string           `json:"images"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	StatusHistory []StatusChangeInfo `json:"status_history"`
}

// IssueResponse is the dashboard view of an issue.
type IssueResponse struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	CategoryLabel string             `json:"category_label"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Images        []string           `json:"images"`
	Location      string             `json:"location"`
	Urgency       string             `json:"urgency"`
	IsAnonymous   bool               `json:"is_anonymous"`
	Contact       *ContactResponse   `json:"contact"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	StatusHistory []StatusChangeInfo `json:"status_history"`
}

// ContactResponse holds reporter contact details.
type ContactResponse struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// IssuesListResponse represents the response for GET /dashboard/issues.
type IssuesListResponse struct {
	Issues []IssueResponse `json:"issues"`
	Total  int             `json:"total"`
	Status string          `json:"status"`
}

// LoginResponse is returned by POST /session.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Viewer    ViewerDetail `json:"viewer"`
}

// ViewerDetail describes the logged-in viewer.
type ViewerDetail struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Category string `json:"category,omitempty"`
	Name     string `json:"name"`
}

// StatsResponse represents the response for GET /dashboard/stats.
type StatsResponse struct {
	Total           int            `json:"total"`
	Pending         int            `json:"pending"`
	InProgress      int            `json:"in_progress"`
	Resolved        int            `json:"resolved"`
	ByCategory      map[string]int `json:"by_category"`
	OldestOpenSince *time.Time     `json:"oldest_open_since"`
}

// NewPublicIssueResponse builds the tracker view of an issue.
func NewPublicIssueResponse(issue *domain.Issue) PublicIssueResponse {
	return PublicIssueResponse{
		ID:            issue.ID,
		Category:      string(issue.Category),
		CategoryLabel: CategoryLabel(issue.Category),
		Title:         issue.Title,
		Description:   issue.Description,
		Location:      issue.Location,
		Urgency:       string(issue.Urgency),
		Images:        append([]string{}, issue.Images...),
		Status:        string(issue.Status),
		CreatedAt:     issue.CreatedAt,
		StatusHistory: newStatusHistory(issue.StatusHistory),
	}
}

// NewIssueResponse builds the dashboard view of an issue.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	resp := IssueResponse{
		ID:            issue.ID,
		Category:      string(issue.Category),
		CategoryLabel: CategoryLabel(issue.Category),
		Title:         issue.Title,
		Description:   issue.Description,
		Images:        issue.Images,
		Location:      issue.Location,
		Urgency:       string(issue.Urgency),
		IsAnonymous:   issue.IsAnonymous,
		Status:        string(issue.Status),
		CreatedAt:     issue.CreatedAt,
		UpdatedAt:     issue.CreatedAt,
		StatusHistory: newStatusHistory(issue.StatusHistory),
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if last, ok := issue.LastChange(); ok {
		resp.UpdatedAt = last.Timestamp
	}
	if issue.Contact != nil && !issue.IsAnonymous {
		resp.Contact = &ContactResponse{Phone: issue.Contact.Phone, Email: issue.Contact.Email}
	}
	return resp
}

// NewIssuesListResponse builds the dashboard list response.
func NewIssuesListResponse(issues []*domain.Issue, filter service.StatusFilter) IssuesListResponse {
	items := make([]IssueResponse, 0, len(issues))
	for _, issue := range issues {
		items = append(items, NewIssueResponse(issue))
	}
	return IssuesListResponse{
		Issues: items,
		Total:  len(items),
		Status: filter.String(),
	}
}

// NewStatsResponse converts service stats.
func NewStatsResponse(stats *service.Stats) StatsResponse {
	byCategory := make(map[string]int, len(stats.ByCategory))
	for category, count := range stats.ByCategory {
		byCategory[string(category)] = count
	}
	return StatsResponse{
		Total:           stats.Total,
		Pending:         stats.Submitted,
		InProgress:      stats.InProgress,
		Resolved:        stats.Resolved,
		ByCategory:      byCategory,
		OldestOpenSince: stats.OldestOpenSince,
	}
}

// NewViewerDetail describes a viewer.
func NewViewerDetail(viewer domain.Viewer) ViewerDetail {
	return ViewerDetail{
		ID:       viewer.ID,
		Role:     string(viewer.Role),
		Category: string(viewer.Category),
		Name:     viewer.Name,
	}
}

func newStatusHistory(history []domain.StatusChange) []StatusChangeInfo {
	items := make([]StatusChangeInfo, 0, len(history))
	for _, change := range history {
		items = append(items, StatusChangeInfo{
			Status:    string(change.Status),
			Timestamp: change.Timestamp,
		})
	}
	return items
}
