package dto

import (
	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/service"
)

// SubmitIssueRequest represents the request body for POST /issues.
type SubmitIssueRequest struct {
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Location    string          `json:"location"`
	Urgency     string          `json:"urgency,omitempty"`
	IsAnonymous bool            `json:"isAnonymous"`
	Contact     *ContactRequest `json:"contact,omitempty"`
}

// ContactRequest holds optional reporter contact details.
type ContactRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Draft converts the request into a submission draft.
func (r SubmitIssueRequest) Draft() service.Draft {
	d := service.Draft{
		Category:    domain.Category(r.Category),
		Title:       r.Title,
		Description: r.Description,
		Images:      r.Images,
		Location:    r.Location,
		Urgency:     domain.Urgency(r.Urgency),
		IsAnonymous: r.IsAnonymous,
	}
	if r.Contact != nil {
		d.Phone = r.Contact.Phone
		d.Email = r.Contact.Email
	}
	return d
}

// LoginRequest represents the request body for POST /session.
type LoginRequest struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
	Role   string `json:"role"`
}

// TransitionStatusRequest represents the request body for PATCH /dashboard/issues/:id/status.
type TransitionStatusRequest struct {
	Status string `json:"status"`
}
