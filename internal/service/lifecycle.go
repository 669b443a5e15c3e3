package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mtlprog/panchayat/internal/domain"
)

// transitions lists the statuses reachable from each status.
var transitions = map[domain.Status][]domain.Status{
	domain.StatusSubmitted:  {domain.StatusInProgress, domain.StatusResolved},
	domain.StatusInProgress: {domain.StatusResolved},
	domain.StatusResolved:   {},
}

// CanTransition validates a status change against the transition table.
// Moving to the current status is rejected.
func CanTransition(from, to domain.Status) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, to)
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
}

// Draft is a submission as assembled by the input form.
type Draft struct {
	Category    domain.Category `json:"category" validate:"required,category"`
	Title       string          `json:"title" validate:"max=80"`
	Description string          `json:"description" validate:"max=2000"`
	Images      []string        `json:"images" validate:"max=3"`
	Location    string          `json:"location" validate:"required"`
	Urgency     domain.Urgency  `json:"urgency" validate:"urgency"`
	IsAnonymous bool            `json:"isAnonymous"`
	Phone       string          `json:"phone" validate:"max=20"`
	Email       string          `json:"email" validate:"omitempty,email"`
}

// Lifecycle validates drafts and stamps new issues.
type Lifecycle struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewLifecycle creates a Lifecycle. A nil clock means time.Now.
func NewLifecycle(now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.Category(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return domain.Urgency(fl.Field().String()).IsValid()
	})

	return &Lifecycle{validate: v, now: now}
}

// Normalize trims text fields, applies defaults and clears contact details
// of anonymous drafts.
func (l *Lifecycle) Normalize(d Draft) Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.TrimSpace(d.Email)
	if d.Urgency == "" {
		d.Urgency = domain.UrgencyMedium
	}
	if d.IsAnonymous {
		d.Phone = ""
		d.Email = ""
	}
	if d.Images != nil {
		d.Images = append([]string(nil), d.Images...)
	}
	return d
}

// Validate checks a normalized draft. Failures are *domain.ValidationError.
func (l *Lifecycle) Validate(d Draft) error {
	err := l.validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate draft: %w", err)
	}

	fe := fieldErrs[0]
	return &domain.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("allows at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "category":
		return fmt.Sprintf("unknown category %q", fe.Value())
	case "urgency":
		return fmt.Sprintf("unknown urgency %q", fe.Value())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// NewIssue validates the draft and builds a Submitted issue with a
// single history entry stamped now.
func (l *Lifecycle) NewIssue(id string, d Draft) (*domain.Issue, error) {
	d = l.Normalize(d)
	if err := l.Validate(d); err != nil {
		return nil, err
	}

	now := l.now()
	issue := &domain.Issue{
		ID:          id,
		Category:    d.Category,
		Title:       d.Title,
		Description: d.Description,
		Images:      d.Images,
		Location:    d.Location,
		Urgency:     d.Urgency,
		IsAnonymous: d.IsAnonymous,
		Status:      domain.StatusSubmitted,
		CreatedAt:   now,
		StatusHistory: []domain.StatusChange{
			{Status: domain.StatusSubmitted, Timestamp: now},
		},
	}
	if issue.Images == nil {
		issue.Images = []string{}
	}

	contact := &domain.Contact{Phone: d.Phone, Email: d.Email}
	if !d.IsAnonymous && !contact.IsEmpty() {
		issue.Contact = contact
	}

	return issue, nil
}
