package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/panchayat/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Issue errors
	case errors.Is(err, domain.ErrIssueNotFound):
		return http.StatusNotFound, "ISSUE_NOT_FOUND", message
	case errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict, "DUPLICATE_ID", message
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrStatusConflict):
		return http.StatusConflict, "STATUS_CONFLICT", message

	// Session errors
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", message
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "INVALID_TOKEN", message
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message

	// Validation errors
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Default: internal server error
	default:
		// Unmapped errors are logged here since the client only sees a generic message.
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}

// NewDomainErrorResponse maps err and attaches the failing field for validation errors.
func NewDomainErrorResponse(err error) (int, ErrorResponse) {
	status, code, message := MapDomainError(err)
	resp := NewErrorResponse(code, message)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error.Field = verr.Field
	}
	return status, resp
}
