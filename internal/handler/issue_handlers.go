package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/handler/dto"
	"github.com/mtlprog/panchayat/internal/session"
)

// handleSubmitIssue stores a citizen report and returns its tracking id.
func (h *Handler) handleSubmitIssue(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	var req dto.SubmitIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	issue, err := h.issueService.Submit(r.Context(), req.Draft())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.SubmitIssueResponse{
		ID:        issue.ID,
		Status:    string(issue.Status),
		CreatedAt: issue.CreatedAt,
	})
}

// handleTrackIssue returns the public timeline of an issue.
func (h *Handler) handleTrackIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := extractIssueID(w, r)
	if !ok {
		return
	}

	issue, err := h.issueService.Track(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPublicIssueResponse(issue))
}

// handleLogin exchanges dashboard credentials for a bearer token.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	viewer, err := h.directory.Authenticate(session.Credentials{
		ID:     req.ID,
		Secret: req.Secret,
		Role:   domain.Role(req.Role),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(viewer)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Viewer:    dto.NewViewerDetail(viewer),
	})
}
