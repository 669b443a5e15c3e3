package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/export"
	"github.com/mtlprog/panchayat/internal/handler/dto"
	"github.com/mtlprog/panchayat/internal/middleware"
	"github.com/mtlprog/panchayat/internal/service"
)

// handleListIssues returns the viewer's issues, optionally filtered by status.
func (h *Handler) handleListIssues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := middleware.GetViewerFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	filter, err := service.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	issues, err := h.issueService.Dashboard(ctx, viewer, filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewIssuesListResponse(issues, filter))
}

// handleGetStats returns status and category counts for the viewer's issues.
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := middleware.GetViewerFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	stats, err := h.issueService.Stats(ctx, viewer)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewStatsResponse(stats))
}

// handleExportCSV downloads the viewer's issues as CSV.
func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := middleware.GetViewerFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	filter, err := service.ParseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	issues, err := h.issueService.Dashboard(ctx, viewer, filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// Render fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, issues); err != nil {
		slog.Error("failed to render csv export", "viewer_id", viewer.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="panchayat-issues.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleTransitionStatus changes the status of an issue.
func (h *Handler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := middleware.GetViewerFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	id, ok := extractIssueID(w, r)
	if !ok {
		return
	}

	var req dto.TransitionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	status := domain.Status(req.Status)
	if !status.IsValid() {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			"status must be 'Submitted', 'In Progress' or 'Resolved'")
		return
	}

	issue, err := h.issueService.TransitionStatus(ctx, viewer, id, status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewIssueResponse(issue))
}

// handleResolveIssue marks an issue resolved.
func (h *Handler) handleResolveIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	viewer, err := middleware.GetViewerFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	id, ok := extractIssueID(w, r)
	if !ok {
		return
	}

	issue, err := h.issueService.Resolve(ctx, viewer, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewIssueResponse(issue))
}
