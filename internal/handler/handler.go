package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mtlprog/panchayat/internal/handler/dto"
	"github.com/mtlprog/panchayat/internal/middleware"
	"github.com/mtlprog/panchayat/internal/repository"
	"github.com/mtlprog/panchayat/internal/service"
	"github.com/mtlprog/panchayat/internal/session"
	"github.com/mtlprog/panchayat/internal/static"
	"github.com/mtlprog/panchayat/internal/tracking"
)

// maxSubmissionBytes bounds a submission body; images arrive inline as data URLs.
const maxSubmissionBytes = 16 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	issueService   *service.IssueService
	issueRepo      *repository.IssueRepository
	directory      *session.Directory
	tokens         *session.TokenIssuer
	authMiddleware *middleware.AuthMiddleware
	submitLimit    func(http.Handler) http.Handler
}

// New creates a new Handler. submitLimit wraps the submission route;
// nil disables submission rate limiting.
func New(
	issueService *service.IssueService,
	issueRepo *repository.IssueRepository,
	directory *session.Directory,
	tokens *session.TokenIssuer,
	submitLimit func(http.Handler) http.Handler,
) *Handler {
	if submitLimit == nil {
		submitLimit = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{
		issueService:   issueService,
		issueRepo:      issueRepo,
		directory:      directory,
		tokens:         tokens,
		authMiddleware: middleware.NewAuthMiddleware(tokens, directory),
		submitLimit:    submitLimit,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// API reference
	mux.HandleFunc("GET /api.md", h.handleAPIMd)

	// Public citizen routes
	mux.Handle("POST /api/v1/issues", h.submitLimit(http.HandlerFunc(h.handleSubmitIssue)))
	mux.HandleFunc("GET /api/v1/issues/{id}", h.handleTrackIssue)

	// Dashboard login
	mux.HandleFunc("POST /api/v1/session", h.handleLogin)

	// Dashboard routes with authentication
	mux.Handle("GET /api/v1/dashboard/issues", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleListIssues)))
	mux.Handle("GET /api/v1/dashboard/stats", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleGetStats)))
	mux.Handle("GET /api/v1/dashboard/export.csv", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleExportCSV)))
	mux.Handle("PATCH /api/v1/dashboard/issues/{id}/status", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleTransitionStatus)))
	mux.Handle("POST /api/v1/dashboard/issues/{id}/resolve", h.authMiddleware.Authenticate(http.HandlerFunc(h.handleResolveIssue)))
}

// handleHealthz returns 200 OK if the issue store is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.issueRepo.Ping(r.Context()); err != nil {
		slog.Error("store health check failed", "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleAPIMd serves the embedded API reference.
func (h *Handler) handleAPIMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.APIMd))
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a service error to its HTTP response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, resp := dto.NewDomainErrorResponse(err)
	respondJSON(w, status, resp)
}

// extractIssueID extracts and validates the tracking id from the path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractIssueID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "issue id is required")
		return "", false
	}

	if !tracking.Valid(id) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "issue id must look like PTH-YYYY-NNNN")
		return "", false
	}

	return id, true
}
