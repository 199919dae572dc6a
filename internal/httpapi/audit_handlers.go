package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/audit"
	auditdomain "github.com/lodgera/accesscore/internal/audit/domain"
	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
)

// Audit query defaults. Every read path is windowed and limited; the
// handlers never issue unbounded scans.
const (
	defaultAuditWindow = 24 * time.Hour
	defaultAuditLimit  = 100
	maxAuditLimit      = 500
)

// AuditHandler serves the read-only audit investigation endpoints.
type AuditHandler struct {
	repo     auditrepo.Repository
	detector *audit.Detector
	log      zerolog.Logger
}

// NewAuditHandler returns an AuditHandler reading from repo.
func NewAuditHandler(repo auditrepo.Repository, detector *audit.Detector, log zerolog.Logger) *AuditHandler {
	return &AuditHandler{repo: repo, detector: detector, log: log}
}

type entriesResponse struct {
	Entries []*auditdomain.Entry `json:"entries"`
}

// Violations returns denied entries, newest first.
// GET /v1/audit/violations?since=<RFC3339>&limit=<n>
func (h *AuditHandler) Violations(w http.ResponseWriter, r *http.Request) {
	since, limit := windowParams(r)
	entries, err := h.repo.ListViolations(r.Context(), since, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list violations failed")
		writeError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "could not query audit log")
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

// UserActivity returns one user's entries, newest first.
// GET /v1/audit/users/{id}/activity?since=<RFC3339>&limit=<n>
func (h *AuditHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	since, limit := windowParams(r)
	entries, err := h.repo.ListByUser(r.Context(), userID, since, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list user activity failed")
		writeError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "could not query audit log")
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

// ResourceHistory returns access history for one resource, newest first.
// GET /v1/audit/resources/{type}/{id}?limit=<n>
func (h *AuditHandler) ResourceHistory(w http.ResponseWriter, r *http.Request) {
	resourceType := r.PathValue("type")
	resourceID := r.PathValue("id")
	_, limit := windowParams(r)
	entries, err := h.repo.ListByResource(r.Context(), resourceType, resourceID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("resource_type", resourceType).Msg("list resource history failed")
		writeError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "could not query audit log")
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

// Suspicious reports whether a user's recent denial rate is at or above
// the threshold.
// GET /v1/audit/users/{id}/suspicious?window=<duration>&threshold=<n>
func (h *AuditHandler) Suspicious(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	window, _ := time.ParseDuration(r.URL.Query().Get("window"))
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	flagged, err := h.detector.HasSuspiciousActivity(r.Context(), userID, window, threshold)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("suspicious activity check failed")
		writeError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "could not query audit log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"suspicious": flagged})
}

func windowParams(r *http.Request) (time.Time, int64) {
	since := time.Now().UTC().Add(-defaultAuditWindow)
	if s := r.URL.Query().Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			since = t
		}
	}
	limit := int64(defaultAuditLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	return since, limit
}
