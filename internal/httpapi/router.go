// Package httpapi is the thin transport adapter over the access-control
// core: token refresh and logout, the audit investigation endpoints, and
// the middleware that turns a bearer token into a per-request
// authorization context. Routing stays here; everything interesting
// happens in the packages it delegates to.
package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/audit"
	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
	"github.com/lodgera/accesscore/internal/metrics"
	"github.com/lodgera/accesscore/internal/token"
)

// RouterConfig carries the dependencies and limits for NewRouter.
type RouterConfig struct {
	Tokens    *token.Service
	AuditRepo auditrepo.Repository
	Detector  *audit.Detector
	Recorder  *audit.Recorder
	Log       zerolog.Logger
	// RefreshBurst and RefreshPerSecond bound the per-IP rate on the
	// refresh endpoint. Zero values default to 5 and 1.
	RefreshBurst     int
	RefreshPerSecond int
}

// NewRouter builds the HTTP handler tree. Audit endpoints require an
// authenticated caller with an unrestricted role.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RefreshBurst <= 0 {
		cfg.RefreshBurst = 5
	}
	if cfg.RefreshPerSecond <= 0 {
		cfg.RefreshPerSecond = 1
	}

	authH := NewAuthHandler(cfg.Tokens, cfg.Log)
	auditH := NewAuditHandler(cfg.AuditRepo, cfg.Detector, cfg.Log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("POST /v1/auth/refresh",
		RateLimit(http.HandlerFunc(authH.Refresh), cfg.RefreshBurst, cfg.RefreshPerSecond))
	mux.HandleFunc("POST /v1/auth/logout", authH.Logout)

	requireAuth := RequireAuth(cfg.Tokens)
	requireAdmin := RequireCanAccessAll(cfg.Recorder, "audit_log")
	audited := func(h http.HandlerFunc) http.Handler {
		return requireAuth(requireAdmin(h))
	}
	mux.Handle("GET /v1/audit/violations", audited(auditH.Violations))
	mux.Handle("GET /v1/audit/users/{id}/activity", audited(auditH.UserActivity))
	mux.Handle("GET /v1/audit/users/{id}/suspicious", audited(auditH.Suspicious))
	mux.Handle("GET /v1/audit/resources/{type}/{id}", audited(auditH.ResourceHistory))

	return Logging(cfg.Log)(ClientInfo(mux))
}
