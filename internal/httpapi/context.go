package httpapi

import (
	"context"

	"github.com/lodgera/accesscore/internal/audit"
	"github.com/lodgera/accesscore/internal/authz"
)

type contextKey struct{ name string }

var (
	authzKey      = contextKey{"authz_context"}
	clientInfoKey = contextKey{"client_info"}
)

// WithAuthz returns a context carrying the request's authorization context.
func WithAuthz(ctx context.Context, ac authz.Context) context.Context {
	return context.WithValue(ctx, authzKey, ac)
}

// GetAuthz returns the authorization context and true if set.
func GetAuthz(ctx context.Context) (authz.Context, bool) {
	ac, ok := ctx.Value(authzKey).(authz.Context)
	return ac, ok
}

// WithClientInfo returns a context carrying the caller's IP and user agent.
func WithClientInfo(ctx context.Context, ci audit.ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey, ci)
}

// ClientInfoFromContext returns the client info set by the middleware.
// Wired into the audit recorder as its ClientInfoExtractor.
func ClientInfoFromContext(ctx context.Context) audit.ClientInfo {
	ci, _ := ctx.Value(clientInfoKey).(audit.ClientInfo)
	return ci
}
