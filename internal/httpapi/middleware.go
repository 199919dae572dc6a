package httpapi

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lodgera/accesscore/internal/audit"
	"github.com/lodgera/accesscore/internal/authz"
	"github.com/lodgera/accesscore/internal/token"
)

const bearerPrefix = "bearer "

// AccessTokenCookie is the cookie fallback for callers that cannot set an
// Authorization header.
const AccessTokenCookie = "access_token"

// RefreshTokenCookie carries the refresh token for cookie-based clients.
const RefreshTokenCookie = "refresh_token"

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging logs method, path, status, and duration for every request.
func Logging(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.code).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// ClientInfo stores the caller's IP and user agent in the request context
// so the audit recorder can attach them to entries.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ci := audit.ClientInfo{IP: clientIP(r), UserAgent: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(WithClientInfo(r.Context(), ci)))
	})
}

// RequireAuth verifies the access token from the Authorization header or
// the access_token cookie, builds the request's authorization context, and
// stores it in the request context. Authentication failures reject before
// any domain logic runs, with a code telling the client whether a refresh
// is worth attempting.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractAccessToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, CodeNoToken, "missing bearer token")
				return
			}
			p, err := tokens.Verify(r.Context(), raw, token.KindAccess)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					writeError(w, http.StatusUnauthorized, CodeTokenExpired, "access token expired")
				case errors.Is(err, token.ErrTokenRevoked):
					writeError(w, http.StatusUnauthorized, CodeTokenBlacklisted, "access token revoked")
				default:
					writeError(w, http.StatusUnauthorized, CodeInvalidToken, "invalid access token")
				}
				return
			}
			ctx := WithAuthz(r.Context(), authz.NewContext(p))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCanAccessAll rejects callers whose role is establishment-scoped.
// The denial is recorded in the audit log; reject and log are never
// separated. resourceType names what was being guarded (e.g. "audit_log").
func RequireCanAccessAll(recorder *audit.Recorder, resourceType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := GetAuthz(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeNoToken, "missing bearer token")
				return
			}
			if !ac.CanAccessAll() {
				recorder.Decision(r.Context(), ac.Principal(), "read", resourceType, "", "", false, "role not permitted")
				writeError(w, http.StatusForbidden, CodeForbidden, "not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies a token-bucket limit per client IP. Buckets idle for
// five minutes are dropped.
func RateLimit(next http.Handler, burst int, perSecond int) http.Handler {
	type bucket struct {
		lim *rate.Limiter
		ts  time.Time
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		ttl     = 5 * time.Minute
	)
	ticker := time.NewTicker(time.Minute)
	go func() {
		for range ticker.C {
			now := time.Now()
			mu.Lock()
			for k, b := range buckets {
				if now.Sub(b.ts) > ttl {
					delete(buckets, k)
				}
			}
			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
			buckets[ip] = b
		}
		b.ts = time.Now()
		allowed := b.lim.Allow()
		mu.Unlock()
		if !allowed {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractAccessToken returns the raw access token from the Authorization
// header, falling back to the access_token cookie. The core is
// transport-agnostic; only the raw string travels further.
func extractAccessToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(v[len(bearerPrefix):])
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For support (first IP)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
