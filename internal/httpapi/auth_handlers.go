package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/token"
)

// AuthHandler serves the token refresh and logout endpoints.
type AuthHandler struct {
	tokens *token.Service
	log    zerolog.Logger
}

// NewAuthHandler returns an AuthHandler using tokens.
func NewAuthHandler(tokens *token.Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, log: log}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	AccessExpiresAt  int64  `json:"accessExpiresAt"`
	RefreshExpiresAt int64  `json:"refreshExpiresAt"`
}

type logoutRequest struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Refresh exchanges a refresh token for a new access/refresh pair. The
// consumed refresh token is revoked (rotation). Each failure class maps
// to a distinct reason code so clients know whether to retry, re-login,
// or give up.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	raw := req.RefreshToken
	if raw == "" {
		if c, err := r.Cookie(RefreshTokenCookie); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		writeError(w, http.StatusUnauthorized, CodeNoToken, "no refresh token provided")
		return
	}

	pair, err := h.tokens.Refresh(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenRevoked):
			writeError(w, http.StatusUnauthorized, CodeTokenBlacklisted, "refresh token revoked")
		case errors.Is(err, token.ErrTokenExpired),
			errors.Is(err, token.ErrTokenMalformed),
			errors.Is(err, token.ErrTokenKindMismatch):
			writeError(w, http.StatusUnauthorized, CodeInvalidToken, "invalid refresh token")
		default:
			h.log.Error().Err(err).Msg("refresh failed")
			writeError(w, http.StatusInternalServerError, CodeRefreshFailed, "could not refresh tokens")
		}
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt.Unix(),
		RefreshExpiresAt: pair.RefreshExpiresAt.Unix(),
	})
}

// Logout revokes whichever of the access and refresh tokens are present
// in the body, cookies, or Authorization header. Absence of either is not
// an error, and logout never fails the caller over unparseable input.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	access := req.AccessToken
	if access == "" {
		access = extractAccessToken(r)
	}
	refresh := req.RefreshToken
	if refresh == "" {
		if c, err := r.Cookie(RefreshTokenCookie); err == nil {
			refresh = c.Value
		}
	}

	for _, raw := range []string{access, refresh} {
		if raw == "" {
			continue
		}
		if err := h.tokens.Revoke(r.Context(), raw); err != nil {
			// Revocation store trouble; the tokens still expire naturally.
			h.log.Error().Err(err).Msg("revocation during logout failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
