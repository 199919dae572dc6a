// Package token issues, verifies, rotates, and revokes the signed bearer
// tokens that carry identity claims. Two kinds exist with independent
// lifetimes: short-lived access tokens and long-lived refresh tokens. A
// refresh token can mint a new access token, never the other way around.
package token

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	identitydomain "github.com/lodgera/accesscore/internal/identity/domain"
	"github.com/lodgera/accesscore/internal/metrics"
	"github.com/lodgera/accesscore/internal/revocation"
)

// Pair is an access/refresh token pair returned by Issue and Refresh.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Service signs tokens with RS256 or ES256 and checks presented tokens
// against the revocation store on every verify.
type Service struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    revocation.Store
	log        zerolog.Logger
}

// NewService returns a token Service that signs with privateKey and
// consults revoked on verification. issuer and audience are set on claims
// and validated on every verify.
func NewService(
	privateKey crypto.Signer,
	publicKey crypto.PublicKey,
	issuer, audience string,
	accessTTL, refreshTTL time.Duration,
	revoked revocation.Store,
	log zerolog.Logger,
) *Service {
	return &Service{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		log:        log,
	}
}

// Issue mints an access/refresh pair embedding the principal's claims.
func (s *Service) Issue(p identitydomain.Principal) (Pair, error) {
	if err := p.Validate(); err != nil {
		return Pair{}, err
	}
	now := time.Now().UTC()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access, err := s.sign(p, KindAccess, now, accessExp)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(p, KindRefresh, now, refreshExp)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify parses raw, checks signature, expiry, issuer, audience, kind, and
// the revocation list, and returns the embedded Principal. A revocation
// lookup failure fails closed: the token is treated as revoked.
func (s *Service) Verify(ctx context.Context, raw string, expected Kind) (identitydomain.Principal, error) {
	claims, err := s.parse(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			metrics.TokenVerifications.WithLabelValues("expired").Inc()
		} else {
			metrics.TokenVerifications.WithLabelValues("malformed").Inc()
		}
		return identitydomain.Principal{}, err
	}
	if claims.Kind != expected {
		metrics.TokenVerifications.WithLabelValues("kind_mismatch").Inc()
		return identitydomain.Principal{}, ErrTokenKindMismatch
	}
	revoked, err := s.revoked.IsRevoked(ctx, raw)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Caller gave up, not a store failure; keep the context error
			// distinct from the token taxonomy.
			return identitydomain.Principal{}, fmt.Errorf("verify: %w", err)
		}
		// Fail closed: an unavailable revocation store must not let a
		// possibly-revoked token through.
		s.log.Error().Err(err).Msg("revocation lookup failed; failing closed")
		metrics.TokenVerifications.WithLabelValues("revoked").Inc()
		return identitydomain.Principal{}, ErrTokenRevoked
	}
	if revoked {
		metrics.TokenVerifications.WithLabelValues("revoked").Inc()
		return identitydomain.Principal{}, ErrTokenRevoked
	}
	p, err := claims.Principal()
	if err != nil {
		metrics.TokenVerifications.WithLabelValues("malformed").Inc()
		return identitydomain.Principal{}, ErrTokenMalformed
	}
	metrics.TokenVerifications.WithLabelValues("ok").Inc()
	return p, nil
}

// Refresh verifies the refresh token, issues a new pair (rotation), and
// revokes the consumed refresh token so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Pair, error) {
	p, err := s.Verify(ctx, refreshToken, KindRefresh)
	if err != nil {
		return Pair{}, err
	}
	pair, err := s.Issue(p)
	if err != nil {
		return Pair{}, err
	}
	if err := s.Revoke(ctx, refreshToken); err != nil {
		// Leaving the consumed refresh token live would allow replay.
		return Pair{}, err
	}
	return pair, nil
}

// Revoke adds raw to the revocation store with the token's own expiry as
// the entry TTL. Revoke is idempotent and never fails the caller's request
// path over an unparseable token: logout must not error on garbage input.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	exp, err := s.expiry(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("dropping revocation of unparseable token")
		return nil
	}
	if !exp.After(time.Now().UTC()) {
		// Already expired; verification rejects it without our help.
		return nil
	}
	if err := s.revoked.Add(ctx, raw, exp); err != nil {
		return err
	}
	metrics.Revocations.Inc()
	return nil
}

func (s *Service) sign(p identitydomain.Principal, kind Kind, now, exp time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   p.UserID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role:            string(p.Role),
		EstablishmentID: p.EstablishmentID,
		Kind:            kind,
	}
	var method jwt.SigningMethod
	switch s.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidKey
	}
	return jwt.NewWithClaims(method, claims).SignedString(s.privateKey)
}

func (s *Service) parse(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); ok {
			return s.publicKey, nil
		}
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); ok {
			return s.publicKey, nil
		}
		return nil, ErrTokenMalformed
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Issuer != s.issuer {
		return nil, ErrTokenMalformed
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == s.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// expiry extracts the embedded expiry without verifying the signature.
// Revocation only needs the TTL bound; the token is already in the
// caller's hands either way.
func (s *Service) expiry(raw string) (time.Time, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenMalformed
	}
	return claims.ExpiresAt.Time, nil
}
