package services

import (
	"context"
	"time"

	apperrors "atendezap/pkg/errors"
	"atendezap/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService is a thin token layer: the real auth/PIN system is an external
// collaborator, this only extracts the identity id used as the fan-out
// subscription key.
type AuthService struct {
	secret []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

type identityClaims struct {
	IdentityID string `json:"identity_id"`
	jwt.RegisteredClaims
}

// IdentityFromToken parses a bearer token into the identity id. Satisfies
// the hub's Authorizer.
func (s *AuthService) IdentityFromToken(token string) (string, error) {
	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", apperrors.ErrUnauthorized
	}
	if claims.IdentityID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return claims.IdentityID, nil
}

// IssueToken mints a short-lived token for an identity. Used by tests and
// local tooling; production tokens come from the auth collaborator.
func (s *AuthService) IssueToken(identityID string, ttl time.Duration) (string, error) {
	claims := identityClaims{
		IdentityID: identityID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

type identityCtxKey struct{}

// WithIdentity stores the authenticated identity on the context.
func WithIdentity(ctx context.Context, identityID string) context.Context {
	ctx = context.WithValue(ctx, identityCtxKey{}, identityID)
	return context.WithValue(ctx, logger.IdentityIdKey, identityID)
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(string)
	return id, ok
}
