// Package auth verifies rider bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

const claimRiderID = "rider_id"

type TokenService struct {
	secret string
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: secret,
		now:    time.Now,
	}
}

// Enabled reports whether a secret is configured. Without one every request is anonymous.
func (s *TokenService) Enabled() bool {
	return s.secret != ""
}

// RiderID validates an HS256 token and returns its rider_id claim.
func (s *TokenService) RiderID(ctx context.Context, token string) (string, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	if !s.Enabled() {
		return "", wrap.Error(ctx, ErrNoSecret)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", wrap.Error(ctx, fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpToken))
		}
		return "", wrap.Error(ctx, ErrInvalidToken)
	}
	if !parsed.Valid {
		return "", wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", wrap.Error(ctx, ErrInvalidToken)
	}

	rider, _ := mc[claimRiderID].(string)
	if rider == "" {
		return "", wrap.Error(ctx, fmt.Errorf("%w: missing '%s' claim", ErrInvalidToken, claimRiderID))
	}
	return rider, nil
}

// Issue signs a token for rider valid for ttl. Tokens are normally minted elsewhere;
// this is used by tooling and tests.
func (s *TokenService) Issue(rider string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrNoSecret
	}

	issuedAt := s.now().UTC()
	claims := jwt.MapClaims{
		"jti":        uuid.NewString(),
		claimRiderID: rider,
		"iat":        issuedAt.Unix(),
		"exp":        issuedAt.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
