package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/anonq-bot/internal/config"
)

var (
	ErrOpsAuthDisabled = errors.New("ops authentication is not configured")
	ErrTokenRevoked    = errors.New("token has been revoked")
)

// OpsClaims are carried by tokens for the ops HTTP API.
type OpsClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// ScopeOpsRead allows reading counters and streaming lifecycle events.
const ScopeOpsRead = "ops:read"

// AuthService issues and validates ops API tokens. Revocations live in Redis
// until the token would have expired anyway.
type AuthService struct {
	secret []byte
	expiry time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewAuthService creates a new AuthService. rdb may be nil, which disables revocation.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{
		secret: []byte(cfg.OpsJWTSecret),
		expiry: cfg.OpsJWTExpiry,
		rdb:    rdb,
		now:    time.Now,
	}
}

// Enabled reports whether a signing secret is configured.
func (s *AuthService) Enabled() bool {
	return len(s.secret) > 0
}

// IssueToken signs a read-only ops token for subject.
func (s *AuthService) IssueToken(subject string) (string, *OpsClaims, error) {
	if !s.Enabled() {
		return "", nil, ErrOpsAuthDisabled
	}

	now := s.now()
	claims := &OpsClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    "anonq-bot",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Scope: ScopeOpsRead,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*OpsClaims, error) {
	if !s.Enabled() {
		return nil, ErrOpsAuthDisabled
	}

	token, err := jwt.ParseWithClaims(tokenStr, &OpsClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*OpsClaims)
	if !ok || !token.Valid || claims.Scope != ScopeOpsRead {
		return nil, errors.New("invalid token claims")
	}

	if s.rdb != nil && claims.ID != "" {
		n, err := s.rdb.Exists(ctx, config.CacheKey.RevokedTokenKey(claims.ID)).Result()
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if n > 0 {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke blocks the token with the given id until expiresAt.
func (s *AuthService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return errors.New("revocation requires redis")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), "1", ttl).Err()
}
