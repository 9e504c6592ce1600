package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTokenInvalid covers expired, malformed and revoked tokens.
var ErrTokenInvalid = errors.New("token invalid")

// Claims carries the tenant scope inside a bearer token.
type Claims struct {
	UserID    int64  `json:"uid"`
	CompanyID int64  `json:"cid"`
	BranchID  *int64 `json:"bid,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed bearer tokens. Revocation is a
// redis denylist keyed by token ID, expiring with the token itself.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration, rdb *redis.Client) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, ttl: ttl, rdb: rdb, now: time.Now}
}

// TTL reports the configured token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the user.
func (m *TokenManager) Issue(u *User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:    u.ID,
		CompanyID: u.CompanyID,
		BranchID:  u.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses the token and checks the revocation denylist.
func (m *TokenManager) Verify(ctx context.Context, raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	revoked, err := m.rdb.Exists(ctx, revocationKey(claims.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked > 0 {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

// Revoke denylists the token until its natural expiry.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revocationKey(claims.ID), "1", ttl).Err()
}

func revocationKey(jti string) string {
	return "auth:revoked:" + jti
}
