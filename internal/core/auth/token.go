package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userhive/account-api/internal/core/domain"
)

// TokenType selects which signing configuration a token is issued and
// verified under. Access and refresh tokens use distinct secrets, so one can
// never be accepted in place of the other.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenConfig is the per-type signing configuration.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	// Issuer, when non-empty, is embedded at generation and checked at
	// verification.
	Issuer string
}

// Claims is the verified identity carried by a token.
type Claims struct {
	ID   int64
	Role domain.Role
}

// TokenCodec encodes and decodes signed, expiring identity claims. It knows
// nothing about users; subjects are opaque ids. Stateless: expiry is the only
// invalidation mechanism, there is no server-side revocation.
type TokenCodec struct {
	configs map[TokenType]TokenConfig
	now     func() time.Time
}

func NewTokenCodec(access, refresh TokenConfig) *TokenCodec {
	return &TokenCodec{
		configs: map[TokenType]TokenConfig{
			TokenAccess:  access,
			TokenRefresh: refresh,
		},
		now: time.Now,
	}
}

// Generate signs a token of the given type for the subject id and role.
func (c *TokenCodec) Generate(id int64, role domain.Role, typ TokenType) (string, error) {
	cfg, ok := c.configs[typ]
	if !ok {
		return "", ErrTokenTypeMismatch
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(id, 10),
		Audience:  jwt.ClaimStrings{role.String()},
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	if cfg.Issuer != "" {
		claims.Issuer = cfg.Issuer
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(cfg.Secret))
}

// Verify validates signature, expiry, issuer and type-specific secret, and
// returns the embedded claims. Empty tokens are the caller's concern: the
// caller maps "no token" to the anonymous identity before calling Verify.
func (c *TokenCodec) Verify(token string, typ TokenType) (Claims, error) {
	cfg, ok := c.configs[typ]
	if !ok {
		return Claims{}, ErrTokenTypeMismatch
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return Claims{}, mapTokenError(err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}
	if len(claims.Audience) != 1 {
		return Claims{}, ErrTokenMalformed
	}
	role, err := domain.ParseRole(claims.Audience[0])
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}

	return Claims{ID: id, Role: role}, nil
}

// mapTokenError collapses jwt library failures into the codec's taxonomy.
// A signature that does not verify under this type's secret is reported as a
// type mismatch: a token signed for the other type is indistinguishable from
// a tampered one at this layer.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenTypeMismatch
	default:
		return ErrTokenMalformed
	}
}
