package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carlot/carlot/internal/model"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = time.Hour

var (
	// ErrInvalidToken is returned for every verification failure:
	// malformed input, bad signature and expiry are indistinguishable.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret indicates the signing secret was not configured.
	ErrEmptySecret = errors.New("token signing secret is empty")
)

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	Secret string
	// TTL defaults to DefaultTokenTTL.
	TTL time.Duration
	// Now defaults to time.Now. Tests inject a fixed clock.
	Now func() time.Time
}

// tokenClaims is the signed payload.
type tokenClaims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens with a secret fixed
// at construction.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer. It fails when the secret is empty so a
// misconfigured process refuses to start instead of failing per request.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenIssuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token carrying the user's name and id.
// Token times are whole seconds, so the lifetime can fall short of the TTL
// by the sub-second part of the issue time.
func (i *TokenIssuer) Issue(user *model.User) (string, error) {
	now := i.now()
	claims := tokenClaims{
		Username: user.Username,
		UserID:   user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Any failure yields ErrInvalidToken.
func (i *TokenIssuer) Verify(token string) (*model.Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &model.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}
