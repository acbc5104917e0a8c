package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Credential is a signed token and its expiry.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type tokenClaims struct {
	Email      string   `json:"email"`
	UniqueName string   `json:"unique_name"`
	Role       []string `json:"role"`
	Permission []string `json:"permission"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  internal.Clock
}

// NewTokenIssuer refuses to build with a secret shorter than the HS512
// minimum. The secret is never logged.
func NewTokenIssuer(secret string, ttl time.Duration, clock internal.Clock) (*TokenIssuer, error) {
	if len(secret) < internal.MinJWTSecretLength {
		return nil, internal.NewConfigurationError(fmt.Sprintf("jwt secret must be at least %d bytes", internal.MinJWTSecretLength))
	}
	if ttl <= 0 {
		ttl = internal.DefaultTokenDuration
	}
	if clock == nil {
		clock = internal.SystemClock{}
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

func (t *TokenIssuer) Issue(claims ClaimSet) (Credential, error) {
	now := t.clock.Now().Truncate(time.Second)
	expiresAt := now.Add(t.ttl)

	tc := tokenClaims{
		Email:      claims.Email,
		UniqueName: claims.Username,
		Role:       sortedUnique(claims.Roles),
		Permission: sortedUnique(claims.Permissions),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, tc).SignedString(t.secret)
	if err != nil {
		return Credential{}, internal.NewInternalError("failed to sign token", err)
	}
	return Credential{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry and returns the embedded claim set.
func (t *TokenIssuer) Verify(token string) (ClaimSet, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ClaimSet{}, internal.ErrTokenExpired
		}
		return ClaimSet{}, internal.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid || tc.Subject == "" {
		return ClaimSet{}, internal.ErrInvalidToken
	}

	return NewClaimSet(tc.Subject, tc.Email, tc.UniqueName, tc.Role, tc.Permission), nil
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}
