// Package token encodes and verifies the signed session tokens issued
// after login. Tokens are compact JWTs signed with HMAC-SHA-256 over a
// process-wide symmetric secret.
//
// Verification fails closed: signature, algorithm, issuer, and expiration
// are all checked before any claim is handed to the caller. The error
// taxonomy (ErrInvalidSignature, ErrInvalidIssuer, ErrExpired,
// ErrMalformed) is for diagnostics; the authenticator chain collapses all
// of them into a silent non-match.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification errors.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrInvalidIssuer    = errors.New("token issuer is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrMalformed        = errors.New("token is malformed")
)

// Claims is the payload embedded in a session token. UserID carries the
// principal identifier; Subject carries the email the token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// Codec signs and verifies session tokens. The secret and issuer are fixed
// at construction and never mutated.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec creates a Codec with the given symmetric secret and issuer.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret must not be empty")
	}
	if issuer == "" {
		return nil, errors.New("issuer must not be empty")
	}
	return &Codec{secret: secret, issuer: issuer, now: time.Now}, nil
}

// Issuer returns the issuer embedded in signed tokens.
func (c *Codec) Issuer() string {
	return c.issuer
}

// NewClaims builds a claim set for the given user, valid from now until
// now plus ttl. Timestamps are truncated to whole seconds to match the
// JWT wire format.
func (c *Codec) NewClaims(userID uuid.UUID, email string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}
}

// Sign serializes the claims and returns the compact signed token.
func (c *Codec) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a compact token string. The signature is
// checked before claims are interpreted; the declared algorithm must be
// HS256; the issuer must match exactly; and the expiration must be
// strictly in the future (a token expiring exactly now is expired, with
// zero clock leeway).
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing uid claim", ErrMalformed)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrMalformed)
	}

	return claims, nil
}

// classify maps jwt/v5 sentinel errors onto the package taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrInvalidIssuer, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
