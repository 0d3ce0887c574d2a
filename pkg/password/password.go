// Package password provides one-way password hashing and verification
// using bcrypt. Hashes embed their own salt and cost, so verification
// needs no external parameters.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for new hashes.
const DefaultCost = 12

// dummyHash is a valid bcrypt hash of an unguessable random string. It is
// compared against when no stored hash exists, so the unknown-user path
// costs the same as the wrong-password path.
const dummyHash = "$2a$12$8vxYfAWCVoB5JQ6Yyv5QOO1msPearjNm5XrfRrDLGTLQKo4Tn6/wW"

// Hasher hashes and verifies passwords. The zero value is not usable;
// construct with New.
type Hasher struct {
	cost int
}

// New creates a Hasher with the given bcrypt cost. Costs below the bcrypt
// minimum fall back to DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of the plaintext. Two calls with the
// same plaintext produce different hashes. An error here is a fatal
// internal failure, not a property of the input.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// a normal false result, never an error. bcrypt's comparison is constant
// time with respect to the hash contents.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// DummyCompare burns one bcrypt comparison against a fixed hash. Callers
// invoke it on the identity-not-found path so response timing does not
// reveal whether an account exists.
func (h *Hasher) DummyCompare(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}
