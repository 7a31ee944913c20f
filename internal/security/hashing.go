package security

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for passwords bcrypt would reject.
var ErrPasswordTooLong = errors.New("security: password exceeds 72 bytes")

// Hasher stores and checks account passwords with bcrypt.
type Hasher struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher at cost, clamped to bcrypt's accepted range. Zero selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the encoded bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func (h *Hasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Burn spends one comparison against a fixed hash so lookups for unknown accounts take as long as real ones.
func (h *Hasher) Burn(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("taskhub-unknown-account"), h.Cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
