package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/blogsphere/backend/internal/common/constants"
)

var ErrMalformedHash = errors.New("malformed password hash")

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare reports a mismatch as (false, nil); only unusable input is an error.
	Compare(hash string, password string) (bool, error)
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < constants.MinBcryptCost || cost > constants.MaxBcryptCost {
		cost = constants.DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash string, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
