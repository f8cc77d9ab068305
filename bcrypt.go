package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor applied to new password hashes. Raising
// it only affects hashes minted afterwards, stored hashes keep the cost
// they were created with.
var BcryptCost = 12

// HashPassword derives a bcrypt hash from a cleartext password. Empty
// input is rejected before it reaches the hasher.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}

	return string(h), nil
}

// ComparePasswordAndHash checks a cleartext password against a stored
// hash. A mismatch returns ErrMismatchedHashAndPassword; a hash that is
// not bcrypt output at all (the provider sentinels included) surfaces
// the underlying parse error instead.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedHashAndPassword
	}

	return err
}

// RandomPasswordHash mints a hash of a throwaway random password, for
// accounts that need a placeholder credential no one can ever type.
func RandomPasswordHash() string {
	h, err := HashPassword(uuid.NewString())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
