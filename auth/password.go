package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DummyHash is compared against when the account does not exist, so login
// takes the same time whether or not the identifier is known.
// bcrypt hash of an unguessable throwaway value.
const DummyHash = "$2a$14$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword enforces the minimum password strength accepted at
// registration and on password change.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
