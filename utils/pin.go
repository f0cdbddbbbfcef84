package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPIN bcrypt-hashes a PIN. An empty PIN stays empty: the account has none.
func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPIN reports whether pin matches the stored hash. Accounts without a
// PIN accept only the empty PIN.
func CheckPIN(hash, pin string) bool {
	if hash == "" {
		return pin == ""
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// IsPINHash tells a stored bcrypt hash apart from a plain PIN, as found in
// exports written by older clients.
func IsPINHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
