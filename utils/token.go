package utils

import (
	"crypto/rand"
)

// GenerateRandomToken returns length characters from [a-zA-Z0-9].
func GenerateRandomToken(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := make([]byte, length)
	for i, b := range buf {
		token[i] = charset[int(b)%len(charset)]
	}
	return string(token), nil
}
