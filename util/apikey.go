package util

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PrefixLength is the length of the public part of an API key, before the dot.
const PrefixLength = 8

const hashCost = 12

// GenerateAPIKey returns a key of the form <8 char prefix>.<secret>.
func GenerateAPIKey() string {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:PrefixLength]
	secret := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "." + secret
}

// KeyPrefix returns the public part of key.
func KeyPrefix(key string) (string, error) {
	prefix, _, found := strings.Cut(key, ".")
	if !found || len(prefix) != PrefixLength {
		return "", errors.New("please input a valid API Key")
	}
	return prefix, nil
}

// HashAPIKey returns the bcrypt hash stored server side.
func HashAPIKey(key string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(key), hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
