package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its bcrypt hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRefreshToken produces an opaque refresh token: 64 bytes of
// cryptographically secure random data, base64-encoded. Uniqueness rests on
// the randomness, no collision check is performed.
func GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 64)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

// Character classes for temporary passwords. Ambiguous characters (I, l, O,
// 0, 1) are excluded.
const (
	tempPasswordUppercase = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	tempPasswordLowercase = "abcdefghjkmnpqrstuvwxyz"
	tempPasswordDigits    = "23456789"
	tempPasswordSymbols   = "!@#$%^&*"
	tempPasswordLength    = 12
)

// GenerateTemporaryPassword builds a 12-character password containing at
// least one uppercase letter, one lowercase letter, one digit and one symbol.
// All randomness comes from crypto/rand.
func GenerateTemporaryPassword() (string, error) {
	classes := []string{
		tempPasswordUppercase,
		tempPasswordLowercase,
		tempPasswordDigits,
		tempPasswordSymbols,
	}
	allChars := tempPasswordUppercase + tempPasswordLowercase + tempPasswordDigits + tempPasswordSymbols

	password := make([]byte, 0, tempPasswordLength)

	// One character from each class guarantees the composition requirements
	for _, class := range classes {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	for len(password) < tempPasswordLength {
		ch, err := randomChar(allChars)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	// Fisher-Yates so the guaranteed characters do not sit at fixed positions
	for i := len(password) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(n.Int64())
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
