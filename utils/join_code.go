package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

// Join codes are 7 characters drawn from letters, digits and hyphen.
const JoinCodeLength = 7

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-"

var joinCodePattern = regexp.MustCompile(`^[A-Za-z0-9\-]{7}$`)

// GenerateJoinCode returns a random join code. Uniqueness is enforced
// by the database constraint, not here; callers retry on conflict.
func GenerateJoinCode() (string, error) {
	code := make([]byte, JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// IsValidJoinCode reports whether a code has the expected shape.
func IsValidJoinCode(code string) bool {
	return joinCodePattern.MatchString(code)
}
