package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	exchangeIDPrefix = "exch_"
)

var exchangeIDPattern = regexp.MustCompile(`^exch_[a-zA-Z0-9]{24}$`)

// NewExchangeID generates a new exchange ID with the "exch_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewExchangeID() string {
	return exchangeIDPrefix + randomAlphanumeric(idLength)
}

// ValidateExchangeID checks whether the given string is a valid exchange ID
// (matches "exch_" + 24 alphanumeric characters).
func ValidateExchangeID(id string) bool {
	return exchangeIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
