package utils

import (
	"math/rand"
	"path"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomAlphabetString generates a random lowercase string of length n.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// GetUrlExtNameWithDot returns the lowercased extension of the last path
// segment including the leading dot, or "" when there is none. Query
// strings are stripped first.
func GetUrlExtNameWithDot(url string) string {
	if idx := strings.IndexByte(url, '?'); idx >= 0 {
		url = url[:idx]
	}
	return strings.ToLower(path.Ext(url))
}
