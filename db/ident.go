package db

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"strings"
)

const (
	// ShortHashLen is the length of a ShortHash fingerprint.
	ShortHashLen = 3
	// RandomIDLen is the length of a RandomID; 9 random bytes encode
	// to 12 base64 characters without padding.
	RandomIDLen   = 12
	randomIDBytes = 9
)

// ShortHash returns a stable three-character fingerprint of s.  The
// input is lower-cased before hashing, so "B3LYP" and "b3lyp" share a
// fingerprint.  Three URL-safe base64 characters give 262,144 distinct
// values -- enough to tell configurations apart in a directory name,
// not enough to be used as a unique key on its own.
func ShortHash(s string) string {
	sum := md5.Sum([]byte(strings.ToLower(s)))
	enc := base64.URLEncoding.EncodeToString(sum[:])
	return enc[:ShortHashLen]
}

// RandomID returns a new random identifier drawn from crypto/rand.
// Callers must still check for an existing directory before using it.
func RandomID() (id string, err error) {
	buf := make([]byte, randomIDBytes)
	_, err = rand.Read(buf)
	if err != nil {
		return
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// IsRandomID reports whether s has the shape of a RandomID.  It does
// not say whether s was actually generated by RandomID.
func IsRandomID(s string) bool {
	if len(s) != RandomIDLen {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
