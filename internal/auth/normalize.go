package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	plateSeriesRe = regexp.MustCompile(`^([0-9A-Z]{2,3})([0-9A-Z]+)`)
	phoneCharsRe  = regexp.MustCompile(`[^+0-9]`)
	localPhoneRe  = regexp.MustCompile(`^0\d{9,10}$`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// NormalizePlate uppercases a license plate, strips whitespace and inserts
// the series dash when missing ("92a 12345" -> "92A-12345").
func NormalizePlate(raw string) string {
	s := spaceRe.ReplaceAllString(strings.ToUpper(raw), "")
	if strings.Contains(s, "-") {
		return s
	}
	return plateSeriesRe.ReplaceAllString(s, "$1-$2")
}

// NormalizePhone strips everything but digits and a leading plus, and
// rewrites local Vietnamese numbers ("09...") to +84 form.
func NormalizePhone(raw string) string {
	s := spaceRe.ReplaceAllString(raw, "")
	s = phoneCharsRe.ReplaceAllString(s, "")
	if localPhoneRe.MatchString(s) {
		s = "+84" + s[1:]
	}
	return s
}

// HashPassword returns the hex SHA-256 of the password. A single unsalted
// round is a stand-in scheme; the account directory owns the real policy.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
