package signup

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	referralCodePrefix = "hs_"
	referralCodeLength = 6
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// NormalizeEmail trims and lowercases an address. The returned bool reports
// whether the normalized form matches a standard address pattern.
func NormalizeEmail(email string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", false
	}
	return normalized, emailPattern.MatchString(normalized)
}

// CodeFor derives a referral code from an email. It is pure: the same email
// always yields the same code, which is what makes re-ingestion idempotent.
// Codes are not checked for collisions against existing entries.
func CodeFor(email string) string {
	var hash int32
	for _, ch := range email {
		hash = hash*31 + int32(ch)
	}

	value := int64(hash)
	if value < 0 {
		value = -value
	}

	encoded := strconv.FormatInt(value, 36)
	if len(encoded) > referralCodeLength {
		encoded = encoded[:referralCodeLength]
	}
	for len(encoded) < referralCodeLength {
		encoded = "0" + encoded
	}

	return referralCodePrefix + encoded
}
