package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeSignature returns the base64 HMAC-SHA256 of a raw request body.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a provided signature against the raw body in
// constant time. Verification happens before any parsing so malformed
// payloads from unauthenticated senders never reach the decoder.
func VerifySignature(secret string, body []byte, provided string) bool {
	expected := ComputeSignature(secret, body)

	return hmac.Equal([]byte(expected), []byte(provided))
}
