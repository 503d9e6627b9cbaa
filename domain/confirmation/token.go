package confirmation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/waitlist-funnel/domain/signup"
	"github.com/google/uuid"
)

// ErrorKind classifies why a token failed validation.
type ErrorKind string

const (
	KindExpired        ErrorKind = "expired"
	KindMalformedToken ErrorKind = "malformed_token"
	KindMalformedEmail ErrorKind = "malformed_email"
)

// Validation is the outcome of checking a token. Email is set only when the
// token is valid.
type Validation struct {
	Valid bool
	Email string
	Kind  ErrorKind
}

// TokenManager issues and validates signed confirmation tokens. A token is
// base64url("email:issuedAtMillis:nonce:signature") where the signature is an
// HMAC-SHA256 over the first three segments. Tokens are stateless: validation
// needs only the secret, not a database lookup.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (tm *TokenManager) Issue(email string) (string, error) {
	if len(tm.secret) == 0 {
		return "", fmt.Errorf("confirmation token secret is not configured")
	}

	nonce := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	payload := fmt.Sprintf("%s:%d:%s", email, tm.now().UnixMilli(), nonce)
	token := payload + ":" + tm.sign(payload)

	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func (tm *TokenManager) Validate(token string) Validation {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Validation{Kind: KindMalformedToken}
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) < 4 {
		return Validation{Kind: KindMalformedToken}
	}

	// The email may itself contain colons when quoted, so everything up to
	// the last three segments belongs to it.
	email := strings.Join(parts[:len(parts)-3], ":")
	issuedAtStr := parts[len(parts)-3]
	nonce := parts[len(parts)-2]
	signature := parts[len(parts)-1]

	payload := fmt.Sprintf("%s:%s:%s", email, issuedAtStr, nonce)
	if !hmac.Equal([]byte(signature), []byte(tm.sign(payload))) {
		return Validation{Kind: KindMalformedToken}
	}

	issuedAtMillis, err := strconv.ParseInt(issuedAtStr, 10, 64)
	if err != nil {
		return Validation{Kind: KindMalformedToken}
	}

	issuedAt := time.UnixMilli(issuedAtMillis)
	if tm.now().Sub(issuedAt) > tm.ttl {
		return Validation{Kind: KindExpired}
	}

	normalized, ok := signup.NormalizeEmail(email)
	if !ok {
		return Validation{Kind: KindMalformedEmail}
	}

	return Validation{Valid: true, Email: normalized}
}

func (tm *TokenManager) sign(payload string) string {
	mac := hmac.New(sha256.New, tm.secret)
	mac.Write([]byte(payload))

	return hex.EncodeToString(mac.Sum(nil))
}
