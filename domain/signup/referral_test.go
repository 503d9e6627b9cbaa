package signup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFor(t *testing.T) {
	t.Run("deterministic for the same email", func(t *testing.T) {
		first := CodeFor("user@example.com")
		second := CodeFor("user@example.com")

		assert.Equal(t, first, second)
	})

	t.Run("fixed shape regardless of input length", func(t *testing.T) {
		for _, email := range []string{
			"a@b.co",
			"user@example.com",
			"a-rather-long-address-with-many-characters@subdomain.example.org",
			"",
		} {
			code := CodeFor(email)

			assert.True(t, strings.HasPrefix(code, "hs_"), "code %q missing prefix", code)
			assert.Len(t, code, len("hs_")+6, "code %q has wrong length", code)
		}
	})

	t.Run("distinct emails produce distinct codes", func(t *testing.T) {
		assert.NotEqual(t, CodeFor("first@example.com"), CodeFor("second@example.com"))
	})
}

func TestNormalizeEmail(t *testing.T) {
	t.Run("trims and lowercases", func(t *testing.T) {
		normalized, ok := NormalizeEmail("  User@Example.COM \t")

		assert.True(t, ok)
		assert.Equal(t, "user@example.com", normalized)
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, input := range []string{"", "   ", "plain-text", "missing@tld", "@example.com", "user@.com"} {
			_, ok := NormalizeEmail(input)
			assert.False(t, ok, "expected %q to be rejected", input)
		}
	})
}
