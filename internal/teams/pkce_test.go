package teams

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestChallengeKnownVector(t *testing.T) {
	// RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		oauth2.S256ChallengeFromVerifier(verifier))
}

func TestChallengeHasNoPadding(t *testing.T) {
	v := oauth2.GenerateVerifier()
	assert.NotContains(t, oauth2.S256ChallengeFromVerifier(v), "=")
	assert.NotContains(t, v, "=")
}

func TestVerifierShape(t *testing.T) {
	unreserved := regexp.MustCompile(`^[A-Za-z0-9\-_]{43}$`)
	seen := map[string]bool{}
	for i := 0; i < 16; i++ {
		v := oauth2.GenerateVerifier()
		assert.Regexp(t, unreserved, v)
		assert.False(t, seen[v], "verifiers must not repeat")
		seen[v] = true
	}
}
