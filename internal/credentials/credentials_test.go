package credentials

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestGenerateInviteToken(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
	}{
		{name: "single token", iterations: 1},
		{name: "many tokens", iterations: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]bool)
			for i := 0; i < tt.iterations; i++ {
				token, err := GenerateInviteToken()
				require.NoError(t, err)
				assert.Regexp(t, tokenPattern, token)
				seen[token] = true
			}
			// 36^6 possibilities make a collision in 200 draws vanishingly rare
			assert.GreaterOrEqual(t, len(seen), tt.iterations-1)
		})
	}
}

func TestIDs(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.True(t, strings.HasPrefix(NewFamilyID(), "family-"))
}
