package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_UniqueTokens(t *testing.T) {
	g := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := g.Generate()
		require.NotEmpty(t, token, "token should not be empty")
		require.Len(t, token, 36, "token should be a canonical UUID string")
		assert.False(t, seen[token], "token %q issued twice", token)
		seen[token] = true
	}
}

func TestFixedTokenGenerator_ReturnsTokensInOrder(t *testing.T) {
	g := NewFixedTokenGenerator("first", "second", "third")

	assert.Equal(t, "first", g.Generate())
	assert.Equal(t, "second", g.Generate())
	assert.Equal(t, "third", g.Generate())
}

func TestFixedTokenGenerator_PanicsWhenExhausted(t *testing.T) {
	g := NewFixedTokenGenerator("only")
	g.Generate()

	assert.Panics(t, func() { g.Generate() }, "exhausted generator should panic instead of repeating tokens")
}
