package testutil

// StaticTokenGenerator returns the same session token on every load.
//
// This enables deterministic traces and golden snapshot comparison: the same
// scenario with the same StaticTokenGenerator produces byte-identical output.
//
// Unlike player.FixedTokenGenerator, which hands out a declared sequence and
// panics on exhaustion, this generator never runs out. It suits harness
// scenarios where every load should share one stable token.
//
// Thread-safety: StaticTokenGenerator is stateless and safe for concurrent use.
type StaticTokenGenerator struct {
	token string
}

// NewStaticTokenGenerator creates a generator pinned to one token.
//
// The token is typically set in the scenario YAML:
//
//	session_token: "scenario-session-0001"
//
// If token is empty, Generate returns "test-session-default".
func NewStaticTokenGenerator(token string) *StaticTokenGenerator {
	if token == "" {
		token = "test-session-default"
	}
	return &StaticTokenGenerator{token: token}
}

// Generate returns the pinned token.
//
// Implements player.TokenGenerator.
func (g *StaticTokenGenerator) Generate() string {
	return g.token
}
