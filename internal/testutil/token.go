package testutil

// FixedRunToken generates the same run token every time.
//
// Unlike engine.FixedGenerator which returns tokens in sequence, this
// generator never runs out, so the same scenario run twice produces
// byte-identical stored runs.
type FixedRunToken struct {
	token string
}

// NewFixedRunToken creates a generator for token.
// If token is empty, Generate() returns "test-run-default".
func NewFixedRunToken(token string) *FixedRunToken {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedRunToken{token: token}
}

// Generate returns the fixed run token.
func (g *FixedRunToken) Generate() string {
	return g.token
}
