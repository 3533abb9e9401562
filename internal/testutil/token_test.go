package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunToken_ReturnsSameToken(t *testing.T) {
	gen := NewFixedRunToken("run-a")
	assert.Equal(t, "run-a", gen.Generate())
	assert.Equal(t, "run-a", gen.Generate())
}

func TestFixedRunToken_EmptyTokenDefault(t *testing.T) {
	assert.Equal(t, "test-run-default", NewFixedRunToken("").Generate())
}
