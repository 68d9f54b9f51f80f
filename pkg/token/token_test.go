package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, TRUE, LookupIdent("true"))
	assert.Equal(t, PRINTLN, LookupIdent("println"))
	assert.Equal(t, START, LookupIdent("Start"))
	assert.Equal(t, END, LookupIdent("End"))
	assert.Equal(t, IDENT, LookupIdent("x"))

	// Lookup is case-sensitive.
	assert.Equal(t, IDENT, LookupIdent("True"))
	assert.Equal(t, IDENT, LookupIdent("START"))
	assert.Equal(t, IDENT, LookupIdent("start"))
}

func TestIsReserved(t *testing.T) {
	for _, word := range []string{"true", "false", "input", "as", "int", "str", "println", "print", "error", "Start", "End"} {
		assert.True(t, IsReserved(word), word)
	}
	assert.False(t, IsReserved("x"))
	assert.False(t, IsReserved("begin"))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "==", EQ.String())
	assert.Equal(t, "EOF", EOF.String())
	assert.Equal(t, "IDENT", IDENT.String())
	assert.Equal(t, "println", PRINTLN.String())
}

func TestPosition_IsValid(t *testing.T) {
	assert.False(t, Position{}.IsValid())
	assert.True(t, Position{Line: 1, Column: 1}.IsValid())
}
