package parser

import (
	"fmt"

	"github.com/merx-lang/merx/pkg/token"
)

// Category classifies a syntax error.
type Category int

// Syntax error categories.
const (
	CatUnexpectedToken Category = iota
	CatUnterminatedString
	CatBadEscape
	CatMalformedArrow
	CatMismatchedBrackets
	CatReservedIdent
)

// String returns a short name for the category.
func (c Category) String() string {
	switch c {
	case CatUnterminatedString:
		return "unterminated string"
	case CatBadEscape:
		return "bad escape"
	case CatMalformedArrow:
		return "malformed arrow"
	case CatMismatchedBrackets:
		return "mismatched brackets"
	case CatReservedIdent:
		return "reserved identifier"
	}
	return "unexpected token"
}

// SyntaxError is a parse or lex failure with its source position.
// Errors halt parsing; there is no recovery.
type SyntaxError struct {
	Pos      token.Position
	Category Category
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func syntaxErr(pos token.Position, cat Category, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Category: cat, Message: fmt.Sprintf(format, args...)}
}
