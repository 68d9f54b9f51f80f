package parser

import (
	"testing"

	"github.com/merx-lang/merx/pkg/ast"
	"github.com/merx-lang/merx/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression_Literals(t *testing.T) {
	tests := []struct {
		input string
		want  ast.Expr
	}{
		{"42", &ast.IntLit{Value: 42}},
		{"'hi'", &ast.StrLit{Value: "hi"}},
		{"true", &ast.BoolLit{Value: true}},
		{"false", &ast.BoolLit{Value: false}},
		{"input", &ast.InputExpr{}},
		{"x", &ast.VarRef{Name: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseExpression(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr)
		})
	}
}

// rendered strings parenthesize wherever precedence requires it, so
// asserting on String() checks tree shape without spelling out nested
// structs.
func TestParseExpression_Precedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - 2 - 3", "1 - 2 - 3"},         // left associative
		{"1 - (2 - 3)", "1 - (2 - 3)"},     // explicit grouping preserved
		{"1 + 2 < 3 * 4", "1 + 2 < 3 * 4"}, // cmp below arithmetic
		{"a < b == c < d", "a < b == c < d"},
		{"a == b && c == d", "a == b && c == d"},
		{"a && b || c && d", "a && b || c && d"},
		{"!a && b", "!a && b"},
		{"!(a && b)", "!(a && b)"},
		{"--x", "--x"},
		{"-5 % 3", "-5 % 3"},
		{"1 + x as str", "1 + x as str"}, // cast binds tighter than +
		{"(1 + x) as str", "(1 + x) as str"},
		{"x as str as int", "x as str as int"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseExpression(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestParseExpression_TreeShapes(t *testing.T) {
	t.Run("mul binds tighter than add", func(t *testing.T) {
		expr, err := ParseExpression("1 + 2 * 3")
		require.NoError(t, err)
		bin, ok := expr.(*ast.BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, ast.OpAdd, bin.Op)
		right, ok := bin.Right.(*ast.BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, ast.OpMul, right.Op)
	})

	t.Run("left associativity", func(t *testing.T) {
		expr, err := ParseExpression("10 - 4 - 3")
		require.NoError(t, err)
		bin, ok := expr.(*ast.BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, ast.OpSub, bin.Op)
		left, ok := bin.Left.(*ast.BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, ast.OpSub, left.Op)
		assert.Equal(t, &ast.IntLit{Value: 3}, bin.Right)
	})

	t.Run("unary binds tighter than cast", func(t *testing.T) {
		expr, err := ParseExpression("-x as str")
		require.NoError(t, err)
		cast, ok := expr.(*ast.CastExpr)
		require.True(t, ok)
		assert.Equal(t, ast.TypeStr, cast.Target)
		_, ok = cast.Expr.(*ast.UnaryExpr)
		assert.True(t, ok)
	})

	t.Run("cast binds tighter than mul", func(t *testing.T) {
		expr, err := ParseExpression("a * b as int")
		require.NoError(t, err)
		bin, ok := expr.(*ast.BinaryExpr)
		require.True(t, ok)
		assert.Equal(t, ast.OpMul, bin.Op)
		_, ok = bin.Right.(*ast.CastExpr)
		assert.True(t, ok)
	})

	t.Run("stacked unary operators", func(t *testing.T) {
		expr, err := ParseExpression("!!b")
		require.NoError(t, err)
		outer, ok := expr.(*ast.UnaryExpr)
		require.True(t, ok)
		inner, ok := outer.Operand.(*ast.UnaryExpr)
		require.True(t, ok)
		assert.Equal(t, &ast.VarRef{Name: "b"}, inner.Operand)
	})
}

func TestParseExpression_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cat   Category
	}{
		{"empty", "", CatUnexpectedToken},
		{"dangling operator", "1 +", CatUnexpectedToken},
		{"missing paren", "(1 + 2", CatMismatchedBrackets},
		{"bad cast target", "x as bool", CatUnexpectedToken},
		{"reserved Start", "Start + 1", CatReservedIdent},
		{"reserved End", "End", CatReservedIdent},
		{"int overflow", "9223372036854775808", CatUnexpectedToken},
		{"trailing junk", "1 2", CatUnexpectedToken},
		{"lone ampersand", "a & b", CatUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExpression(tt.input)
			require.Error(t, err)
			var serr *SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.cat, serr.Category)
		})
	}
}

func TestParseExpression_MaxInt(t *testing.T) {
	expr, err := ParseExpression("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, &ast.IntLit{Value: 9223372036854775807}, expr)
}

func TestParseStatements(t *testing.T) {
	t.Run("single statement", func(t *testing.T) {
		stmts, err := ParseStatements("println 'hi'", token.Position{})
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		assert.Equal(t, &ast.PrintlnStmt{Expr: &ast.StrLit{Value: "hi"}}, stmts[0])
	})

	t.Run("statement sequence", func(t *testing.T) {
		stmts, err := ParseStatements("x = 1; print x; error 'oops'", token.Position{})
		require.NoError(t, err)
		require.Len(t, stmts, 3)
		assert.Equal(t, &ast.AssignStmt{Name: "x", Value: &ast.IntLit{Value: 1}}, stmts[0])
		assert.Equal(t, &ast.PrintStmt{Expr: &ast.VarRef{Name: "x"}}, stmts[1])
		assert.Equal(t, &ast.ErrorStmt{Expr: &ast.StrLit{Value: "oops"}}, stmts[2])
	})

	t.Run("trailing semicolon", func(t *testing.T) {
		stmts, err := ParseStatements("x = 1;", token.Position{})
		require.NoError(t, err)
		assert.Len(t, stmts, 1)
	})

	t.Run("assignment to reserved word", func(t *testing.T) {
		_, err := ParseStatements("true = 1", token.Position{})
		require.Error(t, err)
	})

	t.Run("assignment to Start", func(t *testing.T) {
		_, err := ParseStatements("Start = 1", token.Position{})
		var serr *SyntaxError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, CatReservedIdent, serr.Category)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseStatements("x = 1 print x", token.Position{})
		require.Error(t, err)
	})

	t.Run("bare expression is not a statement", func(t *testing.T) {
		_, err := ParseStatements("1 + 2", token.Position{})
		require.Error(t, err)
	})
}

func TestParseStatements_ErrorPosition(t *testing.T) {
	base := token.Position{Line: 4, Column: 8, Offset: 50}
	_, err := ParseStatements("x = )", base)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 4, serr.Pos.Line)
	assert.Equal(t, 12, serr.Pos.Column)
}
