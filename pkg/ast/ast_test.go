package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeIDs(t *testing.T) {
	assert.Equal(t, "Start", (&StartNode{Label: "ignored"}).ID())
	assert.Equal(t, "End", (&EndNode{}).ID())
	assert.Equal(t, "P", (&ProcessNode{Name: "P"}).ID())
	assert.Equal(t, "C", (&ConditionNode{Name: "C"}).ID())
}

func TestLabel_String(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{Label{Exit: NoExit}, ""},
		{Label{Branch: BranchYes, Exit: NoExit}, "Yes"},
		{Label{Branch: BranchNo, Exit: NoExit}, "No"},
		{Label{Branch: BranchYes, Exit: 3}, "Yes, exit 3"},
		{Label{Branch: BranchNo, Exit: 0}, "No, exit 0"},
		{Label{Exit: 7}, "exit 7"},
		{Label{Branch: BranchCustom, Text: "maybe", Exit: NoExit}, "maybe"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.label.String())
	}
}

func TestLabel_HasExit(t *testing.T) {
	assert.False(t, Label{Exit: NoExit}.HasExit())
	assert.True(t, Label{Exit: 0}.HasExit())
	assert.True(t, Label{Exit: 255}.HasExit())
}

func TestExpr_String(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{&IntLit{Value: 42}, "42"},
		{&IntLit{Value: -1}, "-1"},
		{&StrLit{Value: "hi"}, "'hi'"},
		{&BoolLit{Value: true}, "true"},
		{&VarRef{Name: "x"}, "x"},
		{&InputExpr{}, "input"},
		{&UnaryExpr{Op: OpNeg, Operand: &VarRef{Name: "x"}}, "-x"},
		{&UnaryExpr{Op: OpNot, Operand: &BoolLit{Value: false}}, "!false"},
		{
			&BinaryExpr{Op: OpAdd, Left: &IntLit{Value: 1}, Right: &BinaryExpr{Op: OpMul, Left: &IntLit{Value: 2}, Right: &IntLit{Value: 3}}},
			"1 + 2 * 3",
		},
		{
			&BinaryExpr{Op: OpMul, Left: &BinaryExpr{Op: OpAdd, Left: &IntLit{Value: 1}, Right: &IntLit{Value: 2}}, Right: &IntLit{Value: 3}},
			"(1 + 2) * 3",
		},
		{
			&CastExpr{Expr: &VarRef{Name: "x"}, Target: TypeStr},
			"x as str",
		},
		{
			&CastExpr{Expr: &BinaryExpr{Op: OpAdd, Left: &VarRef{Name: "x"}, Right: &IntLit{Value: 1}}, Target: TypeInt},
			"(x + 1) as int",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.expr.String())
	}
}

func TestStmt_String(t *testing.T) {
	assert.Equal(t, "println x", (&PrintlnStmt{Expr: &VarRef{Name: "x"}}).String())
	assert.Equal(t, "print 1", (&PrintStmt{Expr: &IntLit{Value: 1}}).String())
	assert.Equal(t, "error 'oops'", (&ErrorStmt{Expr: &StrLit{Value: "oops"}}).String())
	assert.Equal(t, "x = input", (&AssignStmt{Name: "x", Value: &InputExpr{}}).String())
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"", "''"},
		{"don't", `'don\'t'`},
		{`back\slash`, `'back\\slash'`},
		{"line\nbreak", `'line\nbreak'`},
		{"tab\there", `'tab\there'`},
		{"cr\rhere", `'cr\rhere'`},
		{"nul\x00byte", `'nul\0byte'`},
		{"bell\x07", `'bell\x07'`},
		{"héllo", "'héllo'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in))
	}
}

func TestDirection_IsValid(t *testing.T) {
	for _, d := range []Direction{DirTD, DirTB, DirLR, DirRL, DirBT} {
		assert.True(t, d.IsValid())
	}
	assert.False(t, Direction("XX").IsValid())
	assert.False(t, Direction("").IsValid())
}
