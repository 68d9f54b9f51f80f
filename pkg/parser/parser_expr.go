package parser

import (
	"strconv"

	"github.com/merx-lang/merx/pkg/ast"
	"github.com/merx-lang/merx/pkg/token"
)

// Expression parsing uses precedence climbing over the lexer's token
// stream. Binding powers, higher binds tighter:
//
//	1  ||
//	2  &&
//	3  ==  !=
//	4  <  <=  >  >=
//	5  +  -
//	6  *  /  %
//	7  as
//	8  unary -  !
//
// Unary operators bind tighter than `as`, so `-x as str` casts the
// negated value.
const (
	precNone  = 0
	precOr    = 1
	precAnd   = 2
	precEq    = 3
	precCmp   = 4
	precAdd   = 5
	precMul   = 6
	precCast  = 7
	precUnary = 8
)

// exprParser parses statements and expressions from label text.
type exprParser struct {
	lexer *Lexer
	token token.Token // current token
	peek  token.Token // lookahead token
}

func newExprParser(input string, base token.Position) *exprParser {
	p := &exprParser{lexer: NewLexer(input, base)}
	// Read two tokens to initialize current and peek.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *exprParser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// ParseStatements parses a semicolon-separated statement list, as found
// in a process node label. base positions diagnostics within the
// enclosing source.
func ParseStatements(input string, base token.Position) ([]ast.Stmt, error) {
	p := newExprParser(input, base)
	var stmts []ast.Stmt
	for {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		switch p.token.Type {
		case token.SEMI:
			p.nextToken()
			if p.token.Type == token.EOF {
				return stmts, nil
			}
		case token.EOF:
			return stmts, nil
		default:
			return nil, p.unexpected("';' or end of statements")
		}
	}
}

// ParseStatement parses a single statement.
func ParseStatement(input string) (ast.Stmt, error) {
	p := newExprParser(input, token.Position{})
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.token.Type != token.EOF {
		return nil, p.unexpected("end of statement")
	}
	return stmt, nil
}

// ParseCondition parses a condition node expression (the label text
// with its trailing '?' already removed).
func ParseCondition(input string, base token.Position) (ast.Expr, error) {
	p := newExprParser(input, base)
	expr, err := p.parseExpression(precOr)
	if err != nil {
		return nil, err
	}
	if p.token.Type != token.EOF {
		return nil, p.unexpected("end of condition")
	}
	return expr, nil
}

// ParseExpression parses a standalone expression.
func ParseExpression(input string) (ast.Expr, error) {
	return ParseCondition(input, token.Position{})
}

func (p *exprParser) parseStatement() (ast.Stmt, error) {
	switch p.token.Type {
	case token.PRINTLN:
		p.nextToken()
		expr, err := p.parseExpression(precOr)
		if err != nil {
			return nil, err
		}
		return &ast.PrintlnStmt{Expr: expr}, nil
	case token.PRINT:
		p.nextToken()
		expr, err := p.parseExpression(precOr)
		if err != nil {
			return nil, err
		}
		return &ast.PrintStmt{Expr: expr}, nil
	case token.ERROR:
		p.nextToken()
		expr, err := p.parseExpression(precOr)
		if err != nil {
			return nil, err
		}
		return &ast.ErrorStmt{Expr: expr}, nil
	case token.IDENT:
		if p.peek.Type != token.ASSIGN {
			return nil, p.unexpected("'=' after variable name")
		}
		name := p.token.Literal
		p.nextToken() // over the name
		p.nextToken() // over '='
		expr, err := p.parseExpression(precOr)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Name: name, Value: expr}, nil
	case token.START, token.END:
		return nil, syntaxErr(p.token.Pos, CatReservedIdent,
			"'%s' is reserved and cannot be used as a variable", p.token.Literal)
	case token.ILLEGAL:
		return nil, p.lexError()
	default:
		return nil, p.unexpected("statement")
	}
}

// parseExpression implements precedence climbing with minPrec as the
// lowest binding power this call may consume.
func (p *exprParser) parseExpression(minPrec int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		prec := infixPrec(p.token.Type)
		if prec < minPrec || prec == precNone {
			return left, nil
		}
		left, err = p.parseInfix(left, prec)
		if err != nil {
			return nil, err
		}
	}
}

// parsePrefix parses unary operators and primary expressions.
func (p *exprParser) parsePrefix() (ast.Expr, error) {
	switch p.token.Type {
	case token.MINUS:
		p.nextToken()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNeg, Operand: operand}, nil
	case token.BANG:
		p.nextToken()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: ast.OpNot, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

// infixPrec returns the binding power of t as an infix operator, or
// precNone if t is not one.
func infixPrec(t token.Type) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NE:
		return precEq
	case token.LT, token.LE, token.GT, token.GE:
		return precCmp
	case token.PLUS, token.MINUS:
		return precAdd
	case token.STAR, token.SLASH, token.PERCENT:
		return precMul
	case token.AS:
		return precCast
	}
	return precNone
}

func (p *exprParser) parseInfix(left ast.Expr, prec int) (ast.Expr, error) {
	if p.token.Type == token.AS {
		p.nextToken()
		var target ast.TypeName
		switch p.token.Type {
		case token.INTTYPE:
			target = ast.TypeInt
		case token.STRTYPE:
			target = ast.TypeStr
		default:
			return nil, p.unexpected("type name 'int' or 'str'")
		}
		p.nextToken()
		return &ast.CastExpr{Expr: left, Target: target}, nil
	}

	op, ok := binaryOp(p.token.Type)
	if !ok {
		return nil, p.unexpected("operator")
	}
	p.nextToken()

	// Left-associative: parse the right operand one level tighter.
	right, err := p.parseExpression(prec + 1)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Op: op, Left: left, Right: right}, nil
}

func binaryOp(t token.Type) (ast.BinaryOp, bool) {
	switch t {
	case token.PLUS:
		return ast.OpAdd, true
	case token.MINUS:
		return ast.OpSub, true
	case token.STAR:
		return ast.OpMul, true
	case token.SLASH:
		return ast.OpDiv, true
	case token.PERCENT:
		return ast.OpMod, true
	case token.LT:
		return ast.OpLt, true
	case token.LE:
		return ast.OpLe, true
	case token.GT:
		return ast.OpGt, true
	case token.GE:
		return ast.OpGe, true
	case token.EQ:
		return ast.OpEq, true
	case token.NE:
		return ast.OpNe, true
	case token.AND:
		return ast.OpAnd, true
	case token.OR:
		return ast.OpOr, true
	}
	return 0, false
}

// parsePrimary parses atoms and parenthesized expressions.
func (p *exprParser) parsePrimary() (ast.Expr, error) {
	switch p.token.Type {
	case token.INT:
		n, err := strconv.ParseInt(p.token.Literal, 10, 64)
		if err != nil {
			return nil, syntaxErr(p.token.Pos, CatUnexpectedToken,
				"integer literal %s out of range", p.token.Literal)
		}
		p.nextToken()
		return &ast.IntLit{Value: n}, nil
	case token.STRING:
		value := p.token.Literal
		p.nextToken()
		return &ast.StrLit{Value: value}, nil
	case token.TRUE, token.FALSE:
		value := p.token.Type == token.TRUE
		p.nextToken()
		return &ast.BoolLit{Value: value}, nil
	case token.INPUT:
		p.nextToken()
		return &ast.InputExpr{}, nil
	case token.IDENT:
		name := p.token.Literal
		p.nextToken()
		return &ast.VarRef{Name: name}, nil
	case token.LPAREN:
		p.nextToken()
		expr, err := p.parseExpression(precOr)
		if err != nil {
			return nil, err
		}
		if p.token.Type != token.RPAREN {
			return nil, syntaxErr(p.token.Pos, CatMismatchedBrackets,
				"expected ')', got %s", p.describeToken())
		}
		p.nextToken()
		return expr, nil
	case token.START, token.END:
		return nil, syntaxErr(p.token.Pos, CatReservedIdent,
			"'%s' is reserved and cannot be used as a variable", p.token.Literal)
	case token.ILLEGAL:
		return nil, p.lexError()
	default:
		return nil, p.unexpected("expression")
	}
}

// lexError surfaces the lexer's recorded error for an ILLEGAL token.
func (p *exprParser) lexError() *SyntaxError {
	if err := p.lexer.Err(); err != nil {
		return err
	}
	return syntaxErr(p.token.Pos, CatUnexpectedToken, "unexpected character %q", p.token.Literal)
}

func (p *exprParser) unexpected(want string) *SyntaxError {
	if p.token.Type == token.ILLEGAL {
		return p.lexError()
	}
	return syntaxErr(p.token.Pos, CatUnexpectedToken,
		"unexpected %s, expected %s", p.describeToken(), want)
}

func (p *exprParser) describeToken() string {
	switch p.token.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.INT:
		return "'" + p.token.Literal + "'"
	case token.STRING:
		return "string literal"
	default:
		return "'" + p.token.Type.String() + "'"
	}
}
