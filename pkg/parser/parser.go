// Package parser turns Mermaid flowchart source text into the merx AST.
//
// The flowchart grammar is line-oriented and parsed by recursive
// descent directly over the source bytes:
//
//	program  → "flowchart" DIR NL (item NL)*
//	item     → node | edge | comment
//	node     → IDENT shape?
//	edge     → IDENT arrow pipe_label? IDENT
//	         | IDENT "--" text "-->" IDENT
//	arrow    → "-" "-"+ ">"
//	comment  → "%%" … NL
//
// Process and condition label text is handed to the expression parser
// in parser_expr.go, which implements the operator precedence table by
// precedence climbing.
package parser

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/merx-lang/merx/pkg/ast"
	"github.com/merx-lang/merx/pkg/token"
)

// Parser parses flowchart source into an *ast.Flowchart.
type Parser struct {
	src  string
	pos  int // byte offset of current char
	line int // 1-based
	col  int // 1-based

	nodes   []ast.Node
	nodeIdx map[string]int // id -> index into nodes
	edges   []ast.Edge
}

// Parse parses a complete flowchart program.
func Parse(src string) (*ast.Flowchart, error) {
	p := &Parser{src: src, line: 1, col: 1, nodeIdx: make(map[string]int)}
	return p.parseFlowchart()
}

// ---------- Scanner helpers ----------

// ch returns the current character, or 0 at end of input.
func (p *Parser) ch() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// peekAt returns the character n bytes ahead, or 0 past end of input.
func (p *Parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}

// advance consumes the current character.
func (p *Parser) advance() {
	if p.pos >= len(p.src) {
		return
	}
	if p.src[p.pos] == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	p.pos++
}

// position returns the position of the current character.
func (p *Parser) position() token.Position {
	return token.Position{Line: p.line, Column: p.col, Offset: p.pos}
}

// skipSpace skips horizontal whitespace.
func (p *Parser) skipSpace() {
	for p.ch() == ' ' || p.ch() == '\t' {
		p.advance()
	}
}

// atComment reports whether the current position begins a %% comment.
func (p *Parser) atComment() bool {
	return p.ch() == '%' && p.peekAt(1) == '%'
}

// skipComment consumes a %% comment up to (not including) the line end.
func (p *Parser) skipComment() {
	for p.ch() != 0 && p.ch() != '\n' {
		p.advance()
	}
}

// atLineEnd reports whether the current position is at a line terminator
// or end of input.
func (p *Parser) atLineEnd() bool {
	return p.ch() == 0 || p.ch() == '\n' || (p.ch() == '\r' && p.peekAt(1) == '\n')
}

// consumeLineEnd consumes a \n or \r\n terminator (or end of input).
func (p *Parser) consumeLineEnd() error {
	p.skipSpace()
	if p.atComment() {
		p.skipComment()
	}
	switch {
	case p.ch() == 0:
		return nil
	case p.ch() == '\n':
		p.advance()
		return nil
	case p.ch() == '\r' && p.peekAt(1) == '\n':
		p.advance()
		p.advance()
		return nil
	}
	return syntaxErr(p.position(), CatUnexpectedToken,
		"unexpected %q, expected end of line", string(p.ch()))
}

// skipBlankLines skips empty lines and comment-only lines.
func (p *Parser) skipBlankLines() {
	for p.ch() != 0 {
		p.skipSpace()
		if p.atComment() {
			p.skipComment()
		}
		if p.ch() == '\n' {
			p.advance()
			continue
		}
		if p.ch() == '\r' && p.peekAt(1) == '\n' {
			p.advance()
			p.advance()
			continue
		}
		return
	}
}

// ---------- Grammar productions ----------

func (p *Parser) parseFlowchart() (*ast.Flowchart, error) {
	p.skipBlankLines()

	pos := p.position()
	word := p.readWord()
	if word != "flowchart" {
		return nil, syntaxErr(pos, CatUnexpectedToken,
			"expected 'flowchart' header, got %q", word)
	}

	p.skipSpace()
	pos = p.position()
	dir := ast.Direction(p.readWord())
	if !dir.IsValid() {
		return nil, syntaxErr(pos, CatUnexpectedToken,
			"invalid flowchart direction %q", string(dir))
	}
	if err := p.consumeLineEnd(); err != nil {
		return nil, err
	}

	for {
		p.skipBlankLines()
		if p.ch() == 0 {
			break
		}
		if err := p.parseItem(); err != nil {
			return nil, err
		}
	}

	return &ast.Flowchart{Direction: dir, Nodes: p.nodes, Edges: p.edges}, nil
}

// parseItem parses one node or edge line.
func (p *Parser) parseItem() error {
	p.skipSpace()

	fromID, fromNode, err := p.parseNodeRef()
	if err != nil {
		return err
	}
	if fromNode != nil {
		p.insertNode(fromNode)
	}

	p.skipSpace()
	if p.atLineEnd() || p.atComment() {
		// Standalone node definition (or a bare reference, which is a
		// no-op for anything other than Start and End).
		return p.consumeLineEnd()
	}

	label, err := p.parseArrow()
	if err != nil {
		return err
	}

	p.skipSpace()
	toID, toNode, err := p.parseNodeRef()
	if err != nil {
		return err
	}
	if toNode != nil {
		p.insertNode(toNode)
	}

	p.edges = append(p.edges, ast.Edge{From: fromID, To: toID, Label: label})
	return p.consumeLineEnd()
}

// readWord reads a run of identifier characters.
func (p *Parser) readWord() string {
	start := p.pos
	for isLetter(p.ch()) || isDigit(p.ch()) {
		p.advance()
	}
	return p.src[start:p.pos]
}

// parseNodeRef parses an identifier with an optional shape. It returns
// the node id plus the node definition when the reference carries one.
// Start and End are definitions even when bare.
func (p *Parser) parseNodeRef() (string, ast.Node, error) {
	pos := p.position()
	if !isLetter(p.ch()) {
		return "", nil, syntaxErr(pos, CatUnexpectedToken,
			"expected node identifier, got %q", string(p.ch()))
	}
	id := p.readWord()

	switch id {
	case ast.StartID, ast.EndID:
		label, err := p.parseDisplayLabel(id)
		if err != nil {
			return "", nil, err
		}
		if id == ast.StartID {
			return id, &ast.StartNode{Label: label}, nil
		}
		return id, &ast.EndNode{Label: label}, nil
	}

	if token.IsReserved(id) {
		return "", nil, syntaxErr(pos, CatReservedIdent,
			"reserved word '%s' cannot name a node", id)
	}

	switch p.ch() {
	case '[':
		text, base, err := p.scanBracketLabel('[', ']')
		if err != nil {
			return "", nil, err
		}
		text, base = stripLabelQuotes(text, base)
		stmts, err := ParseStatements(text, base)
		if err != nil {
			return "", nil, err
		}
		return id, &ast.ProcessNode{Name: id, Statements: stmts}, nil
	case '{':
		text, base, err := p.scanBracketLabel('{', '}')
		if err != nil {
			return "", nil, err
		}
		text, base = stripLabelQuotes(text, base)
		trimmed := strings.TrimRight(text, " \t")
		if !strings.HasSuffix(trimmed, "?") {
			return "", nil, syntaxErr(base, CatUnexpectedToken,
				"condition label on '%s' must end with '?'", id)
		}
		cond, err := ParseCondition(trimmed[:len(trimmed)-1], base)
		if err != nil {
			return "", nil, err
		}
		return id, &ast.ConditionNode{Name: id, Cond: cond}, nil
	case '(':
		return "", nil, syntaxErr(p.position(), CatUnexpectedToken,
			"unknown node shape for '%s'", id)
	}

	return id, nil, nil
}

// parseDisplayLabel parses the optional display label on Start or End:
// either [text] or ([text]). Any other shape is an error.
func (p *Parser) parseDisplayLabel(id string) (string, error) {
	switch p.ch() {
	case '[':
		text, base, err := p.scanBracketLabel('[', ']')
		if err != nil {
			return "", err
		}
		text, _ = stripLabelQuotes(text, base)
		return text, nil
	case '(':
		if p.peekAt(1) != '[' {
			return "", syntaxErr(p.position(), CatUnexpectedToken,
				"unknown node shape for '%s'", id)
		}
		p.advance() // consume '('
		text, base, err := p.scanBracketLabel('[', ']')
		if err != nil {
			return "", err
		}
		if p.ch() != ')' {
			return "", syntaxErr(p.position(), CatMismatchedBrackets,
				"expected ')' to close stadium label on '%s'", id)
		}
		p.advance()
		text, _ = stripLabelQuotes(text, base)
		return text, nil
	case '{':
		return "", syntaxErr(p.position(), CatReservedIdent,
			"'%s' cannot carry a condition", id)
	}
	return "", nil
}

// scanBracketLabel consumes open, the label text, and close, honoring
// single-quoted strings (with escapes) and double-quoted wrapping so a
// bracket inside quotes does not terminate the label. It returns the
// raw text and the position of its first character.
func (p *Parser) scanBracketLabel(open, close byte) (string, token.Position, error) {
	openPos := p.position()
	p.advance() // consume open
	base := p.position()
	start := p.pos

	for {
		switch p.ch() {
		case 0, '\n':
			return "", base, syntaxErr(openPos, CatMismatchedBrackets,
				"missing closing %q", string(close))
		case close:
			text := p.src[start:p.pos]
			p.advance()
			return text, base, nil
		case '\'':
			if err := p.skipQuoted(); err != nil {
				return "", base, err
			}
		case '"':
			strPos := p.position()
			p.advance()
			for p.ch() != '"' {
				if p.ch() == 0 || p.ch() == '\n' {
					return "", base, syntaxErr(strPos, CatUnterminatedString,
						"unterminated quoted label")
				}
				p.advance()
			}
			p.advance()
		default:
			p.advance()
		}
	}
}

// skipQuoted consumes a single-quoted string without decoding it; the
// expression lexer validates escapes later.
func (p *Parser) skipQuoted() error {
	strPos := p.position()
	p.advance() // opening quote
	for {
		switch p.ch() {
		case 0, '\n':
			return syntaxErr(strPos, CatUnterminatedString, "unterminated string literal")
		case '\'':
			p.advance()
			return nil
		case '\\':
			p.advance()
			if p.ch() == 0 || p.ch() == '\n' {
				return syntaxErr(strPos, CatUnterminatedString, "unterminated string literal")
			}
			p.advance()
		default:
			p.advance()
		}
	}
}

// stripLabelQuotes removes one pair of wrapping double quotes from a
// label, adjusting the base position past the opening quote.
func stripLabelQuotes(text string, base token.Position) (string, token.Position) {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		base.Column++
		base.Offset++
		return text[1 : len(text)-1], base
	}
	return text, base
}

// parseArrow parses either a plain arrow with an optional pipe label or
// the inline label form `-- text -->`, returning the classified label.
func (p *Parser) parseArrow() (ast.Label, error) {
	none := ast.Label{Exit: ast.NoExit}
	arrowPos := p.position()

	dashes := 0
	for p.ch() == '-' {
		dashes++
		p.advance()
	}
	if dashes < 2 {
		return none, syntaxErr(arrowPos, CatMalformedArrow,
			"malformed arrow: expected '-->'")
	}

	if p.ch() == '>' {
		p.advance()
		// Plain arrow; check for a pipe label.
		p.skipSpace()
		if p.ch() != '|' {
			return none, nil
		}
		labelPos := p.position()
		p.advance()
		start := p.pos
		for p.ch() != '|' {
			if p.ch() == 0 || p.ch() == '\n' {
				return none, syntaxErr(labelPos, CatMismatchedBrackets,
					"missing closing '|' on edge label")
			}
			p.advance()
		}
		text := p.src[start:p.pos]
		p.advance()
		return classifyEdgeLabel(text, labelPos)
	}

	// Inline label: `-- text -->`. Exactly two dashes introduce it.
	if dashes != 2 {
		return none, syntaxErr(arrowPos, CatMalformedArrow,
			"malformed arrow: expected '>' after dashes")
	}
	p.skipSpace()
	labelPos := p.position()
	start := p.pos
	for {
		if p.ch() == 0 || p.ch() == '\n' {
			return none, syntaxErr(arrowPos, CatMalformedArrow,
				"inline edge label is missing its closing '-->'")
		}
		if p.ch() == '-' {
			run := 0
			for p.peekAt(run) == '-' {
				run++
			}
			if run >= 2 && p.peekAt(run) == '>' {
				text := p.src[start:p.pos]
				for i := 0; i < run+1; i++ {
					p.advance()
				}
				// The pipe form may not be combined with an inline label.
				p.skipSpace()
				if p.ch() == '|' {
					return none, syntaxErr(p.position(), CatMalformedArrow,
						"edge may carry only one label")
				}
				return classifyEdgeLabel(text, labelPos)
			}
		}
		p.advance()
	}
}

// classifyEdgeLabel interprets edge label text: case-insensitive Yes/No,
// optionally followed by ", exit N"; standalone "exit N"; anything else
// is a custom label with no control-flow meaning.
func classifyEdgeLabel(text string, pos token.Position) (ast.Label, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ast.Label{Exit: ast.NoExit}, nil
	}

	head, tail, hasComma := strings.Cut(trimmed, ",")
	head = strings.TrimSpace(head)

	branch := ast.BranchCustom
	switch strings.ToLower(head) {
	case "yes":
		branch = ast.BranchYes
	case "no":
		branch = ast.BranchNo
	}

	if branch != ast.BranchCustom {
		if !hasComma {
			return ast.Label{Branch: branch, Exit: ast.NoExit}, nil
		}
		code, ok, err := parseExitClause(strings.TrimSpace(tail), pos)
		if err != nil {
			return ast.Label{}, err
		}
		if ok {
			return ast.Label{Branch: branch, Exit: code}, nil
		}
		return ast.Label{Branch: ast.BranchCustom, Text: trimmed, Exit: ast.NoExit}, nil
	}

	if !hasComma {
		code, ok, err := parseExitClause(trimmed, pos)
		if err != nil {
			return ast.Label{}, err
		}
		if ok {
			return ast.Label{Exit: code}, nil
		}
	}
	return ast.Label{Branch: ast.BranchCustom, Text: trimmed, Exit: ast.NoExit}, nil
}

// parseExitClause matches "exit N" (case-insensitive). ok is false when
// the text is not an exit clause at all; a clause with a code outside
// 0..255 is an error rather than a custom label.
func parseExitClause(s string, pos token.Position) (code int, ok bool, err error) {
	fields := strings.Fields(s)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "exit") {
		return 0, false, nil
	}
	n, convErr := strconv.Atoi(fields[1])
	if convErr != nil {
		return 0, false, nil
	}
	if n < 0 || n > 255 {
		return 0, false, syntaxErr(pos, CatUnexpectedToken,
			"exit code %d is out of range 0..255", n)
	}
	return n, true, nil
}

// insertNode records a node definition. Identical redefinitions are
// collapsed and a labeled Start/End upgrades a bare reference;
// conflicting redefinitions are kept for the validator to report.
func (p *Parser) insertNode(node ast.Node) {
	idx, seen := p.nodeIdx[node.ID()]
	if !seen {
		p.nodeIdx[node.ID()] = len(p.nodes)
		p.nodes = append(p.nodes, node)
		return
	}

	existing := p.nodes[idx]
	switch existing := existing.(type) {
	case *ast.StartNode:
		if n, isStart := node.(*ast.StartNode); isStart {
			if n.Label == "" || existing.Label == n.Label {
				return // bare reference or same label
			}
			if existing.Label == "" {
				p.nodes[idx] = n // labeled definition upgrades a bare one
				return
			}
		}
	case *ast.EndNode:
		if n, isEnd := node.(*ast.EndNode); isEnd {
			if n.Label == "" || existing.Label == n.Label {
				return
			}
			if existing.Label == "" {
				p.nodes[idx] = n
				return
			}
		}
	default:
		if reflect.DeepEqual(existing, node) {
			return
		}
	}

	// Conflicting redefinition: keep it so validation can fail with a
	// duplicate-node diagnostic.
	p.nodes = append(p.nodes, node)
}
