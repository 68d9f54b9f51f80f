// Package diagram renders parsed flowcharts back to Mermaid source.
// The output is canonical: reparsing it yields an equivalent AST, which
// the graph command and the formatter-style tests rely on.
package diagram

import (
	"fmt"
	"strings"

	"github.com/merx-lang/merx/pkg/ast"
)

// RenderMermaid renders fc as Mermaid flowchart source. Node
// definitions come first in definition order, then edges in source
// order referencing nodes by id.
func RenderMermaid(fc *ast.Flowchart) string {
	var b strings.Builder

	fmt.Fprintf(&b, "flowchart %s\n", fc.Direction)

	for _, node := range fc.Nodes {
		b.WriteString("    ")
		b.WriteString(nodeDef(node))
		b.WriteByte('\n')
	}

	for _, edge := range fc.Edges {
		label := edge.Label.String()
		switch {
		case label == "":
			fmt.Fprintf(&b, "    %s --> %s\n", edge.From, edge.To)
		case strings.Contains(label, "|"):
			// A pipe in a custom label needs the inline form.
			fmt.Fprintf(&b, "    %s -- %s --> %s\n", edge.From, label, edge.To)
		default:
			fmt.Fprintf(&b, "    %s -->|%s| %s\n", edge.From, label, edge.To)
		}
	}

	return b.String()
}

// nodeDef renders a single node definition line.
func nodeDef(node ast.Node) string {
	switch n := node.(type) {
	case *ast.StartNode:
		if n.Label != "" {
			return fmt.Sprintf("%s([%s])", ast.StartID, n.Label)
		}
		return ast.StartID
	case *ast.EndNode:
		if n.Label != "" {
			return fmt.Sprintf("%s([%s])", ast.EndID, n.Label)
		}
		return ast.EndID
	case *ast.ProcessNode:
		stmts := make([]string, len(n.Statements))
		for i, s := range n.Statements {
			stmts[i] = s.String()
		}
		return fmt.Sprintf("%s[%s]", n.Name, strings.Join(stmts, "; "))
	case *ast.ConditionNode:
		return fmt.Sprintf("%s{%s?}", n.Name, n.Cond)
	}
	return node.ID()
}
