// Package analysis validates a parsed flowchart and rewrites it into a
// dense program index for execution. Validation enforces the graph's
// well-formedness: exactly one Start and End, legal fan-out, labeled
// condition branches, and exit-code placement.
package analysis

import (
	"fmt"
	"reflect"

	"github.com/merx-lang/merx/pkg/ast"
)

// Validate checks fc's graph structure and returns the executable
// program index. The checks run in a fixed order; the first failure is
// returned as an *Error.
func Validate(fc *ast.Flowchart) (*Program, error) {
	nodes, order, err := collectNodes(fc)
	if err != nil {
		return nil, err
	}

	// Edge endpoints must resolve. A reference to Start or End counts
	// as a definition even without a node line.
	for _, e := range fc.Edges {
		for _, id := range []string{e.From, e.To} {
			if _, ok := nodes[id]; ok {
				continue
			}
			switch id {
			case ast.StartID:
				nodes[id] = &ast.StartNode{}
				order = append(order, id)
			case ast.EndID:
				nodes[id] = &ast.EndNode{}
				order = append(order, id)
			default:
				return nil, &Error{
					Kind:   UndefinedNode,
					NodeID: id,
					Detail: fmt.Sprintf("referenced in edge from '%s' to '%s'", e.From, e.To),
				}
			}
		}
	}

	if _, ok := nodes[ast.StartID]; !ok {
		return nil, &Error{Kind: MissingStart}
	}
	if _, ok := nodes[ast.EndID]; !ok {
		return nil, &Error{Kind: MissingEnd}
	}

	outgoing := make(map[string][]ast.Edge)
	for _, e := range fc.Edges {
		outgoing[e.From] = append(outgoing[e.From], e)
	}

	if len(outgoing[ast.EndID]) > 0 {
		return nil, &Error{Kind: EdgeFromEnd}
	}

	for _, id := range order {
		if _, isCond := nodes[id].(*ast.ConditionNode); isCond || id == ast.EndID {
			continue
		}
		if len(outgoing[id]) > 1 {
			return nil, &Error{Kind: MultipleSuccessors, NodeID: id}
		}
	}

	for _, id := range order {
		cond, isCond := nodes[id].(*ast.ConditionNode)
		if !isCond {
			continue
		}
		if err := checkConditionBranches(cond.Name, outgoing[id]); err != nil {
			return nil, err
		}
	}

	for _, e := range fc.Edges {
		if e.Label.HasExit() && e.To != ast.EndID {
			return nil, &Error{
				Kind:   ExitOnNonEndEdge,
				NodeID: e.From,
				Detail: fmt.Sprintf("found on edge from '%s' to '%s'", e.From, e.To),
			}
		}
	}

	return buildProgram(nodes, order, outgoing), nil
}

// collectNodes folds the definition list into one node per id. A bare
// Start/End reference coexists with a labeled definition, and an
// identical redefinition is tolerated; anything else is a duplicate.
func collectNodes(fc *ast.Flowchart) (map[string]ast.Node, []string, error) {
	nodes := make(map[string]ast.Node, len(fc.Nodes))
	order := make([]string, 0, len(fc.Nodes))

	for _, node := range fc.Nodes {
		id := node.ID()
		existing, seen := nodes[id]
		if !seen {
			nodes[id] = node
			order = append(order, id)
			continue
		}
		if merged, ok := mergeRedefinition(existing, node); ok {
			nodes[id] = merged
			continue
		}
		return nil, nil, &Error{Kind: DuplicateNode, NodeID: id}
	}
	return nodes, order, nil
}

// mergeRedefinition resolves a second definition of the same id.
func mergeRedefinition(existing, node ast.Node) (ast.Node, bool) {
	switch existing := existing.(type) {
	case *ast.StartNode:
		if n, ok := node.(*ast.StartNode); ok {
			if n.Label == "" || n.Label == existing.Label {
				return existing, true
			}
			if existing.Label == "" {
				return n, true
			}
		}
	case *ast.EndNode:
		if n, ok := node.(*ast.EndNode); ok {
			if n.Label == "" || n.Label == existing.Label {
				return existing, true
			}
			if existing.Label == "" {
				return n, true
			}
		}
	default:
		if reflect.DeepEqual(existing, node) {
			return existing, true
		}
	}
	return nil, false
}

// checkConditionBranches requires exactly one Yes and one No edge out
// of a condition node, ignoring any `, exit N` suffix on the labels.
func checkConditionBranches(id string, edges []ast.Edge) error {
	var hasYes, hasNo bool
	for _, e := range edges {
		switch e.Label.Branch {
		case ast.BranchYes:
			if hasYes {
				return &Error{Kind: BadConditionBranches, NodeID: id, Detail: "has multiple 'Yes' edges"}
			}
			hasYes = true
		case ast.BranchNo:
			if hasNo {
				return &Error{Kind: BadConditionBranches, NodeID: id, Detail: "has multiple 'No' edges"}
			}
			hasNo = true
		case ast.BranchCustom:
			return &Error{
				Kind:   BadConditionBranches,
				NodeID: id,
				Detail: fmt.Sprintf("requires 'Yes' or 'No' edge labels, got '%s'", e.Label.Text),
			}
		default:
			return &Error{Kind: BadConditionBranches, NodeID: id, Detail: "has an unlabeled edge; branches must be labeled 'Yes' or 'No'"}
		}
	}
	if !hasYes {
		return &Error{Kind: BadConditionBranches, NodeID: id, Detail: "is missing its 'Yes' edge"}
	}
	if !hasNo {
		return &Error{Kind: BadConditionBranches, NodeID: id, Detail: "is missing its 'No' edge"}
	}
	return nil
}
