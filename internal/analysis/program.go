package analysis

import "github.com/merx-lang/merx/pkg/ast"

// NodeKind discriminates the packed node variants.
type NodeKind uint8

// Packed node kinds.
const (
	KindStart NodeKind = iota
	KindEnd
	KindProcess
	KindCondition
)

// String returns the kind's display name.
func (k NodeKind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindProcess:
		return "process"
	}
	return "condition"
}

// NoNode marks the absence of a successor.
const NoNode = -1

// Node is one packed program node. Successors are precomputed dense
// indices so the interpreter loop never resolves ids. Exit fields carry
// the `exit N` code of the corresponding edge, or ast.NoExit.
type Node struct {
	Kind NodeKind
	ID   string

	Statements []ast.Stmt // process
	Cond       ast.Expr   // condition

	Next     int // successor for Start and process nodes, or NoNode
	NextExit int

	Yes, No         int // successors for condition nodes
	YesExit, NoExit int
}

// Program is a validated flowchart rewritten into contiguous arrays
// indexed by dense node indices.
type Program struct {
	Nodes []Node
	Start int // index of the Start node
	End   int // index of the End node
}

// NodeCount returns the number of nodes in the program.
func (p *Program) NodeCount() int {
	return len(p.Nodes)
}

// buildProgram packs the validated node set into the dense index form.
// order preserves definition order so indices are deterministic.
func buildProgram(nodes map[string]ast.Node, order []string, outgoing map[string][]ast.Edge) *Program {
	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}

	prog := &Program{
		Nodes: make([]Node, len(order)),
		Start: index[ast.StartID],
		End:   index[ast.EndID],
	}

	for i, id := range order {
		pn := Node{
			ID:       id,
			Next:     NoNode,
			NextExit: ast.NoExit,
			Yes:      NoNode,
			No:       NoNode,
			YesExit:  ast.NoExit,
			NoExit:   ast.NoExit,
		}

		switch n := nodes[id].(type) {
		case *ast.StartNode:
			pn.Kind = KindStart
		case *ast.EndNode:
			pn.Kind = KindEnd
		case *ast.ProcessNode:
			pn.Kind = KindProcess
			pn.Statements = n.Statements
		case *ast.ConditionNode:
			pn.Kind = KindCondition
			pn.Cond = n.Cond
		}

		for _, e := range outgoing[id] {
			to := index[e.To]
			switch e.Label.Branch {
			case ast.BranchYes:
				pn.Yes = to
				pn.YesExit = e.Label.Exit
			case ast.BranchNo:
				pn.No = to
				pn.NoExit = e.Label.Exit
			default:
				pn.Next = to
				pn.NextExit = e.Label.Exit
			}
		}

		prog.Nodes[i] = pn
	}

	return prog
}
