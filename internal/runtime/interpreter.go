package runtime

import (
	"io"

	"github.com/merx-lang/merx/internal/analysis"
	"github.com/merx-lang/merx/pkg/ast"
)

// Interpreter walks a validated program index from Start to End,
// executing process statements and branching at condition nodes. One
// interpreter owns its environment and I/O sinks for the duration of a
// run; the program index is read-only and may be shared.
type Interpreter struct {
	prog   *analysis.Program
	env    *Env
	in     LineReader
	stdout io.Writer
	stderr io.Writer
}

// New creates an interpreter for prog reading program input from in and
// writing to stdout and stderr.
func New(prog *analysis.Program, in io.Reader, stdout, stderr io.Writer) *Interpreter {
	return &Interpreter{
		prog:   prog,
		env:    NewEnv(),
		in:     NewLineReader(in),
		stdout: stdout,
		stderr: stderr,
	}
}

// Env exposes the interpreter's environment. Useful for inspection
// after a run; the environment is created fresh per interpreter.
func (it *Interpreter) Env() *Env {
	return it.env
}

// Run executes the program and returns its exit code: 0 on a plain End
// arrival, or the `exit N` code of the edge that reached End. A runtime
// error aborts execution; output already written is kept.
//
// The graph may be cyclic and non-termination is a valid program
// outcome, so Run imposes no step cap.
func (it *Interpreter) Run() (int, error) {
	current := it.prog.Start
	exit := 0

	for {
		node := &it.prog.Nodes[current]
		switch node.Kind {
		case analysis.KindStart:
			next, code, err := successor(node)
			if err != nil {
				return 0, err
			}
			current, exit = next, code

		case analysis.KindEnd:
			return exit, nil

		case analysis.KindProcess:
			for _, stmt := range node.Statements {
				if err := ExecStatement(stmt, it.env, it.in, it.stdout, it.stderr); err != nil {
					return 0, err
				}
			}
			next, code, err := successor(node)
			if err != nil {
				return 0, err
			}
			current, exit = next, code

		case analysis.KindCondition:
			v, err := Eval(node.Cond, it.env, it.in)
			if err != nil {
				return 0, err
			}
			if v.Kind() != KindBool {
				return 0, &TypeError{Expected: "bool", Found: v.Kind(), Op: "condition"}
			}
			if v.Bool() {
				current = node.Yes
				exit = exitCode(node.YesExit)
			} else {
				current = node.No
				exit = exitCode(node.NoExit)
			}
		}
	}
}

// successor returns the single outgoing edge of a Start or process
// node, with the exit code carried on it.
func successor(node *analysis.Node) (int, int, error) {
	if node.Next == analysis.NoNode {
		return 0, 0, &NoSuccessorError{NodeID: node.ID}
	}
	return node.Next, exitCode(node.NextExit), nil
}

// exitCode normalizes an absent edge exit code to the default 0.
func exitCode(code int) int {
	if code == ast.NoExit {
		return 0
	}
	return code
}
