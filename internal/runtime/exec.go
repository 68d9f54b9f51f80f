package runtime

import (
	"io"

	"github.com/merx-lang/merx/pkg/ast"
)

// ExecStatement executes a single statement against env. Output is
// buffered per statement: evaluation must fully succeed before any byte
// is written, so a failing sub-expression produces no partial output.
func ExecStatement(stmt ast.Stmt, env *Env, in LineReader, stdout, stderr io.Writer) error {
	switch s := stmt.(type) {
	case *ast.PrintlnStmt:
		v, err := Eval(s.Expr, env, in)
		if err != nil {
			return err
		}
		return write(stdout, v.Format()+"\n")

	case *ast.PrintStmt:
		v, err := Eval(s.Expr, env, in)
		if err != nil {
			return err
		}
		return write(stdout, v.Format())

	case *ast.ErrorStmt:
		// Writes to stderr and continues; not an error mechanism.
		v, err := Eval(s.Expr, env, in)
		if err != nil {
			return err
		}
		return write(stderr, v.Format()+"\n")

	case *ast.AssignStmt:
		v, err := Eval(s.Value, env, in)
		if err != nil {
			// The binding is untouched on failure.
			return err
		}
		env.Set(s.Name, v)
		return nil
	}
	return nil
}

func write(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return &OutputError{Err: err}
	}
	return nil
}
