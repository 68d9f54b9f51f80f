package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/merx-lang/merx/internal/cli/output"
	"github.com/merx-lang/merx/internal/runtime"
	"github.com/merx-lang/merx/pkg/parser"
	"github.com/spf13/cobra"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate statements and expressions interactively",
		Long: `Start an interactive session with a persistent variable environment.

Expressions print their value; statements execute with their usual
effects. Use .help for the available dot-commands.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

// replInput feeds `input` expressions from the REPL's own line editor
// under a secondary prompt.
type replInput struct {
	rl *readline.Instance
}

func (r *replInput) ReadLine() (string, error) {
	r.rl.SetPrompt("input> ")
	defer r.rl.SetPrompt("merx> ")
	line, err := r.rl.Readline()
	if err != nil {
		return "", io.EOF
	}
	return line, nil
}

func runRepl(cmd *cobra.Command, _ []string) error {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".merx_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "merx> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	r := getRenderer(cmd)

	_, _ = fmt.Fprintln(out, "merx REPL")
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")

	env := runtime.NewEnv()
	in := &replInput{rl: rl}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(out, env, line); quit {
				return nil
			}
			continue
		}

		evalLine(out, errOut, r, env, in, line)
	}
}

// evalLine executes line as a statement when it parses as one, and
// otherwise evaluates it as an expression and prints the result.
func evalLine(out, errOut io.Writer, r *output.Renderer, env *runtime.Env, in runtime.LineReader, line string) {
	if stmt, err := parser.ParseStatement(line); err == nil {
		if err := runtime.ExecStatement(stmt, env, in, out, errOut); err != nil {
			r.Errorf("%v", err)
		}
		return
	}

	expr, err := parser.ParseExpression(line)
	if err != nil {
		if looksLikeStatement(line) {
			// Re-parse as a statement for the more useful diagnostic.
			_, err2 := parser.ParseStatement(line)
			if err2 != nil {
				err = err2
			}
		}
		r.Errorf("%v", err)
		return
	}

	v, err := runtime.Eval(expr, env, in)
	if err != nil {
		r.Errorf("%v", err)
		return
	}
	_, _ = fmt.Fprintln(out, v.Format())
}

// looksLikeStatement guesses whether a failed line was meant as a
// statement, for picking the better of the two parse errors.
func looksLikeStatement(line string) bool {
	word := line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		word = line[:i]
	}
	switch word {
	case "println", "print", "error":
		return true
	}
	for i := 0; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}
		prev := byte(0)
		if i > 0 {
			prev = line[i-1]
		}
		next := byte(0)
		if i+1 < len(line) {
			next = line[i+1]
		}
		if next != '=' && prev != '=' && prev != '!' && prev != '<' && prev != '>' {
			return true
		}
	}
	return false
}

func handleDotCommand(out io.Writer, env *runtime.Env, line string) (quit bool) {
	switch line {
	case ".quit", ".exit":
		return true
	case ".vars":
		if env.Len() == 0 {
			_, _ = fmt.Fprintln(out, "(no variables)")
			return false
		}
		for _, name := range env.Names() {
			v, _ := env.Get(name)
			_, _ = fmt.Fprintf(out, "%s = %s (%s)\n", name, v.Format(), v.Kind())
		}
		return false
	case ".help":
		_, _ = fmt.Fprintln(out, "Commands:")
		_, _ = fmt.Fprintln(out, "  .help   Show this help")
		_, _ = fmt.Fprintln(out, "  .vars   List bound variables")
		_, _ = fmt.Fprintln(out, "  .quit   Exit the REPL")
		return false
	default:
		_, _ = fmt.Fprintf(out, "unknown command %s (try .help)\n", line)
		return false
	}
}
