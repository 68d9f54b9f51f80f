package commands

import (
	"time"

	"github.com/google/uuid"
	"github.com/merx-lang/merx/internal/runtime"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run a Mermaid flowchart program",
		Long: `Parse, validate, and execute a flowchart program.

The process exit code is the program's exit code: 0 when execution
reaches End normally, or the value of an 'exit N' label on the edge
that reached End. Analysis and runtime errors exit with code 1.`,
		Example: `  # Run a program
  merx run examples/hello.mmd

  # Feed stdin to the program's input expressions
  echo 42 | merx run examples/echo.mmd`,
		Args: FileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func runRun(cmd *cobra.Command, path string) error {
	cfg := getConfig(cmd)

	_, prog, err := loadProgram(path)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	startTime := time.Now()

	interp := runtime.New(prog, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	code, err := interp.Run()

	if cfg.Verbose {
		r := getRenderer(cmd)
		elapsed := time.Since(startTime).Round(time.Microsecond)
		if err != nil {
			r.Infof("run %s failed after %s", runID, elapsed)
		} else {
			r.Infof("run %s finished in %s with exit code %d", runID, elapsed, code)
		}
	}

	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitCodeError{Code: code}
	}
	return nil
}
