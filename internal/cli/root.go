// Package cli provides the command-line interface for merx.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/merx-lang/merx/internal/cli/commands"
	"github.com/merx-lang/merx/internal/cli/config"
	"github.com/merx-lang/merx/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "merx",
		Short: "merx - Mermaid flowchart interpreter",
		Long: `merx runs programs written as Mermaid flowcharts: a directed graph of
process and condition nodes traversed from Start to End.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := commands.WithConfig(cmd.Context(), cfg)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Color))
			ctx = commands.WithRenderer(ctx, renderer)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("merx {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./merx.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("color", "", "Color output (auto|always|never)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &commands.UsageError{Err: err}
	})

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewGraphCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// Execute runs the CLI and returns the process exit code: the program's
// own exit code for run, 1 on analysis or runtime errors, 2 on usage
// errors.
func Execute() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return 0
	}

	code := exitCodeFor(err)
	if _, isProgramExit := programExitCode(err); !isProgramExit {
		fmt.Fprintf(os.Stderr, "merx: %v\n", err)
		if code == 2 {
			fmt.Fprintln(os.Stderr, "Run 'merx --help' for usage.")
		}
	}
	return code
}

// programExitCode extracts a program's own exit code, which is not a
// diagnostic and must not be printed.
func programExitCode(err error) (int, bool) {
	var exitErr *commands.ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// exitCodeFor maps a command error to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := programExitCode(err); ok {
		return code
	}
	var usageErr *commands.UsageError
	if errors.As(err, &usageErr) || strings.HasPrefix(err.Error(), "unknown command") {
		return 2
	}
	return 1
}
