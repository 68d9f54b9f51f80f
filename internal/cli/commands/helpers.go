// Package commands implements the merx subcommands.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/merx-lang/merx/internal/analysis"
	"github.com/merx-lang/merx/internal/cli/config"
	"github.com/merx-lang/merx/internal/cli/output"
	"github.com/merx-lang/merx/pkg/ast"
	"github.com/merx-lang/merx/pkg/parser"
	"github.com/spf13/cobra"
)

// ExitCodeError carries a program's non-zero exit code to the process
// boundary without being a diagnostic.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// UsageError marks a CLI usage problem, which exits with code 2.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// FileArg validates that exactly one positional argument was given.
func FileArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &UsageError{Err: fmt.Errorf("expected exactly one file argument, got %d", len(args))}
	}
	return nil
}

type configKey struct{}
type rendererKey struct{}

// WithConfig stores the loaded config on the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithRenderer stores the output renderer on the context.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// getConfig returns the command's config, falling back to defaults so
// commands stay testable in isolation.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// getRenderer returns the command's renderer, building a plain one on
// demand for tests that construct commands directly.
func getRenderer(cmd *cobra.Command) *output.Renderer {
	if r, ok := cmd.Context().Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeNever)
}

// loadProgram reads, parses, and validates a flowchart file.
func loadProgram(path string) (*ast.Flowchart, *analysis.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	fc, err := parser.Parse(string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	prog, err := analysis.Validate(fc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, prog, nil
}
