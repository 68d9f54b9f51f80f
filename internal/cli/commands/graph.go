package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/merx-lang/merx/internal/analysis"
	"github.com/merx-lang/merx/internal/diagram"
	"github.com/merx-lang/merx/pkg/ast"
	"github.com/spf13/cobra"
)

// GraphOptions holds options for the graph command.
type GraphOptions struct {
	Format string
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	opts := &GraphOptions{}

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Inspect a program's node and edge structure",
		Long: `Parse and validate a flowchart, then print its graph: either as
tables of nodes and edges, or re-serialized as canonical Mermaid.`,
		Example: `  # Tabular node/edge listing
  merx graph examples/fizzbuzz.mmd

  # Canonical Mermaid source
  merx graph --format mermaid examples/fizzbuzz.mmd`,
		Args: FileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format (table|mermaid)")

	return cmd
}

func runGraph(cmd *cobra.Command, path string, opts *GraphOptions) error {
	fc, prog, err := loadProgram(path)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "mermaid":
		fmt.Fprint(cmd.OutOrStdout(), diagram.RenderMermaid(fc))
		return nil
	case "table":
		renderGraphTables(cmd, fc, prog)
		return nil
	}
	return &UsageError{Err: fmt.Errorf("unknown format %q (expected table or mermaid)", opts.Format)}
}

func renderGraphTables(cmd *cobra.Command, fc *ast.Flowchart, prog *analysis.Program) {
	out := cmd.OutOrStdout()

	nodes := table.NewWriter()
	nodes.SetOutputMirror(out)
	nodes.SetStyle(table.StyleLight)
	nodes.AppendHeader(table.Row{"#", "ID", "Kind", "Detail"})
	for i, n := range prog.Nodes {
		nodes.AppendRow(table.Row{i, n.ID, n.Kind.String(), nodeDetail(n)})
	}
	nodes.Render()

	fmt.Fprintln(out)

	edges := table.NewWriter()
	edges.SetOutputMirror(out)
	edges.SetStyle(table.StyleLight)
	edges.AppendHeader(table.Row{"From", "To", "Label"})
	for _, e := range fc.Edges {
		edges.AppendRow(table.Row{e.From, e.To, e.Label.String()})
	}
	edges.Render()

	fmt.Fprintf(out, "\n%d nodes, %d edges, direction %s\n", prog.NodeCount(), len(fc.Edges), fc.Direction)
}

func nodeDetail(n analysis.Node) string {
	switch n.Kind {
	case analysis.KindProcess:
		return fmt.Sprintf("%d statements", len(n.Statements))
	case analysis.KindCondition:
		return n.Cond.String() + "?"
	}
	return ""
}
