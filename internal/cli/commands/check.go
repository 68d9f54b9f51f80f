package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and validate a flowchart without running it",
		Long: `Parse a flowchart program and run semantic validation, reporting the
first syntax or analysis error found. Nothing is executed.`,
		Example: `  # Validate a program
  merx check examples/fizzbuzz.mmd

  # Re-validate whenever the file changes
  merx check --watch examples/fizzbuzz.mmd`,
		Args: FileArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Watch {
				return runCheckWatch(cmd, args[0])
			}
			return runCheck(cmd, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-validate on file changes")

	return cmd
}

func runCheck(cmd *cobra.Command, path string) error {
	fc, prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	getRenderer(cmd).Successf("%s: %d nodes, %d edges", path, prog.NodeCount(), len(fc.Edges))
	return nil
}

// runCheckWatch re-validates path on every write until the command's
// context is canceled. Validation failures are reported but do not stop
// the watch.
func runCheckWatch(cmd *cobra.Command, path string) error {
	r := getRenderer(cmd)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file on save,
	// which drops a watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	check := func() {
		if err := runCheck(cmd, path); err != nil {
			r.Errorf("%v", err)
		}
	}
	check()

	target := filepath.Clean(path)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				check()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Warnf("watch error: %v", err)
		}
	}
}
