package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/annotate"
	"github.com/blackwell-systems/commenter/internal/diagnostic"
	"github.com/blackwell-systems/commenter/internal/document"
	"github.com/blackwell-systems/commenter/internal/output"
)

var (
	addInput  string
	addDryRun bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add snapshot check failures to build-constraints.yaml",
	Long: `Read the output of "curator check-snapshot" and record every bounds failure
in the managed regions of build-constraints.yaml.

Library and executable failures disable the package ("< 0"); test suite and
benchmark failures are listed under the skipped tests and benchmarks. Lines
before the "Snapshot dependency graph contains errors" banner are logged and
otherwise ignored. Existing entries are kept; the result is sorted and free
of duplicates, so running add twice on the same input changes nothing.`,
	Example: `  # Pipe the check output in
  stack exec curator check-snapshot 2>&1 | commenter add

  # Read it from a file and only show the resulting change
  commenter add --input check.log --dry-run`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addInput, "input", "i", "", "read diagnostics from file instead of stdin")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "print the change as a diff without writing the file")

	RootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	lines, err := readInput(cmd, addInput)
	if err != nil {
		return err
	}
	path, err := documentPath()
	if err != nil {
		return err
	}
	_, err = addDiagnostics(cmd.OutOrStdout(), path, lines, addDryRun)
	return err
}

// addDiagnostics parses check-snapshot output, merges the resulting lines
// into the document at path and returns the number of lib/exe lines.
func addDiagnostics(w io.Writer, path string, lines []string, dryRun bool) (int, error) {
	parser := diagnostic.NewParser()
	parser.Prologue = func(line string) {
		logger.Info(line, slog.String("source", "check-snapshot"))
	}

	res, err := parser.Parse(lines)
	if err != nil {
		return 0, fmt.Errorf("failed to parse diagnostics: %w", err)
	}
	ann := annotate.Render(res)

	fmt.Fprint(w, output.RenderSections(palette(), ann.Lib, ann.Test, ann.Bench))
	fmt.Fprint(w, output.RenderAddSummary(len(ann.Lib), len(ann.Test), len(ann.Bench), filepath.Base(path)))

	if err := editDocument(w, path, document.Merge(ann.Lib, ann.Test, ann.Bench), dryRun); err != nil {
		return 0, err
	}
	return len(ann.Lib), nil
}
