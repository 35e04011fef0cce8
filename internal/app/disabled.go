package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/disabled"
	"github.com/blackwell-systems/commenter/internal/document"
)

var disabledCmd = &cobra.Command{
	Use:   "disabled",
	Short: "Count the packages each disabled package holds back",
	Long: `Read the "requires the disabled package" annotations in the library region and
report, for every package that others depend on, how many packages are
disabled because of it, directly or transitively. The list is sorted by count,
so the packages worth fixing first come last.`,
	Args: cobra.NoArgs,
	RunE: runDisabled,
}

func init() {
	RootCmd.AddCommand(disabledCmd)
}

func runDisabled(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	g, err := disablementGraph(path)
	if err != nil {
		return err
	}
	report, err := g.Report()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, c := range report {
		fmt.Fprintln(w, c.String())
	}
	return nil
}

// disablementGraph builds the graph from the lib region of the document.
func disablementGraph(path string) (*disabled.Graph, error) {
	_, _, regions, err := scanDocument(path)
	if err != nil {
		return nil, err
	}
	edges, err := disabled.ParseEdges(regions[document.Lib])
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations in %s: %w", path, err)
	}
	return disabled.Build(edges), nil
}
