package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/constraints"
)

var grandfatherCmd = &cobra.Command{
	Use:   "grandfather",
	Short: "List disabled dependencies that have no entry of their own",
	Long: `Print the packages that other packages are disabled for, but that are not
listed anywhere in build-constraints.yaml. The output is indented to be pasted
under "Grandfathered dependencies".`,
	Args: cobra.NoArgs,
	RunE: runGrandfather,
}

func init() {
	RootCmd.AddCommand(grandfatherCmd)
}

func runGrandfather(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	g, err := disablementGraph(path)
	if err != nil {
		return err
	}
	doc, err := constraints.Load(path)
	if err != nil {
		return err
	}
	known := doc.ByPackage()

	w := cmd.OutOrStdout()
	for _, parent := range g.Parents() {
		if _, ok := known[parent]; !ok {
			fmt.Fprintf(w, "        - %s\n", parent)
		}
	}
	return nil
}
