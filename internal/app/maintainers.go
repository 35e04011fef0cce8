package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/constraints"
)

var maintainersCmd = &cobra.Command{
	Use:   "maintainers",
	Short: "List maintainers without a GitHub handle",
	Long: `Print every maintainer section whose name has no "@handle". Without one the
maintainer cannot be pinged when their packages break.`,
	Args: cobra.NoArgs,
	RunE: runMaintainers,
}

var multipleCmd = &cobra.Command{
	Use:   "multiple",
	Short: "List packages that appear in more than one section",
	Args:  cobra.NoArgs,
	RunE:  runMultiple,
}

func init() {
	RootCmd.AddCommand(maintainersCmd)
	RootCmd.AddCommand(multipleCmd)
}

func loadConstraints() (*constraints.Document, error) {
	path, err := documentPath()
	if err != nil {
		return nil, err
	}
	return constraints.Load(path)
}

func runMaintainers(cmd *cobra.Command, args []string) error {
	doc, err := loadConstraints()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, m := range doc.Maintainers() {
		if len(m.GithubUsers()) == 0 {
			fmt.Fprintf(w, "%s: Missing github handle\n", m)
		}
	}
	return nil
}

func runMultiple(cmd *cobra.Command, args []string) error {
	doc, err := loadConstraints()
	if err != nil {
		return err
	}
	bp := doc.ByPackage()
	w := cmd.OutOrStdout()
	for _, p := range bp.Multiple() {
		fmt.Fprintf(w, "%s: %s\n", p, joinMaintenance(bp[p].Maintainers))
	}
	return nil
}

func joinMaintenance(ms []constraints.Maintenance) string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return strings.Join(names, ", ")
}
