package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/document"
)

var clearDryRun bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the managed regions of build-constraints.yaml",
	Long: `Remove every generated entry from the library, test and benchmark regions.
The marker lines stay, and the library region keeps "[]" so the file remains
valid YAML. Hand-written content outside the regions is not touched.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearDryRun, "dry-run", false, "print the change as a diff without writing the file")

	RootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	return editDocument(cmd.OutOrStdout(), path, document.Clear, clearDryRun)
}
