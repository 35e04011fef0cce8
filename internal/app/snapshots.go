package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/ignores"
	"github.com/blackwell-systems/commenter/internal/output"
	"github.com/blackwell-systems/commenter/internal/snapshot"
)

var (
	diffMode       string
	diffIgnoreFile string
)

var diffSnapshotCmd = &cobra.Command{
	Use:   "diff-snapshot OLD NEW",
	Short: "Compare the package versions of two snapshot files",
	Long: `Compare two snapshot YAML files.

In text mode (default) every difference is one line:
  - foo-1.0         removed
  + bar-2.0         added
  ^ baz-1.0 -> 1.1  changed

In cabal mode the added and changed packages are printed as the build-depends
of a throwaway cabal package, so the new versions can be test-built together.
Packages in the ignore file are dropped in text mode and commented out in
cabal mode.`,
	Example: `  commenter diff-snapshot lts/19/9.yaml lts/19/10.yaml
  commenter diff-snapshot --mode cabal --ignore-file ignore old.yaml new.yaml > test.cabal`,
	Args: cobra.ExactArgs(2),
	RunE: runDiffSnapshot,
}

var affectedCmd = &cobra.Command{
	Use:   "affected OLD NEW",
	Short: "List packages removed between two snapshots and who maintains them",
	Long: `Print every package that is in OLD but not in NEW, with the maintainers
build-constraints.yaml lists for it, or UNMAINTAINED.`,
	Args: cobra.ExactArgs(2),
	RunE: runAffected,
}

func init() {
	diffSnapshotCmd.Flags().StringVar(&diffMode, "mode", "text", "output format: text or cabal")
	diffSnapshotCmd.Flags().StringVar(&diffIgnoreFile, "ignore-file", "", "file of packages to ignore (default from config)")

	RootCmd.AddCommand(diffSnapshotCmd)
	RootCmd.AddCommand(affectedCmd)
}

func compareSnapshotFiles(oldPath, newPath string) (snapshot.Changes, error) {
	old, err := snapshot.Load(oldPath)
	if err != nil {
		return nil, err
	}
	cur, err := snapshot.Load(newPath)
	if err != nil {
		return nil, err
	}
	return snapshot.Compare(old, cur), nil
}

func runDiffSnapshot(cmd *cobra.Command, args []string) error {
	if diffMode != "text" && diffMode != "cabal" {
		return fmt.Errorf("invalid mode: %q (must be text or cabal)", diffMode)
	}
	ignorePath, err := optionalPath(diffIgnoreFile, settings.IgnoreFile)
	if err != nil {
		return err
	}
	ig, err := ignores.Load(ignorePath)
	if err != nil {
		return err
	}
	changes, err := compareSnapshotFiles(args[0], args[1])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if diffMode == "cabal" {
		fmt.Fprint(w, output.RenderCabal(changes, ig.ContainsPackage))
		return nil
	}
	fmt.Fprint(w, output.RenderSnapshotText(palette(), changes, ig.ContainsPackage))
	return nil
}

func runAffected(cmd *cobra.Command, args []string) error {
	changes, err := compareSnapshotFiles(args[0], args[1])
	if err != nil {
		return err
	}
	doc, err := loadConstraints()
	if err != nil {
		return err
	}
	bp := doc.ByPackage()

	w := cmd.OutOrStdout()
	for _, vp := range changes.Removed() {
		maintainers := "UNMAINTAINED"
		if info, ok := bp[vp.Package]; ok {
			maintainers = joinMaintenance(info.Maintainers)
		}
		fmt.Fprintf(w, "%s: %s\n", vp, maintainers)
	}
	return nil
}
