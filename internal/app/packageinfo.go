package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/constraints"
	"github.com/blackwell-systems/commenter/internal/pkgver"
	"github.com/blackwell-systems/commenter/internal/snapshot"
)

var packageInfoSnapshots string

var packageInfoCmd = &cobra.Command{
	Use:   "package-info PACKAGE",
	Short: "Show what is known about a package",
	Long: `Show the newest nightly and LTS snapshots that contain the package, its latest
version in the package index, and what build-constraints.yaml says about it.

Snapshots are read from a checkout of the stackage-snapshots repository
(nightly/YYYY/M/D.yaml and lts/MAJOR/MINOR.yaml).`,
	Args: cobra.ExactArgs(1),
	RunE: runPackageInfo,
}

func init() {
	packageInfoCmd.Flags().StringVar(&packageInfoSnapshots, "snapshots", "", "stackage-snapshots checkout (default from config)")

	RootCmd.AddCommand(packageInfoCmd)
}

func runPackageInfo(cmd *cobra.Command, args []string) error {
	dir, err := optionalPath(packageInfoSnapshots, settings.StackageSnapshots)
	if err != nil {
		return err
	}
	path, err := documentPath()
	if err != nil {
		return err
	}
	resolver, err := newResolver(nil)
	if err != nil {
		return err
	}
	return packageInfo(cmd.OutOrStdout(), pkgver.Package(args[0]), dir, path, resolver)
}

func packageInfo(w io.Writer, pkg pkgver.Package, snapshotsDir, docPath string, resolver LatestResolver) error {
	fmt.Fprintf(w, "%s:\n", pkg)

	if snapshotsDir == "" {
		fmt.Fprintln(w, "snapshots: no stackage-snapshots directory configured")
	} else if err := snapshotInfo(w, pkg, snapshotsDir); err != nil {
		return err
	}

	latest, err := resolver.Latest([]pkgver.Package{pkg})
	if err != nil {
		return fmt.Errorf("failed to look up latest version: %w", err)
	}
	if v, ok := latest[pkg]; ok {
		fmt.Fprintf(w, "Hackage: latest version: %s\n", v)
	} else {
		fmt.Fprintln(w, "Hackage: Could not find package")
	}

	doc, err := constraints.Load(docPath)
	if err != nil {
		return err
	}
	info, ok := doc.ByPackage()[pkg]
	if !ok {
		fmt.Fprintln(w, "build-constraints: Could not find package")
		return nil
	}
	versions := make([]string, len(info.Versions))
	for i, v := range info.Versions {
		versions[i] = v.String()
	}
	fmt.Fprintf(w, "build-constraints: bounds: [%s]\n", strings.Join(info.Bounds, ", "))
	fmt.Fprintf(w, "build-constraints: noted versions: [%s]\n", strings.Join(versions, ", "))
	fmt.Fprintf(w, "build-constraints: maintainers: [%s]\n", joinMaintenance(info.Maintainers))
	return nil
}

func snapshotInfo(w io.Writer, pkg pkgver.Package, dir string) error {
	found, err := snapshot.Find(dir)
	if err != nil {
		return err
	}

	n, v, ok, err := found.LatestNightly(pkg)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "nightly: latest snapshot: %s\n", n)
		fmt.Fprintf(w, "nightly: latest version: %s\n", v)
	} else {
		fmt.Fprintln(w, "nightly: Could not find package")
	}

	l, v, ok, err := found.LatestLTS(pkg)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "LTS: latest snapshot: %s\n", l)
		fmt.Fprintf(w, "LTS: latest version: %s\n", v)
	} else {
		fmt.Fprintln(w, "LTS: Could not find package")
	}
	return nil
}
