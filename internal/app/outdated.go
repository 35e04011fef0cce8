package app

import (
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/document"
	"github.com/blackwell-systems/commenter/internal/ignores"
	"github.com/blackwell-systems/commenter/internal/output"
	"github.com/blackwell-systems/commenter/internal/pkgver"
)

var (
	outdatedShowLines  bool
	outdatedIgnoreFile string
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "Find disabled packages whose recorded version is no longer the latest",
	Long: `Compare the versions recorded in build-constraints.yaml with the latest
versions known to the package index and report every mismatch:

  - manual: a version noted by hand, "- foo < 0 # 1.2.3"
  - auto:   the version in a generated "# tried foo-1.2.3, ..." annotation
  - snapshot: a dependency noted as "does not support: foo-1.2.3"

A new release may have fixed the problem, so these entries are worth
rechecking. Packages disabled without a noted version are reported as
warnings. GHC boot packages are skipped. Entries listed in the ignore file
are not reported.`,
	Args: cobra.NoArgs,
	RunE: runOutdated,
}

func init() {
	outdatedCmd.Flags().BoolVar(&outdatedShowLines, "show-lines", false, "print the matching lines of build-constraints.yaml")
	outdatedCmd.Flags().StringVar(&outdatedIgnoreFile, "ignore-file", "", "file of packages to leave out (default from config)")

	RootCmd.AddCommand(outdatedCmd)
}

// bootPackages ship with GHC; their versions follow the compiler.
var bootPackages = map[pkgver.Package]bool{
	"Cabal":            true,
	"base":             true,
	"bytestring":       true,
	"containers":       true,
	"directory":        true,
	"filepath":         true,
	"deepseq":          true,
	"ghc":              true,
	"ghc-bignum":       true,
	"ghc-boot":         true,
	"ghc-boot-th":      true,
	"ghc-prim":         true,
	"ghci":             true,
	"ghc-lib-parser":   true, // not a boot package, but tied to the GHC version
	"integer-gmp":      true,
	"parsec":           true,
	"process":          true,
	"stm":              true,
	"template-haskell": true,
	"text":             true,
	"time":             true,
}

var (
	triedRe     = regexp.MustCompile(`tried ([^ ]+)-([^,-]+),`)
	noSupportRe = regexp.MustCompile(`does not support: ([^ ]+)-(\d+(?:\.\d+)*)`)
)

// maxDependents is how many dependents a snapshot mismatch lists by name.
const maxDependents = 3

// recorded is a version found in the document and where it came from.
type recorded struct {
	version pkgver.Version
	tag     string
}

type outdatedOptions struct {
	ignores   *ignores.Ignores
	showLines bool
	palette   *output.Palette
}

func runOutdated(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	ignorePath, err := optionalPath(outdatedIgnoreFile, settings.IgnoreFile)
	if err != nil {
		return err
	}
	ig, err := ignores.Load(ignorePath)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return outdated(cmd.OutOrStdout(), path, resolver, outdatedOptions{
		ignores:   ig,
		showLines: outdatedShowLines,
		palette:   palette(),
	})
}

func outdated(w io.Writer, path string, resolver LatestResolver, opts outdatedOptions) error {
	f, res, regions, err := scanDocument(path)
	if err != nil {
		return err
	}
	showLines := func(p pkgver.Package) {
		if opts.showLines {
			fmt.Fprint(w, output.RenderMatchingLines(f.Lines, string(p)))
		}
	}

	for _, p := range res.Disabled {
		if opts.ignores.ContainsPackage(p) {
			continue
		}
		fmt.Fprintln(w, opts.palette.Warn(fmt.Sprintf("WARN: %s is disabled without a noted version", p)))
		showLines(p)
	}

	versions := make(map[pkgver.Package]recorded)
	for _, vp := range res.Noted {
		versions[vp.Package] = recorded{version: vp.Version, tag: "manual"}
	}

	type dependency struct {
		pkg     pkgver.Package
		version string
	}
	support := make(map[dependency][]pkgver.VersionedPackage)

	for _, r := range []document.Region{document.Lib, document.Test, document.Bench} {
		for _, line := range regions[r] {
			m := triedRe.FindStringSubmatch(line)
			if m == nil {
				return fmt.Errorf("%s: unexpected line in %s region: %q", path, r, line)
			}
			v, err := pkgver.ParseVersion(m[2])
			if err != nil {
				return fmt.Errorf("%s: %q: %w", path, line, err)
			}
			tried := pkgver.VersionedPackage{Package: pkgver.Package(m[1]), Version: v}
			versions[tried.Package] = recorded{version: v, tag: "auto"}

			if m := noSupportRe.FindStringSubmatch(line); m != nil {
				dep := dependency{pkg: pkgver.Package(m[1]), version: m[2]}
				support[dep] = append(support[dep], tried)
			}
		}
	}

	var lookup []pkgver.Package
	seen := make(map[pkgver.Package]bool)
	add := func(p pkgver.Package) {
		if !seen[p] && !bootPackages[p] {
			seen[p] = true
			lookup = append(lookup, p)
		}
	}
	for p := range versions {
		add(p)
	}
	for dep := range support {
		add(dep.pkg)
	}
	sort.Slice(lookup, func(i, j int) bool { return lookup[i] < lookup[j] })

	latest, err := resolver.Latest(lookup)
	if err != nil {
		return fmt.Errorf("failed to look up latest versions: %w", err)
	}

	names := make([]pkgver.Package, 0, len(versions))
	for p := range versions {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	for _, p := range names {
		if bootPackages[p] {
			continue
		}
		rec := versions[p]
		newest, ok := latest[p]
		if !ok {
			fmt.Fprintln(w, opts.palette.Warn(fmt.Sprintf("WARN: %s is not in the package index", p)))
			continue
		}
		if rec.version.Equal(newest) || opts.ignores.ContainsVersioned(pkgver.VersionedPackage{Package: p, Version: newest}) {
			continue
		}
		fmt.Fprintf(w, "%s mismatch, %s: %s, hackage: %s\n", p, rec.tag, rec.version, newest)
		showLines(p)
	}

	deps := make([]dependency, 0, len(support))
	for d := range support {
		deps = append(deps, d)
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].pkg != deps[j].pkg {
			return deps[i].pkg < deps[j].pkg
		}
		return deps[i].version < deps[j].version
	})

	for _, d := range deps {
		if bootPackages[d.pkg] {
			continue
		}
		v, err := pkgver.ParseVersion(d.version)
		if err != nil {
			return fmt.Errorf("%s: dependency %s-%s: %w", path, d.pkg, d.version, err)
		}
		newest, ok := latest[d.pkg]
		if !ok {
			fmt.Fprintln(w, opts.palette.Warn(fmt.Sprintf("WARN: %s is not in the package index", d.pkg)))
			continue
		}
		if v.Equal(newest) {
			continue
		}

		dependents := support[d]
		sort.Slice(dependents, func(i, j int) bool {
			if dependents[i].Package != dependents[j].Package {
				return dependents[i].Package < dependents[j].Package
			}
			return dependents[i].Version.Less(dependents[j].Version)
		})
		var listed []string
		for i, vp := range dependents {
			if i > 0 && vp.String() == dependents[i-1].String() {
				continue
			}
			listed = append(listed, vp.String())
		}

		fmt.Fprintf(w, "%s mismatch, snapshot: %s, hackage: %s, dependents: %s\n",
			d.pkg, v, newest, output.JoinLimited(listed, maxDependents))
		showLines(d.pkg)
	}
	return nil
}
