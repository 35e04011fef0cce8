package app

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/commenter/internal/config"
	"github.com/blackwell-systems/commenter/internal/output"
	"github.com/blackwell-systems/commenter/internal/pkgver"
	"github.com/blackwell-systems/commenter/internal/store"
)

// LatestResolver finds the newest released version of packages. Packages it
// knows nothing about are absent from the result.
type LatestResolver interface {
	Latest(pkgs []pkgver.Package) (map[pkgver.Package]pkgver.Version, error)
}

// pantryResolver reads stack's local copy of the Hackage index.
type pantryResolver struct {
	path     string
	progress io.Writer
}

func (r *pantryResolver) Latest(pkgs []pkgver.Package) (map[pkgver.Package]pkgver.Version, error) {
	st, err := store.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if r.progress == nil {
		return st.LatestVersions(pkgs)
	}

	bar := output.NewProgress(r.progress, len(pkgs), "Looking up latest versions")
	out := make(map[pkgver.Package]pkgver.Version, len(pkgs))
	for _, p := range pkgs {
		v, err := st.LatestVersion(p)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[p] = v
		}
		bar.Increment()
	}
	bar.Finish()
	return out, nil
}

// commandResolver runs an external program with the package names as
// arguments. It must print "<package>-<version>" lines; when a package is
// printed more than once the greatest version wins.
type commandResolver struct {
	argv []string
}

func (r *commandResolver) Latest(pkgs []pkgver.Package) (map[pkgver.Package]pkgver.Version, error) {
	if len(pkgs) == 0 {
		return map[pkgver.Package]pkgver.Version{}, nil
	}
	args := append([]string{}, r.argv[1:]...)
	for _, p := range pkgs {
		args = append(args, string(p))
	}

	cmd := exec.Command(r.argv[0], args...)
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s failed: %w (stderr: %s)", r.argv[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", r.argv[0], err)
	}

	out := make(map[pkgver.Package]pkgver.Version)
	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		vp, err := pkgver.ParseVersionedPackage(line)
		if err != nil {
			return nil, fmt.Errorf("%s printed an unexpected line: %w", r.argv[0], err)
		}
		if cur, ok := out[vp.Package]; !ok || cur.Less(vp.Version) {
			out[vp.Package] = vp.Version
		}
	}
	return out, nil
}

// newResolver picks the resolver configured in settings.
func newResolver(progress io.Writer) (LatestResolver, error) {
	if len(settings.LatestCommand) > 0 {
		return &commandResolver{argv: settings.LatestCommand}, nil
	}
	path, err := config.ExpandHome(settings.PantryDB)
	if err != nil {
		return nil, err
	}
	return &pantryResolver{path: path, progress: progress}, nil
}
