package snapshot

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// Nightly identifies a nightly snapshot by date.
type Nightly struct {
	Year, Month, Day int
}

func (n Nightly) String() string {
	return fmt.Sprintf("nightly-%d-%02d-%02d", n.Year, n.Month, n.Day)
}

// Less orders nightlies by date.
func (n Nightly) Less(o Nightly) bool {
	if n.Year != o.Year {
		return n.Year < o.Year
	}
	if n.Month != o.Month {
		return n.Month < o.Month
	}
	return n.Day < o.Day
}

// LTS identifies a long-term-support snapshot.
type LTS struct {
	Major, Minor int
}

func (l LTS) String() string {
	return fmt.Sprintf("lts-%d.%d", l.Major, l.Minor)
}

// Less orders LTS snapshots by major, then minor version.
func (l LTS) Less(o LTS) bool {
	if l.Major != o.Major {
		return l.Major < o.Major
	}
	return l.Minor < o.Minor
}

// NightlyFile is a nightly snapshot found on disk.
type NightlyFile struct {
	Nightly
	Path string
}

// LTSFile is an LTS snapshot found on disk.
type LTSFile struct {
	LTS
	Path string
}

// Found lists the snapshots of a stackage-snapshots checkout, each sorted
// oldest first.
type Found struct {
	Nightly []NightlyFile
	LTS     []LTSFile
}

var (
	nightlyPathRe = regexp.MustCompile(`/nightly/(\d+)/(\d+)/(\d+)\.yaml$`)
	ltsPathRe     = regexp.MustCompile(`/lts/(\d+)/(\d+)\.yaml$`)
)

// Find walks dir for nightly/Y/M/D.yaml and lts/MAJOR/MINOR.yaml files.
// .git directories are skipped.
func Find(dir string) (*Found, error) {
	found := &Found{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		slashed := filepath.ToSlash(path)
		if m := nightlyPathRe.FindStringSubmatch(slashed); m != nil {
			found.Nightly = append(found.Nightly, NightlyFile{
				Nightly: Nightly{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])},
				Path:    path,
			})
		} else if m := ltsPathRe.FindStringSubmatch(slashed); m != nil {
			found.LTS = append(found.LTS, LTSFile{
				LTS:  LTS{Major: atoi(m[1]), Minor: atoi(m[2])},
				Path: path,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshots in %s: %w", dir, err)
	}

	sort.Slice(found.Nightly, func(i, j int) bool { return found.Nightly[i].Less(found.Nightly[j].Nightly) })
	sort.Slice(found.LTS, func(i, j int) bool { return found.LTS[i].Less(found.LTS[j].LTS) })
	return found, nil
}

// atoi is only called on regexp digit captures.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// LatestNightly returns the newest nightly that contains pkg. ok is false if
// no nightly does.
func (f *Found) LatestNightly(pkg pkgver.Package) (n NightlyFile, v pkgver.Version, ok bool, err error) {
	for i := len(f.Nightly) - 1; i >= 0; i-- {
		s, err := Load(f.Nightly[i].Path)
		if err != nil {
			return NightlyFile{}, nil, false, err
		}
		if v, found := s[pkg]; found {
			return f.Nightly[i], v, true, nil
		}
	}
	return NightlyFile{}, nil, false, nil
}

// LatestLTS returns the newest LTS snapshot that contains pkg.
func (f *Found) LatestLTS(pkg pkgver.Package) (l LTSFile, v pkgver.Version, ok bool, err error) {
	for i := len(f.LTS) - 1; i >= 0; i-- {
		s, err := Load(f.LTS[i].Path)
		if err != nil {
			return LTSFile{}, nil, false, err
		}
		if v, found := s[pkg]; found {
			return f.LTS[i], v, true, nil
		}
	}
	return LTSFile{}, nil, false, nil
}
