package store

import (
	"fmt"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// InsertCabal records a revision of a package version, creating the name and
// version rows as needed.
func (s *Store) InsertCabal(pkg pkgver.Package, version pkgver.Version, revision int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO package_name (name) VALUES (?)`, string(pkg)); err != nil {
		return wrapErr(err, "failed to insert package name %s", pkg)
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO version (version) VALUES (?)`, version.String()); err != nil {
		return wrapErr(err, "failed to insert version %s", version)
	}

	query := `
		INSERT OR IGNORE INTO hackage_cabal (name, version, revision)
		VALUES (
			(SELECT id FROM package_name WHERE name = ?),
			(SELECT id FROM version WHERE version = ?),
			?
		)
	`
	if _, err := tx.Exec(query, string(pkg), version.String(), revision); err != nil {
		return wrapErr(err, "failed to insert %s-%s", pkg, version)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AllVersions returns every version of pkg known to the index. Revisions of
// the same version are reported once.
func (s *Store) AllVersions(pkg pkgver.Package) ([]pkgver.Version, error) {
	query := `
		SELECT DISTINCT version.version
		FROM hackage_cabal AS h, version
		WHERE h.name = (SELECT id FROM package_name WHERE name = ?)
		  AND h.version = version.id
	`

	rows, err := s.db.Query(query, string(pkg))
	if err != nil {
		return nil, wrapErr(err, "failed to query versions of %s", pkg)
	}
	defer rows.Close()

	var versions []pkgver.Version
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan version of %s: %w", pkg, err)
		}
		v, err := pkgver.ParseVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("version of %s: %w", pkg, err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions of %s: %w", pkg, err)
	}
	return versions, nil
}

// LatestVersion returns the greatest version of pkg, or nil if the index
// does not know the package.
func (s *Store) LatestVersion(pkg pkgver.Package) (pkgver.Version, error) {
	versions, err := s.AllVersions(pkg)
	if err != nil {
		return nil, err
	}
	return pkgver.Max(versions), nil
}

// LatestVersions looks up the latest version of every package. Unknown
// packages are absent from the result.
func (s *Store) LatestVersions(pkgs []pkgver.Package) (map[pkgver.Package]pkgver.Version, error) {
	out := make(map[pkgver.Package]pkgver.Version, len(pkgs))
	for _, p := range pkgs {
		v, err := s.LatestVersion(p)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[p] = v
		}
	}
	return out, nil
}
