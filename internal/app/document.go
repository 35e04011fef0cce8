package app

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/blackwell-systems/commenter/internal/document"
	"github.com/blackwell-systems/commenter/internal/preview"
)

// editDocument applies transform to the managed regions of the document at
// path and writes it back. With dryRun the change is printed to w as a
// unified diff instead.
func editDocument(w io.Writer, path string, transform document.Transform, dryRun bool) error {
	f, err := document.Load(path)
	if err != nil {
		return err
	}
	res, err := document.NewScanner().Edit(f.Lines, transform)
	if err != nil {
		return fmt.Errorf("failed to edit %s: %w", path, err)
	}

	if dryRun {
		diff, err := preview.Unified(filepath.Base(path), f.Lines, res.Lines, 0)
		if err != nil {
			return err
		}
		if diff == "" {
			fmt.Fprintln(w, "No changes.")
			return nil
		}
		fmt.Fprint(w, diff)
		return nil
	}

	if err := f.Save(res.Lines); err != nil {
		return err
	}
	logger.Debug("wrote document", "path", path, "lines", len(res.Lines))
	return nil
}

// scanDocument reads the document at path without changing it and returns
// the scan result along with the content of every region.
func scanDocument(path string) (*document.File, *document.Result, map[document.Region][]string, error) {
	f, err := document.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	regions := make(map[document.Region][]string)
	res, err := document.NewScanner().Edit(f.Lines, document.Collect(regions))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return f, res, regions, nil
}
