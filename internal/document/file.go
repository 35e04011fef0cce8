package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a document loaded into memory as lines.
type File struct {
	Path  string
	Lines []string

	mode  os.FileMode
	noEOL bool
}

// Load reads path and splits it into lines.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f := &File{Path: path, mode: info.Mode().Perm()}
	f.Lines, f.noEOL = SplitLines(string(data))
	return f, nil
}

// SplitLines splits content on "\n". The second result reports that the last
// line had no terminating newline.
func SplitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, false
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1], false
	}
	return lines, true
}

// Render joins lines back into file content, keeping the original file's
// trailing-newline convention.
func (f *File) Render(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	s := strings.Join(lines, "\n")
	if !f.noEOL {
		s += "\n"
	}
	return []byte(s)
}

// Save replaces the file with lines. The content goes to a temporary file in
// the same directory which is then renamed over the original, so readers see
// either the old or the new document.
func (f *File) Save(lines []string) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(f.Render(lines)); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	mode := f.mode
	if mode == 0 {
		mode = 0644
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", f.Path, err)
	}

	f.Lines = lines
	return nil
}
