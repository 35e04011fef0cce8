// Package curator runs the external curator and stack tools that build a
// candidate snapshot and check it.
package curator

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/blackwell-systems/commenter/internal/diagnostic"
)

// Runner invokes the tools by name or path.
type Runner struct {
	Curator string
	Stack   string
	logger  *slog.Logger
}

// NewRunner returns a Runner. Empty names fall back to "curator" and "stack"
// on PATH; a nil logger uses slog.Default().
func NewRunner(curatorBin, stackBin string, logger *slog.Logger) *Runner {
	if curatorBin == "" {
		curatorBin = "curator"
	}
	if stackBin == "" {
		stackBin = "stack"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Curator: curatorBin, Stack: stackBin, logger: logger}
}

// Update runs "curator update".
func (r *Runner) Update() error {
	_, err := r.curator("update")
	return err
}

// Constraints runs "curator constraints --target=<target>".
func (r *Runner) Constraints(target string) error {
	_, err := r.curator("constraints", "--target="+target)
	return err
}

// SnapshotIncomplete runs "curator snapshot-incomplete --target=<target>".
func (r *Runner) SnapshotIncomplete(target string) error {
	_, err := r.curator("snapshot-incomplete", "--target="+target)
	return err
}

// Snapshot runs "curator snapshot".
func (r *Runner) Snapshot() error {
	_, err := r.curator("snapshot")
	return err
}

// CheckSnapshot runs "stack --resolver ghc-<ghcVersion> exec curator
// check-snapshot" and returns its stderr lines, which carry the diagnostics.
// The check exits non-zero whenever it reports problems, so a failure is
// only returned when the diagnostic banner is absent.
func (r *Runner) CheckSnapshot(ghcVersion string) ([]string, error) {
	stderr, err := run(r.Stack, "--resolver", "ghc-"+ghcVersion, "exec", r.Curator, "check-snapshot")
	lines := splitLines(stderr)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || !strings.Contains(stderr, diagnostic.Banner) {
			return nil, fmt.Errorf("%s check-snapshot failed: %w (stderr: %s)", r.Stack, err, strings.TrimSpace(stderr))
		}
		r.logger.Debug("check-snapshot reported errors", slog.Int("exit_code", exitErr.ExitCode()))
	}
	return lines, nil
}

func (r *Runner) curator(args ...string) ([]string, error) {
	stderr, err := run(r.Curator, args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w (stderr: %s)", r.Curator, args[0], err, strings.TrimSpace(stderr))
	}
	lines := splitLines(stderr)
	for _, line := range lines {
		r.logger.Info(line, slog.String("step", "curator "+args[0]))
	}
	return lines, nil
}

func run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
