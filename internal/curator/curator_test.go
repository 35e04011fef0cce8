package curator

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/blackwell-systems/commenter/internal/diagnostic"
)

// fakeTool writes an executable shell script that appends its arguments to
// a log file, prints stderr and exits with code.
func fakeTool(t *testing.T, name, stderr string, code int) (bin, logPath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, name)
	logPath = filepath.Join(dir, name+".log")
	script := "#!/bin/sh\n" +
		"echo \"$@\" >> '" + logPath + "'\n" +
		"cat >&2 <<'OUT'\n" + stderr + "\nOUT\n" +
		"exit " + strconv.Itoa(code) + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake %s: %v", name, err)
	}
	return bin, logPath
}

func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRunner_CuratorSteps(t *testing.T) {
	bin, logPath := fakeTool(t, "curator", "progress", 0)
	r := NewRunner(bin, "", nil)

	if err := r.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := r.Constraints("nightly-2022-10-02"); err != nil {
		t.Fatalf("Constraints() error = %v", err)
	}
	if err := r.SnapshotIncomplete("nightly-2022-10-02"); err != nil {
		t.Fatalf("SnapshotIncomplete() error = %v", err)
	}
	if err := r.Snapshot(); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	got := readLog(t, logPath)
	want := []string{
		"update",
		"constraints --target=nightly-2022-10-02",
		"snapshot-incomplete --target=nightly-2022-10-02",
		"snapshot",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("invocations = %q, want %q", got, want)
	}
}

func TestRunner_CuratorFailure(t *testing.T) {
	bin, _ := fakeTool(t, "curator", "boom", 3)
	r := NewRunner(bin, "", nil)

	err := r.Update()
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should include stderr", err)
	}
}

func TestRunner_CheckSnapshot(t *testing.T) {
	report := "Checking\n" + diagnostic.Banner + "\n\nfoo-1.0 (changelog) is out of bounds for:"
	stack, logPath := fakeTool(t, "stack", report, 1)
	r := NewRunner("curator", stack, nil)

	lines, err := r.CheckSnapshot("9.2.4")
	if err != nil {
		t.Fatalf("CheckSnapshot() error = %v", err)
	}
	if len(lines) != 4 || lines[1] != diagnostic.Banner {
		t.Errorf("lines = %q", lines)
	}

	got := readLog(t, logPath)
	if got[0] != "--resolver ghc-9.2.4 exec curator check-snapshot" {
		t.Errorf("invocation = %q", got[0])
	}
}

func TestRunner_CheckSnapshotCRLF(t *testing.T) {
	report := "Checking\r\n" + diagnostic.Banner + "\r\nfoo-1.0 (changelog) is out of bounds for:\r"
	stack, _ := fakeTool(t, "stack", report, 1)
	r := NewRunner("curator", stack, nil)

	lines, err := r.CheckSnapshot("9.2.4")
	if err != nil {
		t.Fatalf("CheckSnapshot() error = %v", err)
	}
	want := []string{"Checking", diagnostic.Banner, "foo-1.0 (changelog) is out of bounds for:"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestRunner_CheckSnapshotFailureWithoutBanner(t *testing.T) {
	stack, _ := fakeTool(t, "stack", "stack: no such resolver", 1)
	r := NewRunner("curator", stack, nil)

	if _, err := r.CheckSnapshot("9.2.4"); err == nil {
		t.Fatal("expected error when the banner is missing")
	}
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "nope"), nil)

	if err := r.Snapshot(); err == nil {
		t.Error("expected error for missing curator")
	}
	if _, err := r.CheckSnapshot("9.2.4"); err == nil {
		t.Error("expected error for missing stack")
	}
}
