package app

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/commenter/internal/document"
)

func fixtureWith(t *testing.T, old, new string) string {
	t.Helper()
	data := readFile(t, filepath.Join("testdata", "build-constraints.yaml"))
	if !strings.Contains(data, old) {
		t.Fatalf("fixture does not contain %q", old)
	}
	return writeDocument(t, strings.Replace(data, old, new, 1))
}

func TestRunDisabled(t *testing.T) {
	withDocument(t)
	cmd, out := testCmd()

	if err := runDisabled(cmd, nil); err != nil {
		t.Fatalf("runDisabled failed: %v", err)
	}
	want := "Network-NineP is disabled with 1 dependents\nmstate is disabled with 2 dependents\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRunDisabled_Cycle(t *testing.T) {
	fixtureWith(t, document.LibStart+"\n", document.LibStart+"\n"+
		"        - mstate < 0 # tried mstate-0.2.8, but its *library* requires the disabled package: hspec-discover-ext\n")
	cmd, _ := testCmd()

	err := runDisabled(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected a cycle error, got %v", err)
	}
}

func TestRunGrandfather(t *testing.T) {
	fixtureWith(t, document.LibStart+"\n", document.LibStart+"\n"+
		"        - orphan-child < 0 # tried orphan-child-1, but its *library* requires the disabled package: ghostpkg\n")
	cmd, out := testCmd()

	if err := runGrandfather(cmd, nil); err != nil {
		t.Fatalf("runGrandfather failed: %v", err)
	}
	if out.String() != "        - ghostpkg\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunMaintainers(t *testing.T) {
	withDocument(t)
	cmd, out := testCmd()

	if err := runMaintainers(cmd, nil); err != nil {
		t.Fatalf("runMaintainers failed: %v", err)
	}
	if out.String() != "Ketil Malde: Missing github handle\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunMultiple(t *testing.T) {
	withDocument(t)
	cmd, out := testCmd()

	if err := runMultiple(cmd, nil); err != nil {
		t.Fatalf("runMultiple failed: %v", err)
	}
	want := "aeson: Adam Bergmark <adam@bergmark.nl> @bergmark, Stackage upper bounds\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
