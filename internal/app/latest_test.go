package app

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("resolver scripts are shell scripts")
	}
	path := filepath.Join(t.TempDir(), "latest")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandResolver(t *testing.T) {
	bin := writeScript(t, "echo aeson-2.0.3.0\necho aeson-2.1.0.0\necho zlib-0.7.0.0\n")
	r := &commandResolver{argv: []string{bin}}

	got, err := r.Latest([]pkgver.Package{"aeson", "zlib"})
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if got["aeson"].String() != "2.1.0.0" || got["zlib"].String() != "0.7.0.0" {
		t.Errorf("Latest() = %v", got)
	}
}

func TestCommandResolver_FailureIncludesStderr(t *testing.T) {
	bin := writeScript(t, "echo 'index is stale' >&2\nexit 2\n")
	r := &commandResolver{argv: []string{bin}}

	_, err := r.Latest([]pkgver.Package{"aeson"})
	if err == nil {
		t.Fatal("expected an error for a non-zero exit")
	}
	if !strings.Contains(err.Error(), "index is stale") {
		t.Errorf("error %q does not include stderr", err)
	}
}
