package app

import (
	"errors"
	"strings"
	"testing"
)

type fakeChecker struct {
	outputs [][]string
	calls   []string
	failOn  string
}

func (f *fakeChecker) step(name string) error {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeChecker) Update() error                   { return f.step("update") }
func (f *fakeChecker) Constraints(target string) error { return f.step("constraints " + target) }
func (f *fakeChecker) SnapshotIncomplete(target string) error {
	return f.step("snapshot-incomplete " + target)
}
func (f *fakeChecker) Snapshot() error { return f.step("snapshot") }

func (f *fakeChecker) CheckSnapshot(ghcVersion string) ([]string, error) {
	if err := f.step("check-snapshot " + ghcVersion); err != nil {
		return nil, err
	}
	if len(f.outputs) == 0 {
		return nil, nil
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}

func TestAddLoop_StopsWhenNoLibFailures(t *testing.T) {
	path := withDocument(t)
	c := &fakeChecker{outputs: [][]string{
		strings.Split(checkOutput, "\n"),
		{"curator: Snapshot dependency graph contains errors:"},
	}}
	cmd, _ := testCmd()

	rounds, err := addLoop(cmd.OutOrStdout(), path, c, "nightly-2022-10-02", 5)
	if err != nil {
		t.Fatalf("addLoop failed: %v", err)
	}
	if rounds != 2 {
		t.Errorf("rounds = %d, want 2", rounds)
	}

	want := []string{
		"update",
		"constraints nightly-2022-10-02",
		"snapshot-incomplete nightly-2022-10-02",
		"snapshot",
		"check-snapshot 9.2.4",
		"constraints nightly-2022-10-02",
		"snapshot-incomplete nightly-2022-10-02",
		"snapshot",
		"check-snapshot 9.2.4",
	}
	if strings.Join(c.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", c.calls, want)
	}
	if !strings.Contains(readFile(t, path), "- zeta < 0 # tried zeta-1.0") {
		t.Error("expected the first round's failures to be added")
	}
}

func TestAddLoop_GivesUpAfterMaxRounds(t *testing.T) {
	path := withDocument(t)
	lines := strings.Split(checkOutput, "\n")
	c := &fakeChecker{outputs: [][]string{lines, lines, lines}}
	cmd, _ := testCmd()

	rounds, err := addLoop(cmd.OutOrStdout(), path, c, "nightly-2022-10-02", 2)
	if err == nil {
		t.Fatal("expected an error when failures remain")
	}
	if rounds != 2 {
		t.Errorf("rounds = %d, want 2", rounds)
	}
	if len(c.outputs) != 1 {
		t.Errorf("expected exactly 2 checks, %d outputs left", len(c.outputs))
	}
}

func TestAddLoop_StepFailure(t *testing.T) {
	path := withDocument(t)
	before := readFile(t, path)
	c := &fakeChecker{failOn: "snapshot"}
	cmd, _ := testCmd()

	_, err := addLoop(cmd.OutOrStdout(), path, c, "nightly-2022-10-02", 3)
	if err == nil || !strings.Contains(err.Error(), "snapshot failed") {
		t.Fatalf("expected the step error, got %v", err)
	}
	if readFile(t, path) != before {
		t.Error("document must not change when a step fails")
	}
}
