package document

import (
	"errors"
	"fmt"
)

// Region markers. Each must appear exactly once, in this order.
const (
	LibStart   = `    "Library and exe bounds failures":`
	LibEnd     = `    # End of Library and exe bounds failures`
	TestStart  = `    # Test bounds issues`
	TestEnd    = `    # End of Test bounds issues`
	BenchStart = `    # Benchmark bounds issues`
	BenchEnd   = `    # End of Benchmark bounds issues`

	// EmptyRegion keeps the lib region valid YAML when it has no entries.
	EmptyRegion = `        []`
)

// ErrMarker is returned when region markers are missing, duplicated or out
// of order.
var ErrMarker = errors.New("region marker error")

// Region identifies one of the three managed regions.
type Region int

const (
	Lib Region = iota
	Test
	Bench
)

func (r Region) String() string {
	switch r {
	case Lib:
		return "lib"
	case Test:
		return "test"
	case Bench:
		return "bench"
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

func (r Region) start() string {
	return [...]string{LibStart, TestStart, BenchStart}[r]
}

func (r Region) end() string {
	return [...]string{LibEnd, TestEnd, BenchEnd}[r]
}

// State is the scanner position relative to the managed regions.
type State int

const (
	LookingForLibBounds State = iota
	ProcessingLibBounds
	LookingForTestBounds
	ProcessingTestBounds
	LookingForBenchBounds
	ProcessingBenchBounds
	Done
)

func (s State) String() string {
	switch s {
	case LookingForLibBounds:
		return "LookingForLibBounds"
	case ProcessingLibBounds:
		return "ProcessingLibBounds"
	case LookingForTestBounds:
		return "LookingForTestBounds"
	case ProcessingTestBounds:
		return "ProcessingTestBounds"
	case LookingForBenchBounds:
		return "LookingForBenchBounds"
	case ProcessingBenchBounds:
		return "ProcessingBenchBounds"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Region returns the region a Looking or Processing state belongs to.
func (s State) Region() Region {
	return Region(int(s) / 2)
}

// Processing reports whether lines are being buffered in this state.
func (s State) Processing() bool {
	return s != Done && int(s)%2 == 1
}

// Action tells the caller what to do with the line just stepped over.
type Action int

const (
	// Pass emits the line unchanged.
	Pass Action = iota
	// Buffer appends the line to the current region buffer.
	Buffer
	// Drop discards the line.
	Drop
	// Close replaces the buffer with the transformed region content, then
	// emits the line (the end marker).
	Close
)

var markers = map[string]bool{
	LibStart: true, LibEnd: true,
	TestStart: true, TestEnd: true,
	BenchStart: true, BenchEnd: true,
}

// Step is the pure transition function of the region scanner.
func Step(s State, line string) (State, Action, error) {
	switch {
	case s == Done:
		if markers[line] {
			return s, Pass, fmt.Errorf("%w: %q after the last region", ErrMarker, line)
		}
		return s, Pass, nil

	case s.Processing():
		r := s.Region()
		if line == r.end() {
			return s + 1, Close, nil
		}
		if markers[line] {
			return s, Pass, fmt.Errorf("%w: %q inside the %s region", ErrMarker, line, r)
		}
		if r == Lib && line == EmptyRegion {
			return s, Drop, nil
		}
		return s, Buffer, nil

	default:
		r := s.Region()
		if line == r.start() {
			return s + 1, Pass, nil
		}
		if markers[line] {
			return s, Pass, fmt.Errorf("%w: %q while looking for %q", ErrMarker, line, r.start())
		}
		return s, Pass, nil
	}
}

// expecting returns the marker the scanner waits for in state s.
func (s State) expecting() string {
	if s.Processing() {
		return s.Region().end()
	}
	return s.Region().start()
}
