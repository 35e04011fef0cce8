package app

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/constraints"
	"github.com/blackwell-systems/commenter/internal/curator"
	"github.com/blackwell-systems/commenter/internal/document"
)

var addLoopClear bool

var addLoopCmd = &cobra.Command{
	Use:   "add-loop",
	Short: "Repeat snapshot check and add until no library fails",
	Long: `Build today's nightly snapshot with curator, check it, and add the failures to
build-constraints.yaml. Disabling packages can break their dependents, so the
cycle repeats until a check reports no library or executable failures.

Each round runs:
  curator constraints --target=nightly-YYYY-MM-DD
  curator snapshot-incomplete --target=nightly-YYYY-MM-DD
  curator snapshot
  stack --resolver ghc-<ghc-version> exec curator check-snapshot

The GHC version is read from build-constraints.yaml. The loop gives up after
max-rounds rounds (config, default 50).`,
	Args: cobra.NoArgs,
	RunE: runAddLoop,
}

func init() {
	addLoopCmd.Flags().BoolVar(&addLoopClear, "clear", false, "clear the managed regions before the first round")

	RootCmd.AddCommand(addLoopCmd)
}

// snapshotChecker is the curator tool chain.
type snapshotChecker interface {
	Update() error
	Constraints(target string) error
	SnapshotIncomplete(target string) error
	Snapshot() error
	CheckSnapshot(ghcVersion string) ([]string, error)
}

func runAddLoop(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if addLoopClear {
		fmt.Fprintf(w, "Clearing %s\n", path)
		if err := editDocument(w, path, document.Clear, false); err != nil {
			return err
		}
	}

	runner := curator.NewRunner(settings.Curator, settings.Stack, logger)
	target := "nightly-" + time.Now().UTC().Format("2006-01-02")
	rounds, err := addLoop(w, path, runner, target, settings.MaxRounds)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Done after %d rounds.\n", rounds)
	return nil
}

// addLoop runs check/add rounds until one adds no lib/exe lines and returns
// the number of rounds run.
func addLoop(w io.Writer, path string, c snapshotChecker, target string, maxRounds int) (int, error) {
	doc, err := constraints.Load(path)
	if err != nil {
		return 0, err
	}
	ghc := doc.GHCVersion

	logger.Info("running", slog.String("step", "curator update"))
	if err := c.Update(); err != nil {
		return 0, err
	}

	for round := 1; round <= maxRounds; round++ {
		log := logger.With(slog.Int("round", round), slog.String("target", target))

		log.Info("running", slog.String("step", "curator constraints"))
		if err := c.Constraints(target); err != nil {
			return round, err
		}
		log.Info("running", slog.String("step", "curator snapshot-incomplete"))
		if err := c.SnapshotIncomplete(target); err != nil {
			return round, err
		}
		log.Info("running", slog.String("step", "curator snapshot"))
		if err := c.Snapshot(); err != nil {
			return round, err
		}
		log.Info("running", slog.String("step", "check-snapshot"), slog.String("ghc", ghc))
		lines, err := c.CheckSnapshot(ghc)
		if err != nil {
			return round, err
		}

		libs, err := addDiagnostics(w, path, lines, false)
		if err != nil {
			return round, err
		}
		if libs == 0 {
			return round, nil
		}
	}
	return maxRounds, fmt.Errorf("library failures remain after %d rounds; raise max-rounds or inspect the last check", maxRounds)
}
