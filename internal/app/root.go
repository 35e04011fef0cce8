package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/commenter/internal/config"
	"github.com/blackwell-systems/commenter/internal/document"
	"github.com/blackwell-systems/commenter/internal/output"
)

var (
	buildConstraintsPath string
	configPath           string
	verbose              bool
	noColor              bool

	// RootCmd is the root command for commenter
	RootCmd = &cobra.Command{
		Use:   "commenter",
		Short: "Maintain the generated sections of Stackage's build-constraints.yaml",
		Long: `commenter keeps the machine-managed parts of build-constraints.yaml in sync
with the diagnostics of curator's snapshot check.

It owns three regions of the file, delimited by marker comments: library and
executable bounds failures, test bounds issues and benchmark bounds issues.
Everything outside those regions is left exactly as written.

Examples:
  # Add the failures reported by a snapshot check
  stack exec curator check-snapshot 2>&1 | commenter add

  # Preview the change without writing the file
  commenter add --dry-run < check-snapshot.log

  # Run the whole check/add cycle until the snapshot builds
  commenter add-loop --clear

  # Which disabled packages hold back the most dependents?
  commenter disabled

  # Compare two snapshots
  commenter diff-snapshot lts-19.9.yaml lts-19.10.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	settings = config.Default()
	logger   = slog.Default()
)

func init() {
	RootCmd.PersistentFlags().StringVarP(&buildConstraintsPath, "build-constraints", "f", "", "path to build-constraints.yaml (default from config, else ./build-constraints.yaml)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/commenter/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	RootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// setup loads the config file and installs the logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = newLogger(cmd.ErrOrStderr(), level)

	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if buildConstraintsPath != "" {
		cfg.BuildConstraints = buildConstraintsPath
	}
	settings = cfg
	logger.Debug("loaded config", slog.String("path", path), slog.String("build_constraints", cfg.BuildConstraints))
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// palette returns the color palette for stdout.
func palette() *output.Palette {
	return output.NewPalette(!noColor && output.IsColorEnabled())
}

// documentPath returns the expanded build-constraints.yaml path.
func documentPath() (string, error) {
	return config.ExpandHome(settings.BuildConstraints)
}

// optionalPath expands a configured path, keeping "" as "".
func optionalPath(flagValue, configValue string) (string, error) {
	p := flagValue
	if p == "" {
		p = configValue
	}
	if p == "" {
		return "", nil
	}
	return config.ExpandHome(p)
}

// readInput returns the lines of path, or of the command's stdin when path
// is empty or "-". Trailing carriage returns are removed.
func readInput(cmd *cobra.Command, path string) ([]string, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	lines, _ := document.SplitLines(string(data))
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}
