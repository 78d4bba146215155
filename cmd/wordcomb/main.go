// Package main provides the CLI entrypoint for wordcomb.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/verte-zerg/wordcomb/internal/config"
	"github.com/verte-zerg/wordcomb/internal/model"
	"github.com/verte-zerg/wordcomb/internal/stats"
	"github.com/verte-zerg/wordcomb/internal/store"
)

const defaultHistoryLast = 20

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordcomb [options] <wordlist> [[switches] <wordlist> ...]",
		Short: "Combine wordlists into password candidates",
		// Switches are positional: they bind to the wordlists that follow.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		SilenceErrors:      false,
		RunE:               runGenerateCmd,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	return rootCmd
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	inv, err := parseArgs(args)
	if err != nil {
		if _, werr := fmt.Fprint(cmd.ErrOrStderr(), usage(inv.flags)); werr != nil {
			// Best-effort usage output.
			_ = werr
		}
		if errors.Is(err, errNoWordlists) {
			return err
		}
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if inv.help {
		_, err := fmt.Fprint(cmd.OutOrStdout(), usage(inv.flags))
		return err
	}
	return runGenerate(cmd, inv)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logErrf("Created %s\n", path)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	var cfg model.HistoryConfig
	var color bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryCmd(cmd, cfg, color)
		},
	}
	cmd.Flags().IntVar(&cfg.Last, "last", defaultHistoryLast, "limit to last N runs (0 = all)")
	cmd.Flags().BoolVar(&cfg.Levels, "levels", false, "show per-level counts")
	cmd.Flags().BoolVar(&color, "color", false, "force colored output")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, cfg model.HistoryConfig, color bool) error {
	if cfg.Last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	var levels map[string][]model.LevelStats
	if cfg.Levels {
		ids := make([]string, len(runs))
		for i, run := range runs {
			ids[i] = run.ID
		}
		if levels, err = st.ListLevels(cmd.Context(), ids); err != nil {
			return fmt.Errorf("failed to list levels: %w", err)
		}
	}
	return stats.RenderHistory(cmd.OutOrStdout(), runs, levels, stats.RenderOptions{
		Levels:     cfg.Levels,
		ForceColor: color,
	})
}

func applyStringConfig(fs *pflag.FlagSet, name string, target, value *string) {
	if value == nil {
		return
	}
	if fs.Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(fs *pflag.FlagSet, name string, target, value *int) {
	if value == nil {
		return
	}
	if fs.Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(fs *pflag.FlagSet, name string, target, value *bool) {
	if value == nil {
		return
	}
	if fs.Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wordcomb configuration
# Uncomment a value to enable it. CLI flags override config values,
# and WORDCOMB_* environment variables override this file.

[generate]
# threads = 0             # Worker threads, 0 uses all CPUs
# pw-min = %d              # Minimum candidate length
# pw-max = %d             # Maximum candidate length
# default-cap = %d         # Repetition cap for words without one, 0 = unlimited
# format = "text"         # Wordlist format when no --csv/--text is given
# charset = %q         # Keep only words matching: any, ascii, alnum
# output = ""             # Output file, empty writes to stdout
# verbose = false         # Log every search task
# progress = false        # Draw a progress bar on a terminal
# history = true          # Record runs for "wordcomb history"
`,
		defaultPwMin,
		defaultPwMax,
		defaultCap,
		defaultCharset,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
