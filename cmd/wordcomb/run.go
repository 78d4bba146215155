package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/wordcomb/internal/catalog"
	"github.com/verte-zerg/wordcomb/internal/codec"
	"github.com/verte-zerg/wordcomb/internal/config"
	"github.com/verte-zerg/wordcomb/internal/dispatch"
	"github.com/verte-zerg/wordcomb/internal/model"
	"github.com/verte-zerg/wordcomb/internal/output"
	"github.com/verte-zerg/wordcomb/internal/pool"
	"github.com/verte-zerg/wordcomb/internal/progress"
	"github.com/verte-zerg/wordcomb/internal/stats"
	"github.com/verte-zerg/wordcomb/internal/store"
	"github.com/verte-zerg/wordcomb/internal/wordlist"
)

// resolveConfig layers the config file and environment under the flags
// that were set explicitly.
func resolveConfig(inv *invocation) (model.Config, []wordlist.Source, error) {
	path := inv.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return model.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg); err != nil {
		return model.Config{}, nil, err
	}
	gen := fileCfg.Generate
	fs := inv.flags

	applyIntConfig(fs, "threads", &inv.threads, gen.Threads)
	applyIntConfig(fs, "pw-min", &inv.pwMin, gen.PwMin)
	applyIntConfig(fs, "pw-max", &inv.pwMax, gen.PwMax)
	applyStringConfig(fs, "charset", &inv.charset, gen.Charset)
	applyStringConfig(fs, "output", &inv.output, gen.Output)
	applyBoolConfig(fs, "verbose", &inv.verbose, gen.Verbose)
	applyBoolConfig(fs, "progress", &inv.progress, gen.Progress)

	history := true
	if gen.History != nil {
		history = *gen.History
	}
	if inv.noHistory {
		history = false
	}

	capValue := uint64(defaultCap)
	if gen.DefaultCap != nil {
		if *gen.DefaultCap < 0 {
			return model.Config{}, nil, fmt.Errorf("default-cap must be >= 0")
		}
		capValue = uint64(*gen.DefaultCap)
	}
	format := wordlist.Text
	if gen.Format != nil {
		if format, err = parseFormat(*gen.Format); err != nil {
			return model.Config{}, nil, err
		}
	}

	cfg := model.Config{
		Threads:    inv.threads,
		PwMin:      inv.pwMin,
		PwMax:      inv.pwMax,
		DefaultCap: capValue,
		Charset:    inv.charset,
		Output:     inv.output,
		Verbose:    inv.verbose,
		Progress:   inv.progress,
		History:    history,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, nil, err
	}
	return cfg, resolveSources(inv.sources, format, capValue), nil
}

func validateConfig(cfg model.Config) error {
	if cfg.Threads < 0 {
		return fmt.Errorf("--threads must be >= 0")
	}
	if cfg.PwMin < 0 {
		return fmt.Errorf("--pw-min must be >= 0")
	}
	if cfg.PwMax < 1 {
		return fmt.Errorf("--pw-max must be > 0")
	}
	if cfg.PwMin > cfg.PwMax {
		return fmt.Errorf("--pw-min must be <= --pw-max")
	}
	if _, err := wordlist.FilterForCharset(cfg.Charset); err != nil {
		return err
	}
	return nil
}

func resolveThreads(n int, logger *zap.Logger) int {
	if n > 0 {
		return n
	}
	n = runtime.GOMAXPROCS(0)
	if n < 1 {
		logger.Warn("could not detect CPU count, using one thread")
		return 1
	}
	return n
}

// loadCatalog reads every source into a new catalog. Unreadable sources are
// logged and skipped. It returns the paths that were loaded.
func loadCatalog(sources []wordlist.Source, charset string, logger *zap.Logger) (*catalog.Catalog, []string, error) {
	keep, err := wordlist.FilterForCharset(charset)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.New()
	add := wordlist.Filtered(cat.AddWord, keep)
	loaded := make([]string, 0, len(sources))
	for _, src := range sources {
		n, err := wordlist.LoadFile(src, add)
		if err != nil {
			logger.Warn("skipping wordlist", zap.String("path", src.Path), zap.Error(err))
			continue
		}
		logger.Debug("loaded wordlist",
			zap.String("path", src.Path),
			zap.Stringer("format", src.Format),
			zap.Uint64("cap", src.DefaultCap),
			zap.Int("words", n),
		)
		loaded = append(loaded, src.Path)
	}
	cat.Finalize()
	return cat, loaded, nil
}

// openOutput returns the candidate writer and a function that flushes and
// closes it. An empty path or "-" selects stdout.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	w, err := codec.NewWriter(codec.FromPath(path), file)
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to open output encoder: %w", err)
	}
	closeFn := func() error {
		werr := w.Close()
		ferr := file.Close()
		if werr != nil {
			return werr
		}
		return ferr
	}
	return w, closeFn, nil
}

func runGenerate(cmd *cobra.Command, inv *invocation) error {
	cfg, sources, err := resolveConfig(inv)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	logger := newLogger(stderr, cfg.Verbose)
	defer func() {
		// Sync fails on terminals; nothing to report.
		_ = logger.Sync()
	}()

	started := time.Now()
	cat, loaded, err := loadCatalog(sources, cfg.Charset, logger)
	if err != nil {
		return err
	}
	catStats := cat.Stats()
	logger.Debug("catalog ready",
		zap.Int("words", catStats.Words),
		zap.Int("shortest", catStats.Shortest),
		zap.Int("longest", catStats.Longest),
		zap.Int("unlimited", catStats.Unlimited),
	)

	w, closeOutput, err := openOutput(cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	sink := output.NewSink(w)
	threads := resolveThreads(cfg.Threads, logger)
	p := pool.New(threads, pool.WithLogger(logger))

	opts := []dispatch.Option{dispatch.WithLogger(logger)}
	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.New(stderr)
		if reporter.Enabled() {
			opts = append(opts, dispatch.WithProgress(reporter.Update))
		} else {
			logger.Debug("progress bar disabled, stderr is not a terminal")
		}
	}
	d := dispatch.New(cat, p, sink, opts...)
	res := d.Run(cfg.PwMin, cfg.PwMax)
	p.Close()
	if reporter != nil {
		reporter.Finish()
	}

	writeErr := sink.Close()
	if cerr := closeOutput(); cerr != nil && writeErr == nil {
		writeErr = cerr
	}

	if _, perr := fmt.Fprintf(stderr, "Total generated passwords: %d\n", res.Generated); perr != nil {
		// Best-effort summary.
		_ = perr
	}

	run := model.RunStats{
		StartedAt:  started,
		EndedAt:    time.Now(),
		Sources:    loaded,
		PwMin:      cfg.PwMin,
		PwMax:      cfg.PwMax,
		Threads:    threads,
		Words:      cat.Len(),
		Generated:  res.Generated,
		BytesOut:   res.Bytes,
		Output:     outputName(cfg.Output),
		DurationMs: res.Duration.Milliseconds(),
	}
	if writeErr != nil {
		run.Error = writeErr.Error()
	}
	logger.Info("run finished", zap.String("summary", stats.Summary(run)), zap.Int("tasks", res.Tasks))
	if cfg.History {
		recordRun(cmd.Context(), run, res.Levels, logger)
	}

	if writeErr != nil {
		return fmt.Errorf("failed to write candidates: %w", writeErr)
	}
	return nil
}

func outputName(path string) string {
	if path == "" {
		return "-"
	}
	return path
}

func recordRun(ctx context.Context, run model.RunStats, perLevel []uint64, logger *zap.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logger.Warn("failed to open history db", zap.Error(err))
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close history db", zap.Error(cerr))
		}
	}()
	levels := make([]model.LevelStats, 0, len(perLevel))
	for i, n := range perLevel {
		levels = append(levels, model.LevelStats{Words: i + 1, Generated: n})
	}
	id, err := st.InsertRun(ctx, run, levels)
	if err != nil {
		logger.Warn("failed to record run", zap.Error(err))
		return
	}
	logger.Debug("recorded run", zap.String("id", id))
}
