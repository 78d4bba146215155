// Package stats renders run history reports.
package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/verte-zerg/wordcomb/internal/model"
)

const (
	whenLayout      = "2006-01-02 15:04:05"
	maxSourcesWidth = 40
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// RenderOptions controls history output.
type RenderOptions struct {
	Levels     bool
	ForceColor bool
	Location   *time.Location
}

// Rate returns candidates per second for a run.
func Rate(generated uint64, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	return float64(generated) / (float64(durationMs) / 1000.0)
}

// Share returns part as a percentage of total.
func Share(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// Summary formats a one-line description of a run.
func Summary(run model.RunStats) string {
	return fmt.Sprintf("%s candidates, %s written in %s (%s/s)",
		humanize.Comma(int64(run.Generated)),
		humanize.Bytes(uint64(max(run.BytesOut, 0))),
		formatDuration(run.DurationMs),
		humanize.Comma(int64(Rate(run.Generated, run.DurationMs))),
	)
}

// RenderHistory writes runs as a table, oldest first. With opts.Levels each
// run is followed by its per-level breakdown.
func RenderHistory(w io.Writer, runs []model.RunStats, levels map[string][]model.LevelStats, opts RenderOptions) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	useColor := shouldUseColor(w, opts.ForceColor)

	tbl := newTable(
		column{title: "When"},
		column{title: "Sources", max: maxSourcesWidth},
		column{title: "Range"},
		column{title: "Threads", right: true},
		column{title: "Words", right: true},
		column{title: "Generated", right: true},
		column{title: "Output", right: true},
		column{title: "Duration", right: true},
		column{title: "Rate/s", right: true},
		column{title: "Status"},
	)
	for _, run := range runs {
		tbl.addRow(runRow(run, loc)...)
	}
	lines := tbl.lines()

	for i, line := range lines {
		if i == 0 {
			if useColor {
				line = headerStyle.Render(line)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			continue
		}
		run := runs[i-1]
		if useColor && run.Error != "" {
			line = errorStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if !opts.Levels {
			continue
		}
		if err := renderLevels(w, run, levels[run.ID], useColor); err != nil {
			return err
		}
	}
	return nil
}

func renderLevels(w io.Writer, run model.RunStats, levels []model.LevelStats, useColor bool) error {
	if len(levels) == 0 {
		return nil
	}
	tbl := newTable(
		column{title: "Words", right: true},
		column{title: "Generated", right: true},
		column{title: "Share", right: true},
	)
	for _, lv := range levels {
		tbl.addRow(
			strconv.Itoa(lv.Words),
			humanize.Comma(int64(lv.Generated)),
			fmt.Sprintf("%.2f%%", Share(lv.Generated, run.Generated)),
		)
	}
	for _, line := range tbl.lines() {
		line = "    " + line
		if useColor {
			line = mutedStyle.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func runRow(run model.RunStats, loc *time.Location) []string {
	status := "ok"
	if run.Error != "" {
		status = "error: " + run.Error
	}
	return []string{
		run.EndedAt.In(loc).Format(whenLayout),
		formatSources(run.Sources),
		fmt.Sprintf("%d-%d", run.PwMin, run.PwMax),
		strconv.Itoa(run.Threads),
		strconv.Itoa(run.Words),
		humanize.Comma(int64(run.Generated)),
		humanize.Bytes(uint64(max(run.BytesOut, 0))),
		formatDuration(run.DurationMs),
		humanize.Comma(int64(Rate(run.Generated, run.DurationMs))),
		status,
	}
}

func formatSources(sources []string) string {
	if len(sources) == 0 {
		return "-"
	}
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = filepath.Base(src)
	}
	return strings.Join(names, ",")
}

func formatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return d.String()
	}
	return d.Round(10 * time.Millisecond).String()
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
