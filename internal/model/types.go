// Package model defines shared data structures.
package model

import "time"

// Config defines generation settings after flags, environment and config
// file have been merged.
type Config struct {
	Threads    int
	PwMin      int
	PwMax      int
	DefaultCap uint64
	Charset    string
	Output     string
	Verbose    bool
	Progress   bool
	History    bool
}

// HistoryConfig defines filters for the history listing.
type HistoryConfig struct {
	Last   int
	Levels bool
}

// RunStats captures a completed generation run.
type RunStats struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time
	Sources    []string
	PwMin      int
	PwMax      int
	Threads    int
	Words      int
	Generated  uint64
	BytesOut   int64
	Output     string
	DurationMs int64
	Error      string
}

// LevelStats stores the number of candidates generated for one word count.
type LevelStats struct {
	Words     int
	Generated uint64
}
