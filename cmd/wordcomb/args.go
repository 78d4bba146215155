package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/verte-zerg/wordcomb/internal/wordlist"
)

const (
	defaultPwMin   = 5
	defaultPwMax   = 20
	defaultCap     = 3
	defaultCharset = "any"
)

var errNoWordlists = errors.New("no wordlists given")

// pendingSource is a wordlist argument whose format and cap may still come
// from the config file.
type pendingSource struct {
	path   string
	format *wordlist.Format
	cap    *uint64
}

// switchState carries the per-file switches seen so far.
type switchState struct {
	format *wordlist.Format
	cap    *uint64
}

// invocation is the parsed root command line.
type invocation struct {
	flags      *pflag.FlagSet
	help       bool
	configPath string
	verbose    bool
	threads    int
	pwMin      int
	pwMax      int
	charset    string
	output     string
	progress   bool
	noHistory  bool
	sources    []pendingSource
}

type capSwitch struct {
	state *switchState
	value uint64
}

func (s *capSwitch) String() string { return "false" }
func (s *capSwitch) Type() string   { return "bool" }

func (s *capSwitch) Set(v string) error {
	on, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if on {
		value := s.value
		s.state.cap = &value
	}
	return nil
}

type formatSwitch struct {
	state *switchState
	value wordlist.Format
}

func (s *formatSwitch) String() string { return "false" }
func (s *formatSwitch) Type() string   { return "bool" }

func (s *formatSwitch) Set(v string) error {
	on, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if on {
		value := s.value
		s.state.format = &value
	}
	return nil
}

func newFlagSet(inv *invocation, state *switchState) *pflag.FlagSet {
	fs := pflag.NewFlagSet("wordcomb", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.SortFlags = false

	fs.BoolVarP(&inv.help, "help", "h", false, "show this help")
	fs.BoolVarP(&inv.verbose, "verbose", "v", false, "log every search task")
	fs.IntVar(&inv.threads, "threads", 0, "worker threads (0 = all CPUs)")
	fs.IntVar(&inv.pwMin, "pw-min", defaultPwMin, "minimum candidate length")
	fs.IntVar(&inv.pwMax, "pw-max", defaultPwMax, "maximum candidate length")
	fs.StringVar(&inv.configPath, "config", "", "config file (TOML, or YAML by extension)")
	fs.StringVar(&inv.output, "output", "", "write candidates to a file instead of stdout (.zst/.gz/.lz4 compress)")
	fs.StringVar(&inv.charset, "charset", defaultCharset, "keep only words matching: any, ascii, alnum")
	fs.BoolVar(&inv.progress, "progress", false, "draw a progress bar on a terminal")
	fs.BoolVar(&inv.noHistory, "no-history", false, "do not record this run")

	perFile := []struct {
		value     pflag.Value
		name      string
		shorthand string
		usage     string
	}{
		{&formatSwitch{state: state, value: wordlist.CSV}, "csv", "", "following wordlists are CSV (word,max_count)"},
		{&formatSwitch{state: state, value: wordlist.Text}, "text", "", "following wordlists are plain text"},
		{&capSwitch{state: state, value: 1}, "max1", "1", "following words repeat at most once"},
		{&capSwitch{state: state, value: 2}, "max2", "2", "following words repeat at most twice"},
		{&capSwitch{state: state, value: 3}, "max3", "3", "following words repeat at most three times"},
		{&capSwitch{state: state, value: 0}, "unlimited", "u", "following words repeat without limit"},
	}
	for _, sw := range perFile {
		flag := fs.VarPF(sw.value, sw.name, sw.shorthand, sw.usage)
		flag.NoOptDefVal = "true"
	}
	return fs
}

// parseArgs walks args in order. Switches apply to every wordlist that
// follows them; global flags may appear anywhere.
func parseArgs(args []string) (*invocation, error) {
	inv := &invocation{}
	state := &switchState{}
	fs := newFlagSet(inv, state)
	inv.flags = fs

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return inv, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		inv.sources = append(inv.sources, pendingSource{
			path:   rest[0],
			format: state.format,
			cap:    state.cap,
		})
		rest = rest[1:]
	}
	if inv.help {
		return inv, nil
	}
	if len(inv.sources) == 0 {
		return inv, errNoWordlists
	}
	return inv, nil
}

// resolveSources fills in unset per-file values from the given defaults.
func resolveSources(pending []pendingSource, format wordlist.Format, capValue uint64) []wordlist.Source {
	sources := make([]wordlist.Source, 0, len(pending))
	for _, p := range pending {
		src := wordlist.Source{Path: p.path, Format: format, DefaultCap: capValue}
		if p.format != nil {
			src.Format = *p.format
		}
		if p.cap != nil {
			src.DefaultCap = *p.cap
		}
		sources = append(sources, src)
	}
	return sources
}

func parseFormat(name string) (wordlist.Format, error) {
	switch name {
	case "", "text", "txt":
		return wordlist.Text, nil
	case "csv":
		return wordlist.CSV, nil
	default:
		return wordlist.Text, fmt.Errorf("unknown wordlist format %q", name)
	}
}

func usage(fs *pflag.FlagSet) string {
	return "Usage: wordcomb [options] <wordlist> [[switches] <wordlist> ...]\n" +
		"       wordcomb config\n" +
		"       wordcomb history [--last N] [--levels]\n\n" +
		"Switches apply to the wordlists that follow them.\n\n" +
		fs.FlagUsages()
}
