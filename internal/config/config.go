// Package config assembles the crawler's immutable seed configuration from
// CLI flags and an optional YAML overlay: flag defaults first, file
// overrides on top, validated once.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reconcrawl/surfacecrawl/internal/fetch"
	"github.com/reconcrawl/surfacecrawl/internal/urlcanon"
)

// SeedConfig is the crawl's immutable configuration, derived once at
// startup and never mutated afterward.
type SeedConfig struct {
	Seed     string
	Root     string
	Threads  int
	Depth    int
	Timeout  time.Duration
	Prefix   string
	ProxyURL string
	Mode     fetch.Mode
	// RateLimit is the aggregate requests-per-second the crawl's fetch
	// policy enforces across all workers. Derived from Threads rather than
	// its own flag: two requests per second per worker keeps the crawl
	// busy without hammering the target.
	RateLimit int
}

// fileOverlay is the optional --config YAML document. Any field present
// here overrides the corresponding flag default, but an explicitly-passed
// flag always overrides the file (flags are parsed first; the overlay only
// fills in fields whose flags were not passed on the command line, and a
// zero or empty overlay value is ignored).
type fileOverlay struct {
	Threads int    `yaml:"threads"`
	Depth   int    `yaml:"depth"`
	Timeout int    `yaml:"timeout_seconds"`
	Prefix  string `yaml:"prefix"`
	Proxy   string `yaml:"proxy"`
	Mode    string `yaml:"mode"`
}

// Flags mirrors the CLI surface, parsed independently of os.Args so it can
// be unit-tested with an arbitrary argument slice.
type Flags struct {
	Threads    int
	Depth      int
	TimeoutSec int
	Burp       bool
	Prefix     string
	Mode       string
	ConfigPath string
	Proxy      string // settable only via --config's "proxy" key; --burp is the CLI-level equivalent

	// explicit records which flag names were actually passed on the
	// command line, as opposed to left at their registered defaults. The
	// overlay may only fill fields that were not explicitly set.
	explicit map[string]bool
}

// setExplicitly reports whether any of the given flag names (a flag and its
// short alias) was passed on the command line.
func (f Flags) setExplicitly(names ...string) bool {
	for _, name := range names {
		if f.explicit[name] {
			return true
		}
	}
	return false
}

// ParseFlags parses args (typically os.Args[1:]) into the seed URL and a
// Flags struct.
func ParseFlags(fs *flag.FlagSet, args []string) (seed string, flags Flags, err error) {
	fs.IntVar(&flags.Threads, "t", 10, "number of concurrent workers")
	fs.IntVar(&flags.Threads, "threads", 10, "number of concurrent workers")
	fs.IntVar(&flags.Depth, "d", 4, "maximum crawl depth")
	fs.IntVar(&flags.Depth, "depth", 4, "maximum crawl depth")
	fs.IntVar(&flags.TimeoutSec, "timeout", 12, "per-request timeout in seconds")
	fs.BoolVar(&flags.Burp, "burp", false, "route through http://127.0.0.1:8080 and disable TLS verification")
	fs.StringVar(&flags.Prefix, "o", "crawl", "output filename prefix")
	fs.StringVar(&flags.Prefix, "prefix", "crawl", "output filename prefix")
	fs.StringVar(&flags.Mode, "mode", "auto", "engine selection: auto, plain, challenge, browser")
	fs.StringVar(&flags.ConfigPath, "config", "", "optional YAML config file overlaying these defaults")

	// The documented invocation puts the seed URL first, but flag.Parse
	// stops at the first non-flag argument, so peel a leading seed off
	// before parsing. Flags-first invocations still work via fs.Arg(0).
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		seed = args[0]
		args = args[1:]
	}

	if err := fs.Parse(args); err != nil {
		return "", Flags{}, err
	}

	flags.explicit = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { flags.explicit[f.Name] = true })

	if seed == "" {
		if fs.NArg() < 1 {
			return "", Flags{}, fmt.Errorf("config: missing required positional argument <url>")
		}
		seed = fs.Arg(0)
	}

	return seed, flags, nil
}

// Build resolves Flags (plus an optional YAML overlay) and the seed URL
// into a SeedConfig, deriving root once from the seed.
func Build(seed string, flags Flags) (SeedConfig, error) {
	if flags.ConfigPath != "" {
		overlay, err := loadOverlay(flags.ConfigPath)
		if err != nil {
			return SeedConfig{}, err
		}
		applyOverlay(&flags, overlay)
	}

	mode, ok := parseMode(flags.Mode)
	if !ok {
		return SeedConfig{}, fmt.Errorf("config: unknown --mode %q: must be one of auto, plain, challenge, browser", flags.Mode)
	}

	root, err := urlcanon.RootOf(urlcanon.Clean(seed))
	if err != nil {
		return SeedConfig{}, fmt.Errorf("config: parsing seed URL %q: %w", seed, err)
	}

	cfg := SeedConfig{
		Seed:      seed,
		Root:      root,
		Threads:   flags.Threads,
		Depth:     flags.Depth,
		Timeout:   time.Duration(flags.TimeoutSec) * time.Second,
		Prefix:    flags.Prefix,
		Mode:      mode,
		RateLimit: flags.Threads * 2,
	}

	if flags.Burp {
		cfg.ProxyURL = "http://127.0.0.1:8080"
	} else {
		cfg.ProxyURL = flags.Proxy
	}

	if err := cfg.validate(); err != nil {
		return SeedConfig{}, err
	}

	return cfg, nil
}

func parseMode(s string) (fetch.Mode, bool) {
	switch fetch.Mode(s) {
	case fetch.ModeAuto, fetch.ModePlain, fetch.ModeChallenge, fetch.ModeBrowser:
		return fetch.Mode(s), true
	default:
		return "", false
	}
}

// validate rejects configurations that cannot run; the CLI layer surfaces
// the error with a non-zero exit.
func (c SeedConfig) validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("config: threads must be >= 1, got %d", c.Threads)
	}
	if c.Depth < 0 {
		return fmt.Errorf("config: depth must be >= 0, got %d", c.Depth)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be > 0, got %s", c.Timeout)
	}
	if c.Prefix == "" {
		return fmt.Errorf("config: prefix must not be empty")
	}
	return nil
}

func loadOverlay(path string) (fileOverlay, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileOverlay{}, fmt.Errorf("config: reading file %q: %w", path, err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fileOverlay{}, fmt.Errorf("config: unmarshalling YAML %q: %w", path, err)
	}

	return overlay, nil
}

// applyOverlay fills a Flags field from the overlay when the overlay
// supplies a non-zero value and the flag was not explicitly passed on the
// command line. The file overrides flag defaults; an explicitly-passed
// flag always overrides the file.
func applyOverlay(flags *Flags, overlay fileOverlay) {
	if overlay.Threads != 0 && !flags.setExplicitly("t", "threads") {
		flags.Threads = overlay.Threads
	}
	if overlay.Depth != 0 && !flags.setExplicitly("d", "depth") {
		flags.Depth = overlay.Depth
	}
	if overlay.Timeout != 0 && !flags.setExplicitly("timeout") {
		flags.TimeoutSec = overlay.Timeout
	}
	if overlay.Prefix != "" && !flags.setExplicitly("o", "prefix") {
		flags.Prefix = overlay.Prefix
	}
	if overlay.Proxy != "" {
		flags.Proxy = overlay.Proxy
	}
	if overlay.Mode != "" && !flags.setExplicitly("mode") {
		flags.Mode = overlay.Mode
	}
}
