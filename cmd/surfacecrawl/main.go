// Command surfacecrawl runs a single-origin reconnaissance crawl against a
// seed URL and writes its findings to a set of prefixed text files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/reconcrawl/surfacecrawl/internal/config"
	"github.com/reconcrawl/surfacecrawl/internal/crawler"
	"github.com/reconcrawl/surfacecrawl/internal/output"
	"github.com/reconcrawl/surfacecrawl/internal/reconlog"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if os.Args[1] == "version" {
		fmt.Printf("surfacecrawl v%s\n", version)
		return
	}
	if os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage()
		return
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("surfacecrawl", flag.ContinueOnError)
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")

	seed, flags, err := config.ParseFlags(fs, args)
	if err != nil {
		printUsage()
		return err
	}

	cfg, err := config.Build(seed, flags)
	if err != nil {
		return err
	}

	logger := reconlog.New(*logLevel)
	logger.Info().
		Str("seed", cfg.Seed).
		Str("root", cfg.Root).
		Int("threads", cfg.Threads).
		Int("depth", cfg.Depth).
		Str("mode", string(cfg.Mode)).
		Msg("starting crawl")

	fmt.Println(reconlog.Fields(
		"seed", cfg.Seed,
		"root", cfg.Root,
		"threads", fmt.Sprint(cfg.Threads),
		"depth", fmt.Sprint(cfg.Depth),
		"mode", string(cfg.Mode),
	))

	start := time.Now()

	c := crawler.New(cfg, logger)
	snap, err := c.Run(context.Background())
	if err != nil {
		return err
	}

	if err := output.Write(cfg.Prefix, snap); err != nil {
		return err
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("alive", len(snap.Alive)).
		Int("endpoints", len(snap.Endpoints)).
		Int("api_endpoints", len(snap.APIEndpoints)).
		Int("js_files", len(snap.JSFiles)).
		Int("osint_strings", len(snap.OSINT)).
		Msg("crawl complete")

	return nil
}

func printUsage() {
	usage := `
surfacecrawl - Single-Origin Reconnaissance Crawler
====================================================

Usage: surfacecrawl <url> [options]

Options:
  -t, --threads N    number of concurrent workers (default 10)
  -d, --depth D      maximum crawl depth (default 4)
  --timeout S        per-request timeout in seconds (default 12)
  --burp             route through http://127.0.0.1:8080, disable TLS verification
  -o, --prefix NAME  output filename prefix (default "crawl")
  --mode MODE        engine selection: auto, plain, challenge, browser (default auto)
  --config FILE      optional YAML file overlaying the above defaults
  --log-level LEVEL  debug, info, warn, error (default info)

Commands:
  version            show version information
  help               show this help message

Examples:
  surfacecrawl https://example.com -t 20 -d 3 -o example
  surfacecrawl https://example.com --mode browser --timeout 20
`
	fmt.Println(usage)
}
