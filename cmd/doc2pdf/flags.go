package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all flags for the doc2pdf command.
type cliFlags struct {
	config    string
	engine    string
	directory bool
	output    string
	workers   int
	timeout   string
	refine    bool
	style     string
	noEmail   bool
	noWebhook bool
	logFile   string
	quiet     bool
	verbose   bool
	version   bool
}

// parseFlags parses command-line flags and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("doc2pdf", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.engine, "engine", "", "engine to try first (pandoc, remote-service, chromium)")
	fs.BoolVar(&f.directory, "directory", false, "treat input as a directory and convert every file in it")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers for batch mode (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-engine conversion timeout (e.g. 30s, 2m)")
	fs.BoolVar(&f.refine, "refine", false, "refine academic writing before conversion")
	fs.StringVar(&f.style, "style", "", "journal style for refinement (formal, ieee, acm, springer, elsevier, nature)")
	fs.BoolVar(&f.noEmail, "no-email", false, "skip email distribution")
	fs.BoolVar(&f.noWebhook, "no-webhook", false, "skip webhook trigger")
	fs.StringVar(&f.logFile, "log-file", "", "append JSON log records to this file")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log engine-level detail")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// printUsage writes the command synopsis.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, `usage: doc2pdf [flags] <input>

Converts a LaTeX or Markdown file (or, with --directory, every file in a
directory) to PDF, trying configured engines in priority order and falling
back when one fails.

Flags:
  -c, --config string    config file name or path
      --engine string    engine to try first (pandoc, remote-service, chromium)
      --directory        treat input as a directory
  -o, --output string    output directory
  -w, --workers int      parallel workers for batch mode (0 = auto)
  -t, --timeout string   per-engine conversion timeout (e.g. 30s, 2m)
      --refine           refine academic writing before conversion
      --style string     journal style for refinement (formal, ieee, acm, ...)
      --no-email         skip email distribution
      --no-webhook       skip webhook trigger
      --log-file string  append JSON log records to this file
  -q, --quiet            only log errors
  -v, --verbose          log engine-level detail
      --version          print version and exit`)
}
