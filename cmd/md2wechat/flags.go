package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds render pipeline flags.
type renderFlags struct {
	timeout        string
	vault          string
	legacyFallback bool
	raw            bool
}

// convertFlags holds every flag of the convert command.
type convertFlags struct {
	common      commonFlags
	render      renderFlags
	output      string
	glob        string
	workers     int
	version     bool
	printConfig bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and pipeline messages")
}

// addRenderFlags adds render pipeline flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file conversion timeout (e.g., 10s, 1m)")
	fs.StringVar(&f.vault, "vault", "", "directory searched for ![[embeds]] (default: source directory)")
	fs.BoolVar(&f.legacyFallback, "legacy-fallback", false, "use the built-in converter when rendering fails")
	fs.BoolVar(&f.raw, "raw", false, "write HTML before structural cleaning")
}

// parseConvertFlags parses convert flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("md2wechat", flag.ContinueOnError)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output .html file or directory")
	fs.StringVar(&f.glob, "glob", "", "pattern selecting files in an input directory (e.g., posts/**/*.md)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVar(&f.printConfig, "print-config", false, "print the effective configuration as YAML and exit")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
