package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, positional, err := parseConvertFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(ExitSuccess)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	configureMaxProcs(flags.common.verbose, os.Stderr)

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, positional, flags, DefaultEnv())
	stop()
	os.Exit(code)
}

// configureMaxProcs sets GOMAXPROCS from the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(verbose bool, w io.Writer) {
	logger := func(string, ...any) {}
	if verbose {
		logger = func(format string, args ...any) {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logger))
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, positional []string, flags *convertFlags, env *Environment) int {
	if flags.version {
		fmt.Fprintf(env.Stdout, "md2wechat %s\n", Version)
		return ExitSuccess
	}

	warnUnknownEnvVars(env.Stderr, env.Environ())

	if err := runConvert(ctx, positional, flags, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, flags))
		return exitCodeFor(err)
	}
	return ExitSuccess
}
