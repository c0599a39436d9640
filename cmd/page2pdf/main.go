package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-page2pdf/internal/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	setMaxProcs(hasVerbose(os.Args[1:]), os.Stderr)

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// setMaxProcs configures GOMAXPROCS, logging the decision only when verbose.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(verbose bool, w io.Writer) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerbose scans raw args for -v/--verbose before any flag parsing.
func hasVerbose(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches to a command and returns the process exit code.
// A leading URL or flag is shorthand for "render".
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch cmd := args[0]; cmd {
	case "render":
		return runRender(ctx, args[1:], env)
	case "doctor":
		return runDoctorCmd(ctx, args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "page2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(args[1:], env)
	default:
		if isRenderShorthand(cmd) {
			return runRender(ctx, args, env)
		}
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

func isRenderShorthand(arg string) bool {
	return strings.HasPrefix(arg, "-") || fileutil.IsURL(arg)
}
