package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render web pages to PDF or images")
	fmt.Fprintln(w, "  doctor     Check the browser setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'page2pdf help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2pdf render [<url>] -o <file> [flags]")
	fmt.Fprintln(w, "       page2pdf render --url <url> -o <file> [--url <url> -o <file> ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render pages through one headless browser session. The n-th --url is")
	fmt.Fprintln(w, "written to the n-th --output. A failed page does not stop the batch.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -u, --url <url>             Page to render (repeatable)")
	fmt.Fprintln(w, "  -o, --output <path>         Output file (repeatable, paired by order)")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -f, --format <s>            pdf, png, jpeg, webp (default pdf)")
	fmt.Fprintln(w, "      --landscape             Landscape orientation")
	fmt.Fprintln(w, "      --no-margins            Set all margins to 0")
	fmt.Fprintln(w, "      --include-background    Print background graphics")
	fmt.Fprintln(w, "      --paper-width <in>      Paper width in inches")
	fmt.Fprintln(w, "      --paper-height <in>     Paper height in inches")
	fmt.Fprintln(w, "      --page-ranges <s>       Pages to print, e.g. \"1-5, 8\"")
	fmt.Fprintln(w, "      --scale <f>             Rendering scale, clamped to 0.1-2")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "      --chrome-binary <path>  Browser executable (skips detection)")
	fmt.Fprintln(w, "      --chrome-option <flag>  Extra browser flag (repeatable)")
	fmt.Fprintln(w, "      --remote-host <host>    Attach to a running browser, never spawn")
	fmt.Fprintln(w, "      --remote-port <n>       Remote debug port (default 9222)")
	fmt.Fprintln(w, "      --window-size <W,H>     Window size of a spawned browser")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timeouts:")
	fmt.Fprintln(w, "      --connect-timeout <d>   Wait for the debug port (default 30s)")
	fmt.Fprintln(w, "      --job-timeout <d>       Bound one page render (default 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --print-logs            Print progress logs to stderr")
	fmt.Fprintln(w, "      --print-errors          Print warnings and errors (default true)")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Progress logs and per-page timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PAGE2PDF_CONFIG, PAGE2PDF_CHROME_BINARY, PAGE2PDF_CHROME_OPTIONS,")
	fmt.Fprintln(w, "  PAGE2PDF_REMOTE_HOST, PAGE2PDF_REMOTE_PORT, PAGE2PDF_WINDOW_SIZE,")
	fmt.Fprintln(w, "  PAGE2PDF_FORMAT, PAGE2PDF_CONNECT_TIMEOUT, PAGE2PDF_JOB_TIMEOUT,")
	fmt.Fprintln(w, "  PAGE2PDF_PRINT_LOGS, PAGE2PDF_PRINT_ERRORS")
	fmt.Fprintln(w, "  Flags override the environment, which overrides the config file.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2pdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check browser detection, container/CI setup and debug port availability.")
	fmt.Fprintln(w, "The browser settings come from the config file and PAGE2PDF_* variables,")
	fmt.Fprintln(w, "as for render. A configured remote host is probed instead of a local Chrome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config string   Config file name or path")
	fmt.Fprintln(w, "      --json            Machine-readable output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: page2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: page2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
