package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/arnodel/flatlog/encoding/json"
	"github.com/arnodel/flatlog/inline"
	"github.com/arnodel/flatlog/internal/format"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves (see error handling at the bottom of main).
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
			os.Exit(2)
		}
	}()

	var colorMode string
	var maxDepth int

	flag.Usage = printUsage
	flag.StringVar(&colorMode, "color", "auto", "colorize output: auto, always, never")
	flag.IntVar(&maxDepth, "max-depth", json.DefaultMaxDepth, "maximum nesting of JSON values to flatten")
	flag.Parse()

	if flag.NArg() > 0 {
		fatalError("unexpected argument %q (input is read from stdin)", flag.Arg(0))
	}
	if maxDepth <= 0 {
		fatalError("invalid -max-depth value: %d (must be positive)", maxDepth)
	}

	var colorizer *format.Colorizer
	switch colorMode {
	case "always":
		colorizer = &format.DefaultColorizer
	case "never":
	case "auto":
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			colorizer = &format.DefaultColorizer
		}
	default:
		fatalError("invalid -color value: %q (use auto, always, or never)", colorMode)
	}

	// Set up stdout for handling colors
	var stdout io.Writer = os.Stdout
	if colorizer != nil {
		stdout = colorable.NewColorableStdout()
	}

	out := bufio.NewWriter(stdout)
	printer := &format.DefaultPrinter{Writer: out, Flusher: out}

	driver := inline.NewDriver(os.Stdin, printer)
	driver.Colorizer = colorizer
	driver.MaxDepth = maxDepth

	err := driver.Run()
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			// stdout is a pipe and something closed it (e.g. 'head' or 'less').
			// In this case we don't want to complain.
			return
		}
		fatalError("flatlog: %s", err)
	}
}

func fatalError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `flatlog - flatten JSON embedded in text lines

USAGE:
  flatlog [options] < input

DESCRIPTION:
  flatlog copies its input to its output line by line.  When a line contains
  a '{' followed by a valid JSON value (which may span several lines), the
  value is printed as one "path: value" line per leaf instead, each path
  prefixed with the text before the '{'.  If text follows the value, it is
  printed on a summary line where the value is replaced with {…}.

  Output is flushed after each line or flattened value, so flatlog can be used
  with 'tail -f'.

OPTIONS:
  -color MODE       Control color output (default: auto)
                    Modes: auto, always, never
  -max-depth N      Values nested deeper than N are left as they are
                    (default: 512)

EXAMPLE:
  $ echo 'req: {"name":"api","status":200,"tags":["a"]} took 3ms' | flatlog
  req: (name=api).name: api
  req: (name=api).status: 200
  req: (name=api).tags[0]: a
  req: {…} took 3ms
`)
}
