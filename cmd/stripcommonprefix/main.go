package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnodel/flatlog/stripprefix"
)

func main() {
	// Do not handle SIGPIPE, we'll do it ourselves.
	signal.Ignore(syscall.SIGPIPE)

	if len(os.Args) > 1 {
		fmt.Fprintln(os.Stderr, "usage: stripcommonprefix < input")
		os.Exit(1)
	}

	err := stripprefix.Strip(os.Stdin, os.Stdout)
	if err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return
		}
		fmt.Fprintf(os.Stderr, "stripcommonprefix: %s\n", err)
		os.Exit(1)
	}
}
