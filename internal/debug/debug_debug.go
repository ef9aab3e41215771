//go:build debug

// Package debug prints traces when built with the debug tag.
package debug

import "log"

func Printf(msg string, args ...any) {
	log.Printf("debug: "+msg, args...)
}

const On = true
