package main

import (
	"io"
	"os"
)

// Globals carries the output streams so commands can be tested.
type Globals struct {
	Stdout io.Writer
	Stderr io.Writer
}

func defaultGlobals() *Globals {
	return &Globals{Stdout: os.Stdout, Stderr: os.Stderr}
}
