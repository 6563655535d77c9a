package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// progressLine rewrites a single status line on a terminal and prints one
// line per update otherwise.
type progressLine struct {
	w   io.Writer
	tty bool
}

func newProgressLine(f *os.File) *progressLine {
	return &progressLine{w: f, tty: term.IsTerminal(int(f.Fd()))}
}

// Set shows msg; an empty msg clears the line.
func (p *progressLine) Set(msg string) {
	if !p.tty {
		if msg != "" {
			fmt.Fprintln(p.w, msg)
		}
		return
	}
	fmt.Fprint(p.w, "\r\x1b[2K")
	if msg != "" {
		fmt.Fprint(p.w, msg)
	}
}

func logLevel() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.WarnLevel
}
