package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func defaultStreams() streams {
	return streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

// printer writes human output, coloured only when the writer is a terminal.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, color: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (p *printer) Success(format string, args ...any) {
	p.paint(color.FgGreen).Fprint(p.out, "✓ ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Warn(format string, args ...any) {
	p.paint(color.FgYellow).Fprint(p.out, "! ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Error(format string, args ...any) {
	p.paint(color.FgRed, color.Bold).Fprint(p.out, "✗ ")
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Heading(format string, args ...any) {
	p.paint(color.Bold).Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) Faint(text string) string {
	return p.paint(color.Faint).Sprint(text)
}
