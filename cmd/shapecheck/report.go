package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/typeshape/decode"
	"github.com/wippyai/typeshape/wire"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// styles renders report text, plain when color is off.
type styles struct {
	color bool
}

func newStyles(color bool) styles { return styles{color: color} }

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

// status summarizes a check: one line when it passed, one line per error
// when it failed.
func (s styles) status(rep *report, label string) string {
	if rep.failure == nil {
		return s.render(okStyle, "ok") + " " + label + "\n"
	}

	var b strings.Builder
	f := rep.failure
	noun := "errors"
	if len(f.Errors) == 1 {
		noun = "error"
	}
	fmt.Fprintf(&b, "%s %s: %d %s\n", s.render(errorStyle, "invalid"), label, len(f.Errors), noun)
	for _, e := range f.Errors {
		path := decode.Path(e)
		if path == "" {
			path = "."
		}
		fmt.Fprintf(&b, "  %s  %s\n", s.render(pathStyle, path), decode.Message(e))
	}
	return b.String()
}

// details is the full report shown by the interactive viewer.
func (s styles) details(rep *report, label string) string {
	var b strings.Builder
	b.WriteString(s.status(rep, label))
	if len(rep.emitted) > 0 {
		b.WriteString("\n")
		if rep.format == wire.CBOR {
			fmt.Fprintf(&b, "%d bytes of CBOR\n", len(rep.emitted))
		} else {
			b.Write(rep.emitted)
		}
	}
	if rep.metrics != "" {
		b.WriteString("\n")
		b.WriteString(rep.metrics)
	}
	return b.String()
}
