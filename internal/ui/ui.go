// Package ui prints frames and results to the terminal.
package ui

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/ziadkadry99/netviz/internal/activation"
)

var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// BarWidth is the number of cells in a full probability bar.
const BarWidth = 20

// StatusIcon returns a status icon string.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// Table writes an aligned table with a dimmed header.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header, sep strings.Builder
	header.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		fmt.Fprintf(&header, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	Subtle.Fprintln(w, strings.TrimRight(header.String(), " "))
	Subtle.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// Probabilities writes one line per output node: an activity marker, the
// label, the percentage and a bar, coloured with the category colour.
// Inactive rows are dimmed.
func Probabilities(w io.Writer, frame *activation.Frame) {
	outputs := frame.Outputs()
	if len(outputs) == 0 {
		Warn.Fprintln(w, "  no categories")
		return
	}

	width := 0
	for _, n := range outputs {
		if len(n.Label) > width {
			width = len(n.Label)
		}
	}

	for _, n := range outputs {
		marker := "○"
		c := Subtle
		if n.Active {
			marker = "●"
			c = HexColor(n.FillColor)
		}
		line := fmt.Sprintf("%s %-*s %4s %s", marker, width, n.Label, n.Percent, Bar(n.Probability))
		fmt.Fprint(w, "  ")
		c.Fprintln(w, line)
	}
}

// Bar renders p as a bar of BarWidth cells.
func Bar(p float64) string {
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	full := int(math.Round(p * BarWidth))
	return strings.Repeat("█", full) + strings.Repeat("░", BarWidth-full)
}

type ansi struct {
	attr    color.Attribute
	r, g, b float64
}

var ansiColors = []ansi{
	{color.FgRed, 205, 49, 49},
	{color.FgGreen, 13, 188, 121},
	{color.FgYellow, 229, 229, 16},
	{color.FgBlue, 36, 114, 200},
	{color.FgMagenta, 188, 63, 188},
	{color.FgCyan, 17, 168, 205},
	{color.FgHiRed, 241, 76, 76},
	{color.FgHiGreen, 35, 209, 139},
	{color.FgHiYellow, 245, 245, 67},
	{color.FgHiBlue, 59, 142, 234},
	{color.FgHiMagenta, 214, 112, 214},
	{color.FgHiCyan, 41, 184, 219},
	{color.FgWhite, 229, 229, 229},
	{color.FgHiBlack, 102, 102, 102},
}

// HexColor returns the terminal colour closest to a "#RRGGBB" value.
// Unparseable input yields the default foreground.
func HexColor(hex string) *color.Color {
	attr, ok := nearestANSI(hex)
	if !ok {
		return color.New(color.Reset)
	}
	return color.New(attr)
}

func nearestANSI(hex string) (color.Attribute, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)

	best := ansiColors[0].attr
	bestDist := math.Inf(1)
	for _, c := range ansiColors {
		d := (r-c.r)*(r-c.r) + (g-c.g)*(g-c.g) + (b-c.b)*(b-c.b)
		if d < bestDist {
			best, bestDist = c.attr, d
		}
	}
	return best, true
}
