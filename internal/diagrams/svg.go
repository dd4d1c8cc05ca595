package diagrams

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/topology"
)

// SVG renders the frame as a standalone SVG document. Edges are drawn first
// so nodes sit on top of them.
func SVG(frame *activation.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(frame.Width), num(frame.Height), num(frame.Width), num(frame.Height))

	b.WriteString(`  <g class="edges">` + "\n")
	for _, e := range frame.Edges {
		fmt.Fprintf(&b, `    <line id="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`+"\n",
			attr(e.ID), num(e.X1), num(e.Y1), num(e.X2), num(e.Y2), attr(e.Color), num(e.Width), num(e.Opacity))
	}
	b.WriteString("  </g>\n")

	b.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range frame.Nodes {
		if n.Layer != topology.LayerOutput {
			fmt.Fprintf(&b, `    <circle id="%s" cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`+"\n",
				attr(n.ID), num(n.X), num(n.Y), num(n.Radius), attr(n.FillColor), num(n.FillOpacity))
			continue
		}
		writeOutputNode(&b, n)
	}
	b.WriteString("  </g>\n")

	b.WriteString("</svg>\n")
	return b.String()
}

func writeOutputNode(b *strings.Builder, n activation.NodeStyle) {
	fmt.Fprintf(b, `    <g id="%s" class="output">`+"\n", attr(n.ID))
	fmt.Fprintf(b, `      <circle class="ring" cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`+"\n",
		num(n.X), num(n.Y), num(n.RingRadius), attr(n.RingColor), num(n.RingWidth), num(n.RingOpacity))
	fmt.Fprintf(b, `      <circle class="fill" cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`+"\n",
		num(n.X), num(n.Y), num(n.Radius), attr(n.FillColor), num(n.FillOpacity))
	weight := "normal"
	if n.Active {
		weight = "bold"
	}
	fmt.Fprintf(b, `      <text class="label" x="%s" y="%s" text-anchor="middle" font-size="12" font-weight="%s" fill="%s">%s</text>`+"\n",
		num(n.X), num(n.LabelY), weight, attr(n.TextColor), html.EscapeString(n.Label))
	fmt.Fprintf(b, `      <text class="percent" x="%s" y="%s" text-anchor="middle" font-size="11" fill="%s">%s</text>`+"\n",
		num(n.X), num(n.PercentY), attr(n.TextColor), html.EscapeString(n.Percent))
	b.WriteString("    </g>\n")
}

// num formats a coordinate or style value with at most three decimals.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*1000) / 1000
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func percent(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(p*100)))
}

func attr(s string) string {
	return html.EscapeString(s)
}
