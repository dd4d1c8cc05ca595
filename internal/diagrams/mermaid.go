// Package diagrams renders encoded frames as standalone SVG documents and
// Mermaid flowcharts.
package diagrams

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/topology"
)

// Mermaid renders the frame as a left-to-right Mermaid flowchart. Each layer
// becomes a subgraph; weighted edges carry their colour and width through
// linkStyle directives and output nodes through style directives.
func Mermaid(frame *activation.Frame) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	layers := []struct {
		layer topology.Layer
		title string
	}{
		{topology.LayerInput, "Input"},
		{topology.LayerHidden, "Hidden"},
		{topology.LayerOutput, "Output"},
	}
	for _, l := range layers {
		nodes := nodesOf(frame, l.layer)
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    subgraph %s[\"%s\"]\n", sanitizeID(string(l.layer)), l.title)
		for _, n := range nodes {
			if n.Layer == topology.LayerOutput {
				fmt.Fprintf(&b, "        %s((\"%s<br/>%s\"))\n", sanitizeID(n.ID), escapeMermaid(n.Label), escapeMermaid(n.Percent))
			} else {
				fmt.Fprintf(&b, "        %s(( ))\n", sanitizeID(n.ID))
			}
		}
		b.WriteString("    end\n")
	}

	for _, e := range frame.Edges {
		if e.Probability != nil {
			fmt.Fprintf(&b, "    %s -->|%s| %s\n", sanitizeID(e.From), escapeMermaid(percent(*e.Probability)), sanitizeID(e.To))
		} else {
			fmt.Fprintf(&b, "    %s --- %s\n", sanitizeID(e.From), sanitizeID(e.To))
		}
	}

	for i, e := range frame.Edges {
		fmt.Fprintf(&b, "    linkStyle %d stroke:%s,stroke-width:%spx,opacity:%s\n", i, e.Color, num(e.Width), num(e.Opacity))
	}
	for _, n := range frame.Outputs() {
		fmt.Fprintf(&b, "    style %s fill:%s,stroke:%s,stroke-width:%spx\n", sanitizeID(n.ID), n.FillColor, n.RingColor, num(n.RingWidth))
	}

	return b.String()
}

func nodesOf(frame *activation.Frame, layer topology.Layer) []activation.NodeStyle {
	var out []activation.NodeStyle
	for _, n := range frame.Nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}

// sanitizeID converts a string into a safe mermaid node ID.
func sanitizeID(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		".", "_",
		"-", "_",
		" ", "_",
		"(", "_",
		")", "_",
		"[", "_",
		"]", "_",
		"{", "_",
		"}", "_",
		":", "_",
	)
	return replacer.Replace(s)
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "#", "#35;")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "%", "#37;")
	s = strings.ReplaceAll(s, "(", "#lpar;")
	s = strings.ReplaceAll(s, ")", "#rpar;")
	s = strings.ReplaceAll(s, "[", "#lsqb;")
	s = strings.ReplaceAll(s, "]", "#rsqb;")
	s = strings.ReplaceAll(s, "{", "#lbrace;")
	s = strings.ReplaceAll(s, "}", "#rbrace;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	s = strings.ReplaceAll(s, "|", "#124;")
	return s
}
