// Package activation maps classification probabilities onto the visual
// parameters of the network diagram.
package activation

import (
	"fmt"
	"math"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/probability"
	"github.com/ziadkadry99/netviz/internal/topology"
)

// EdgeStyle is an encoded line segment.
type EdgeStyle struct {
	ID          string            `json:"id"`
	Kind        topology.EdgeKind `json:"kind"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	X1          float64           `json:"x1"`
	Y1          float64           `json:"y1"`
	X2          float64           `json:"x2"`
	Y2          float64           `json:"y2"`
	Color       string            `json:"color"`
	Width       float64           `json:"width"`
	Opacity     float64           `json:"opacity"`
	Probability *float64          `json:"probability,omitempty"`
}

// NodeStyle is an encoded circle. Ring and text fields are only set for
// output nodes.
type NodeStyle struct {
	ID          string         `json:"id"`
	Layer       topology.Layer `json:"layer"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Radius      float64        `json:"radius"`
	FillColor   string         `json:"fill_color"`
	FillOpacity float64        `json:"fill_opacity"`

	CategoryID  string  `json:"category_id,omitempty"`
	Label       string  `json:"label,omitempty"`
	Probability float64 `json:"probability"`
	Active      bool    `json:"active"`
	RingRadius  float64 `json:"ring_radius,omitempty"`
	RingColor   string  `json:"ring_color,omitempty"`
	RingWidth   float64 `json:"ring_width,omitempty"`
	RingOpacity float64 `json:"ring_opacity,omitempty"`
	TextColor   string  `json:"text_color,omitempty"`
	Percent     string  `json:"percent,omitempty"`
	LabelY      float64 `json:"label_y,omitempty"`
	PercentY    float64 `json:"percent_y,omitempty"`
}

// Frame is everything a renderer needs to draw one state of the diagram.
type Frame struct {
	Width         float64            `json:"width"`
	Height        float64            `json:"height"`
	Threshold     float64            `json:"threshold"`
	Predicted     int                `json:"predicted"`
	Probabilities probability.Vector `json:"probabilities"`
	Edges         []EdgeStyle        `json:"edges"`
	Nodes         []NodeStyle        `json:"nodes"`
}

// Encoder applies a Style to topologies.
type Encoder struct {
	Style Style
}

// NewEncoder returns an Encoder using the default style.
func NewEncoder() *Encoder {
	return &Encoder{Style: DefaultStyle()}
}

// Encode computes the frame for topo under probs. Colours are resolved by
// category id against cats, falling back to the colour captured in the
// topology when the id is unknown. Missing or malformed probabilities
// contribute zero.
func (e *Encoder) Encode(topo *topology.Topology, probs probability.Vector, cats []category.Category) *Frame {
	s := e.Style
	outputs := topo.Layer(topology.LayerOutput)
	threshold := s.Threshold(len(outputs))

	colors := make(map[string]string, len(cats))
	for _, c := range cats {
		colors[c.ID] = c.Color
	}
	colorOf := func(n topology.Node) string {
		if c, ok := colors[n.CategoryID]; ok && c != "" {
			return c
		}
		if n.Color != "" {
			return n.Color
		}
		return category.ColorFor(n.Index)
	}

	byID := make(map[string]topology.Node, len(topo.Nodes))
	for _, n := range topo.Nodes {
		byID[n.ID] = n
	}

	frame := &Frame{
		Width:         topo.Layout.Width,
		Height:        topo.Layout.Height,
		Threshold:     threshold,
		Predicted:     -1,
		Probabilities: make(probability.Vector, len(outputs)),
		Edges:         make([]EdgeStyle, 0, len(topo.Edges)),
		Nodes:         make([]NodeStyle, 0, len(topo.Nodes)),
	}
	for i := range outputs {
		frame.Probabilities[i] = probs.At(i)
	}
	if len(outputs) > 0 {
		frame.Predicted = frame.Probabilities.Argmax()
	}

	for _, edge := range topo.Edges {
		from, to := byID[edge.From], byID[edge.To]
		es := EdgeStyle{
			ID:   edge.ID,
			Kind: edge.Kind,
			From: edge.From,
			To:   edge.To,
			X1:   from.X,
			Y1:   from.Y,
			X2:   to.X,
			Y2:   to.Y,
		}
		if edge.TargetIndex == nil {
			es.Color = s.NeutralColor
			es.Width = s.NeutralWidth
			es.Opacity = s.NeutralOpacity
		} else {
			p := probs.At(*edge.TargetIndex)
			es.Color = colorOf(to)
			es.Width = clampRange(s.BaseWidth+p*s.WidthGain, s.MinWidth, s.MaxWidth)
			es.Opacity = clampRange(s.BaseOpacity+p*s.OpacityGain, s.BaseOpacity, 1)
			es.Probability = &p
		}
		frame.Edges = append(frame.Edges, es)
	}

	for _, n := range topo.Nodes {
		if n.Layer != topology.LayerOutput {
			frame.Nodes = append(frame.Nodes, NodeStyle{
				ID:          n.ID,
				Layer:       n.Layer,
				X:           n.X,
				Y:           n.Y,
				Radius:      s.FixedNodeRadius,
				FillColor:   s.NeutralColor,
				FillOpacity: 1,
			})
			continue
		}
		frame.Nodes = append(frame.Nodes, e.outputNode(n, probs.At(n.Index), threshold, colorOf(n)))
	}

	return frame
}

func (e *Encoder) outputNode(n topology.Node, p, threshold float64, color string) NodeStyle {
	s := e.Style
	active := p > threshold
	ns := NodeStyle{
		ID:          n.ID,
		Layer:       n.Layer,
		X:           n.X,
		Y:           n.Y,
		Radius:      s.BaseRadius + p*s.RadiusGain,
		FillColor:   color,
		FillOpacity: clampRange(s.BaseFillOpacity+p*s.FillOpacityGain, s.BaseFillOpacity, 1),
		CategoryID:  n.CategoryID,
		Label:       n.Label,
		Probability: p,
		Active:      active,
		RingRadius:  s.RingRadius,
		RingColor:   color,
		RingWidth:   s.InactiveRingWidth,
		RingOpacity: s.InactiveRingOpacity,
		TextColor:   s.MutedTextColor,
		Percent:     fmt.Sprintf("%d%%", int(math.Round(p*100))),
		LabelY:      n.Y + s.LabelOffset,
		PercentY:    n.Y + s.PercentOffset,
	}
	if active {
		ns.RingWidth = s.ActiveRingWidth
		ns.RingOpacity = s.ActiveRingOpacity
		ns.TextColor = color
	}
	return ns
}

// Outputs returns the output-layer node styles in index order.
func (f *Frame) Outputs() []NodeStyle {
	var out []NodeStyle
	for _, n := range f.Nodes {
		if n.Layer == topology.LayerOutput {
			out = append(out, n)
		}
	}
	return out
}
