// Package topology lays out the network diagram: a fixed input and hidden
// layer plus one output node per category, joined by dense edges.
package topology

import (
	"fmt"

	"github.com/ziadkadry99/netviz/internal/category"
)

// Layer identifies a column of the diagram.
type Layer string

const (
	LayerInput  Layer = "L1"
	LayerHidden Layer = "L2"
	LayerOutput Layer = "L3"
)

// EdgeKind identifies which pair of layers an edge joins.
type EdgeKind string

const (
	EdgeInputHidden  EdgeKind = "l1-l2"
	EdgeHiddenOutput EdgeKind = "l2-l3"
)

// Node is a positioned circle in the diagram. Output nodes also carry the
// category they were generated from.
type Node struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Layer Layer   `json:"layer"`

	Index      int    `json:"index"`
	CategoryID string `json:"category_id,omitempty"`
	Label      string `json:"label,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Edge joins two nodes. TargetIndex is set only for hidden-to-output edges
// and indexes the probability vector.
type Edge struct {
	ID          string   `json:"id"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Kind        EdgeKind `json:"kind"`
	TargetIndex *int     `json:"target_index"`
}

// Layout holds the geometry constants.
type Layout struct {
	Width      float64
	Height     float64
	InputX     float64
	HiddenX    float64
	OutputX    float64
	FixedCount int
	BaseOffset float64
	RowSpacing float64
}

// DefaultLayout is the 400x300 canvas used by every renderer.
func DefaultLayout() Layout {
	return Layout{
		Width:      400,
		Height:     300,
		InputX:     50,
		HiddenX:    200,
		OutputX:    350,
		FixedCount: 3,
		BaseOffset: 75,
		RowSpacing: 75,
	}
}

// Topology is the full node and edge set for one category list.
type Topology struct {
	Layout Layout `json:"-"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Generate builds the topology for cats using the default layout.
func Generate(cats []category.Category) *Topology {
	return DefaultLayout().Generate(cats)
}

// Generate builds the topology for cats. The result depends only on the
// layout and the category list.
func (l Layout) Generate(cats []category.Category) *Topology {
	input := l.fixedLayer("l1", l.InputX, LayerInput)
	hidden := l.fixedLayer("l2", l.HiddenX, LayerHidden)
	output := l.outputLayer(cats)

	nodes := make([]Node, 0, len(input)+len(hidden)+len(output))
	nodes = append(nodes, input...)
	nodes = append(nodes, hidden...)
	nodes = append(nodes, output...)

	edges := make([]Edge, 0, len(input)*len(hidden)+len(hidden)*len(output))
	for _, from := range input {
		for _, to := range hidden {
			edges = append(edges, Edge{
				ID:   fmt.Sprintf("%s-%s", from.ID, to.ID),
				From: from.ID,
				To:   to.ID,
				Kind: EdgeInputHidden,
			})
		}
	}
	for _, from := range hidden {
		for i, to := range output {
			idx := i
			edges = append(edges, Edge{
				ID:          fmt.Sprintf("%s-%s", from.ID, to.ID),
				From:        from.ID,
				To:          to.ID,
				Kind:        EdgeHiddenOutput,
				TargetIndex: &idx,
			})
		}
	}

	return &Topology{Layout: l, Nodes: nodes, Edges: edges}
}

func (l Layout) fixedLayer(prefix string, x float64, layer Layer) []Node {
	nodes := make([]Node, l.FixedCount)
	for i := range nodes {
		nodes[i] = Node{
			ID:    fmt.Sprintf("%s-%d", prefix, i),
			X:     x,
			Y:     l.BaseOffset + float64(i)*l.RowSpacing,
			Layer: layer,
			Index: i,
		}
	}
	return nodes
}

// outputLayer spreads the output nodes evenly over the canvas height.
func (l Layout) outputLayer(cats []category.Category) []Node {
	if len(cats) == 0 {
		return nil
	}
	spacing := l.Height / float64(len(cats)+1)
	nodes := make([]Node, len(cats))
	for i, c := range cats {
		nodes[i] = Node{
			ID:         fmt.Sprintf("l3-%d", i),
			X:          l.OutputX,
			Y:          spacing * float64(i+1),
			Layer:      LayerOutput,
			Index:      i,
			CategoryID: c.ID,
			Label:      c.Label,
			Color:      c.Color,
		}
	}
	return nodes
}

// Node returns the node with the given id.
func (t *Topology) Node(id string) (Node, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Layer returns the nodes of one layer in index order.
func (t *Topology) Layer(layer Layer) []Node {
	var out []Node
	for _, n := range t.Nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOf returns the edges of one kind in generation order.
func (t *Topology) EdgesOf(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range t.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
