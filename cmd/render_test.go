package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/probability"
	"github.com/ziadkadry99/netviz/internal/viz"
)

func testFrame(t *testing.T) *activation.Frame {
	t.Helper()
	store, err := category.NewStore(category.FromLabels([]string{"cats", "dogs"}))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	session := viz.NewSession(store)
	t.Cleanup(session.Close)
	return session.SetProbabilities(probability.Vector{0.2, 0.8})
}

func TestFormatFrame(t *testing.T) {
	frame := testFrame(t)

	tests := []struct {
		format string
		want   string
	}{
		{"svg", "<svg"},
		{"SVG", "<svg"},
		{"mermaid", "graph LR"},
		{"text", "dogs"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := formatFrame(frame, tt.format)
			if err != nil {
				t.Fatalf("formatFrame(%q) error: %v", tt.format, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("formatFrame(%q) missing %q", tt.format, tt.want)
			}
		})
	}
}

func TestFormatFrameJSON(t *testing.T) {
	out, err := formatFrame(testFrame(t), "json")
	if err != nil {
		t.Fatalf("formatFrame() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
}

func TestFormatFrameUnknown(t *testing.T) {
	if _, err := formatFrame(testFrame(t), "png"); err == nil {
		t.Error("expected error for unknown format")
	}
}
