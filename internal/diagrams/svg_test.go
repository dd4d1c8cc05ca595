package diagrams

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/ziadkadry99/netviz/internal/probability"
)

func TestSVG(t *testing.T) {
	frame := testFrame([]string{"cats", "dogs"}, probability.Vector{0.2, 0.8})

	got := SVG(frame)

	if err := xml.Unmarshal([]byte(got), new(struct{})); err != nil {
		t.Fatalf("SVG is not well-formed XML: %v\n%s", err, got)
	}
	if n := strings.Count(got, "<line "); n != 15 {
		t.Errorf("expected 15 lines, got %d", n)
	}
	if n := strings.Count(got, `class="ring"`); n != 2 {
		t.Errorf("expected 2 rings, got %d", n)
	}
	for _, want := range []string{
		`viewBox="0 0 400 300"`,
		`<line id="l1-0-l2-0" x1="50" y1="75" x2="200" y2="75" stroke="#5a5a5a" stroke-width="2" stroke-opacity="0.5"/>`,
		`<line id="l2-0-l3-1" x1="200" y1="75" x2="350" y2="200" stroke="#34C759" stroke-width="5.3" stroke-opacity="0.84"/>`,
		`r="16.4" fill="#34C759" fill-opacity="0.84"`,
		`font-weight="bold" fill="#34C759">dogs</text>`,
		`fill="#3f3f3f">cats</text>`,
		`>80%</text>`,
		`>20%</text>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestSVG_EscapesLabels(t *testing.T) {
	frame := testFrame([]string{`<b>&"x"`}, probability.Vector{1})

	got := SVG(frame)

	if strings.Contains(got, "<b>") {
		t.Errorf("label not escaped:\n%s", got)
	}
	if err := xml.Unmarshal([]byte(got), new(struct{})); err != nil {
		t.Fatalf("SVG is not well-formed XML: %v", err)
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{75, "75"},
		{0.6000000000000001, "0.6"},
		{33.33333, "33.333"},
		{-0.0001, "0"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
