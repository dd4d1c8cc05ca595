package activation

// Style holds the constants of the visual encoding.
type Style struct {
	NeutralColor   string
	NeutralWidth   float64
	NeutralOpacity float64

	BaseWidth   float64
	WidthGain   float64
	MinWidth    float64
	MaxWidth    float64
	BaseOpacity float64
	OpacityGain float64

	FixedNodeRadius float64

	RingRadius          float64
	ActiveRingWidth     float64
	InactiveRingWidth   float64
	ActiveRingOpacity   float64
	InactiveRingOpacity float64

	BaseRadius      float64
	RadiusGain      float64
	BaseFillOpacity float64
	FillOpacityGain float64

	MutedTextColor string
	LabelOffset    float64
	PercentOffset  float64

	// ActiveFraction of the uniform baseline 1/N a node must exceed.
	ActiveFraction float64
}

// DefaultStyle returns the encoding used by every renderer.
func DefaultStyle() Style {
	return Style{
		NeutralColor:   "#5a5a5a",
		NeutralWidth:   2,
		NeutralOpacity: 0.5,

		BaseWidth:   0.5,
		WidthGain:   6,
		MinWidth:    0.5,
		MaxWidth:    6.5,
		BaseOpacity: 0.2,
		OpacityGain: 0.8,

		FixedNodeRadius: 8,

		RingRadius:          18,
		ActiveRingWidth:     3,
		InactiveRingWidth:   1.5,
		ActiveRingOpacity:   1,
		InactiveRingOpacity: 0.5,

		BaseRadius:      10,
		RadiusGain:      8,
		BaseFillOpacity: 0.2,
		FillOpacityGain: 0.8,

		MutedTextColor: "#3f3f3f",
		LabelOffset:    -25,
		PercentOffset:  30,

		ActiveFraction: 0.5,
	}
}

// Threshold returns the probability an output node must exceed to be
// active when there are n categories. It is 0 for n <= 0.
func (s Style) Threshold(n int) float64 {
	if n <= 0 {
		return 0
	}
	return s.ActiveFraction / float64(n)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
