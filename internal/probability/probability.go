// Package probability builds and cleans the per-category probability vectors
// that drive the output layer.
package probability

import (
	"math"
	"math/rand/v2"

	"github.com/ziadkadry99/netviz/internal/category"
)

// Vector holds one probability per category, index-aligned with the list.
type Vector []float64

// Uniform returns the vector every category starts with: 1/n each.
func Uniform(n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = 1 / float64(n)
	}
	return v
}

// FromMap aligns a label-keyed probability map with cats. Labels missing from
// the map resolve to 0.
func FromMap(m map[string]float64, cats []category.Category) Vector {
	v := make(Vector, len(cats))
	for i, c := range cats {
		v[i] = clamp(m[c.Label])
	}
	return v
}

// Simulate returns n random values normalized to sum to 1.
func Simulate(rng *rand.Rand, n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = rng.Float64()
	}
	return v.Normalize()
}

// At returns entry i, or 0 when the entry is missing or malformed.
func (v Vector) At(i int) float64 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return clamp(v[i])
}

// Sanitize returns a copy with every entry clamped to [0,1]; NaN becomes 0.
func (v Vector) Sanitize() Vector {
	out := make(Vector, len(v))
	for i, p := range v {
		out[i] = clamp(p)
	}
	return out
}

// Normalize returns a sanitized copy scaled to sum to 1. A vector with no
// positive mass is returned sanitized but unscaled.
func (v Vector) Normalize() Vector {
	out := make(Vector, len(v))
	var sum float64
	for i, p := range v {
		if math.IsNaN(p) || p < 0 {
			p = 0
		}
		if math.IsInf(p, 1) {
			p = 1
		}
		out[i] = p
		sum += p
	}
	if sum <= 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Sum returns the total of the sanitized entries.
func (v Vector) Sum() float64 {
	var s float64
	for i := range v {
		s += v.At(i)
	}
	return s
}

// Argmax returns the index of the largest entry, or -1 for an empty vector.
// Ties resolve to the lowest index.
func (v Vector) Argmax() int {
	best := -1
	bestP := -1.0
	for i := range v {
		if p := v.At(i); p > bestP {
			best, bestP = i, p
		}
	}
	return best
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
