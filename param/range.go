package param

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/core"
)

// Range maps a physical interval onto [0, 1].
//
// With Skew s the mapping is v = ((x-Min)/(Max-Min))^s, so a skew below 1
// gives the lower part of the range more of the normalized travel.
type Range struct {
	Min  float64
	Max  float64
	Skew float64
}

func (r Range) skew() float64 {
	if !(r.Skew > 0) || math.IsInf(r.Skew, 0) {
		return 1
	}

	return r.Skew
}

// Clamp limits x to [Min, Max].
func (r Range) Clamp(x float64) float64 {
	return core.Clamp(x, r.Min, r.Max)
}

// Normalize maps physical x to [0, 1]. Out-of-range values saturate and NaN
// maps to 0.
func (r Range) Normalize(x float64) float64 {
	span := r.Max - r.Min
	if !(span > 0) || math.IsNaN(x) {
		return 0
	}

	v := core.Clamp((x-r.Min)/span, 0, 1)
	if s := r.skew(); s != 1 && v > 0 {
		v = math.Pow(v, s)
	}

	return v
}

// Denormalize maps v in [0, 1] back to the physical range. v is clamped first
// and NaN maps to Min.
func (r Range) Denormalize(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}

	v = core.Clamp(v, 0, 1)
	if s := r.skew(); s != 1 && v > 0 {
		v = math.Exp(math.Log(v) / s)
	}

	return r.Min + (r.Max-r.Min)*v
}
