// Package design provides the RBJ audio-EQ-cookbook biquad designers used by
// the parametric equalizer: [Peak], [LowShelf] and [HighShelf].
//
// All designers return a0-normalized [biquad.Coefficients]. Invalid input
// (non-positive or non-finite sample rate, a frequency outside (0, Nyquist))
// yields the zero value, which callers detect with [biquad.Coefficients.IsStable]
// or by comparing against the zero value.
package design
