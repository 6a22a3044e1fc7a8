// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for one
// second-order section defined by [Coefficients]. A [Chain] cascades sections
// in a fixed order and allows per-section coefficient hot swaps that keep the
// delay lines intact, which is what a parameter change on a running equalizer
// needs.
//
// Coefficient design lives in dsp/filter/design.
package biquad
