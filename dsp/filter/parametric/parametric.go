// Package parametric describes the seven-band equalizer layout and turns band
// settings into biquad coefficients.
//
// Band 0 is a low shelf, band 6 a high shelf, bands 1 through 5 are peaking
// filters. [Design] is pure and never panics; it reports problems through its
// error result and leaves the fallback policy to the caller.
package parametric

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/dsp/filter/design"
)

// NumBands is the fixed number of equalizer bands.
const NumBands = 7

// Global parameter limits.
const (
	MinFrequency = 20.0
	MaxFrequency = 20000.0
	MinGain      = -24.0
	MaxGain      = 24.0
	MinQ         = 0.1
	MaxQ         = 10.0

	DefaultGain = 0.0
	DefaultQ    = 1.0
)

// Q multipliers applied when the engine runs the oversampled path.
const (
	ShelfQMultiplier = 0.7
	PeakQMultiplier  = 1.5
)

// maxFrequencyRatio keeps the design frequency strictly below Nyquist.
const maxFrequencyRatio = 0.499

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates.
	ErrInvalidSampleRate = errors.New("parametric: invalid sample rate")
	// ErrUnstable is returned when a design yields non-finite coefficients or
	// poles on or outside the unit circle.
	ErrUnstable = errors.New("parametric: unstable coefficients")
	// ErrBandIndex is returned for band indices outside [0, NumBands).
	ErrBandIndex = errors.New("parametric: band index out of range")
)

// Role is the filter topology of a band.
type Role int

const (
	Peak Role = iota
	LowShelf
	HighShelf
)

func (r Role) String() string {
	switch r {
	case Peak:
		return "peak"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// RoleOf returns the topology of band i.
func RoleOf(i int) Role {
	switch i {
	case 0:
		return LowShelf
	case NumBands - 1:
		return HighShelf
	default:
		return Peak
	}
}

var frequencyRanges = [NumBands][2]float64{
	{20, 80},
	{70, 300},
	{250, 600},
	{500, 2500},
	{2000, 5000},
	{4000, 7000},
	{6000, 20000},
}

// FrequencyRange returns the host-facing frequency range of band i.
func FrequencyRange(i int) (lo, hi float64, err error) {
	if i < 0 || i >= NumBands {
		return 0, 0, fmt.Errorf("%w: %d", ErrBandIndex, i)
	}

	r := frequencyRanges[i]

	return r[0], r[1], nil
}

// Band holds the physical settings of one equalizer band.
type Band struct {
	Frequency float64 // Hz
	Gain      float64 // dB
	Q         float64
}

// DefaultBand returns the neutral setting of band i: centre of its frequency
// range, 0 dB, Q of 1.
func DefaultBand(i int) Band {
	lo, hi, err := FrequencyRange(i)
	if err != nil {
		return Band{Frequency: 1000, Gain: DefaultGain, Q: DefaultQ}
	}

	return Band{Frequency: (lo + hi) / 2, Gain: DefaultGain, Q: DefaultQ}
}

// Sanitize replaces non-finite fields with defaults and clamps every field to
// its global limit.
func (b Band) Sanitize() Band {
	return Band{
		Frequency: core.ClampFinite(b.Frequency, MinFrequency, MaxFrequency, 1000),
		Gain:      core.ClampFinite(b.Gain, MinGain, MaxGain, DefaultGain),
		Q:         core.ClampFinite(b.Q, MinQ, MaxQ, DefaultQ),
	}
}

// QMultiplier returns the Q scale applied to a band of the given role.
func QMultiplier(role Role, zeroLatency bool) float64 {
	if zeroLatency {
		return 1
	}
	if role == Peak {
		return PeakQMultiplier
	}

	return ShelfQMultiplier
}

// Flat returns the neutral section, equal to a 0 dB peak.
func Flat() biquad.Coefficients {
	return biquad.Identity()
}

// Design computes the a0-normalized coefficients for one band.
//
// On an invalid sample rate it returns [Flat] together with
// [ErrInvalidSampleRate]. On an unstable or non-finite result it returns the
// offending coefficients together with [ErrUnstable].
func Design(role Role, b Band, sampleRate float64, zeroLatency bool) (biquad.Coefficients, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Flat(), ErrInvalidSampleRate
	}

	b = b.Sanitize()
	freq := math.Min(b.Frequency, maxFrequencyRatio*sampleRate)
	q := b.Q * QMultiplier(role, zeroLatency)

	var c biquad.Coefficients
	switch role {
	case LowShelf:
		c = design.LowShelf(freq, b.Gain, q, sampleRate)
	case HighShelf:
		c = design.HighShelf(freq, b.Gain, q, sampleRate)
	default:
		c = design.Peak(freq, b.Gain, q, sampleRate)
	}

	if !c.IsStable() {
		return c, fmt.Errorf("%w: %s %.2f Hz %.2f dB Q %.3f at %.0f Hz",
			ErrUnstable, role, freq, b.Gain, q, sampleRate)
	}

	return c, nil
}
