// Package smooth provides per-sample parameter ramps that turn stepped
// control values into click-free trajectories.
//
// A [Smoother] is not safe for concurrent use; it belongs to the audio thread.
package smooth

import "math"

// DefaultRampMs is the ramp duration used when none is configured.
const DefaultRampMs = 1.0

// Kind selects the ramp shape.
type Kind int

const (
	// Linear adds a constant increment per sample.
	Linear Kind = iota
	// Multiplicative multiplies by a constant ratio per sample, which is a
	// straight line on a log axis. Suited for frequency and Q.
	Multiplicative
)

func (k Kind) String() string {
	if k == Multiplicative {
		return "multiplicative"
	}

	return "linear"
}

// Smoother ramps from its current value to a target over a fixed number of
// samples. After exactly that many calls to Next the value equals the target.
type Smoother struct {
	kind Kind

	current float64
	target  float64

	steps     int
	countdown int

	increment float64
	ratio     float64
	linearRun bool
}

// New returns a smoother of the given kind with zero steps (no ramping) and
// value v.
func New(kind Kind, v float64) *Smoother {
	s := &Smoother{}
	s.Init(kind, v)

	return s
}

// Init configures kind and value on an existing Smoother value.
func (s *Smoother) Init(kind Kind, v float64) {
	*s = Smoother{kind: kind, current: v, target: v, steps: s.steps}
}

// Reset sets the ramp length from sampleRate and rampMs and snaps the current
// value to the target.
func (s *Smoother) Reset(sampleRate, rampMs float64) {
	steps := 0
	if sampleRate > 0 && rampMs > 0 && !math.IsInf(sampleRate, 0) && !math.IsInf(rampMs, 0) {
		steps = int(math.Floor(sampleRate * rampMs / 1000))
	}

	s.steps = steps
	s.current = s.target
	s.countdown = 0
}

// Steps reports the configured ramp length in samples.
func (s *Smoother) Steps() int {
	return s.steps
}

// SetCurrentAndTarget jumps to v without ramping.
func (s *Smoother) SetCurrentAndTarget(v float64) {
	s.current = v
	s.target = v
	s.countdown = 0
}

// SetTarget starts a new ramp towards v. It does nothing if v equals the
// current target.
func (s *Smoother) SetTarget(v float64) {
	if v == s.target {
		return
	}

	if s.steps <= 0 {
		s.SetCurrentAndTarget(v)
		return
	}

	s.target = v
	s.countdown = s.steps

	s.linearRun = s.kind == Linear || s.current <= 0 || v <= 0
	if s.linearRun {
		s.increment = (v - s.current) / float64(s.steps)
		return
	}

	s.ratio = math.Exp(math.Log(v/s.current) / float64(s.steps))
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	if s.countdown <= 0 {
		return s.target
	}

	s.countdown--
	if s.countdown == 0 {
		s.current = s.target
		return s.current
	}

	if s.linearRun {
		s.current += s.increment
	} else {
		s.current *= s.ratio
	}

	return s.current
}

// Skip advances n samples and returns the resulting value.
func (s *Smoother) Skip(n int) float64 {
	if n <= 0 {
		return s.current
	}

	if n >= s.countdown {
		s.SetCurrentAndTarget(s.target)
		return s.current
	}

	if s.linearRun {
		s.current += s.increment * float64(n)
	} else {
		s.current *= math.Pow(s.ratio, float64(n))
	}
	s.countdown -= n

	return s.current
}

// IsSmoothing reports whether a ramp is in progress.
func (s *Smoother) IsSmoothing() bool {
	return s.countdown > 0
}

// Current returns the most recent value.
func (s *Smoother) Current() float64 {
	if s.countdown <= 0 {
		return s.target
	}

	return s.current
}

// Target returns the ramp destination.
func (s *Smoother) Target() float64 {
	return s.target
}

// Kind returns the ramp shape.
func (s *Smoother) Kind() Kind {
	return s.kind
}
