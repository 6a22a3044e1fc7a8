package biquad

import "fmt"

// Chain is an ordered cascade of biquad sections processed in series.
// Section i always runs before section i+1.
type Chain struct {
	sections []Section
}

// NewChain creates a cascade with one section per coefficient set.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs))}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// ProcessSample cascades x through all sections in order.
func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters buf in-place through the full cascade.
// Running each section over the whole block is equivalent to the per-sample
// cascade because sections share no state.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears all section states.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// NumSections returns the number of biquad sections.
func (c *Chain) NumSections() int {
	return len(c.sections)
}

// SetSection replaces the coefficients of section i and keeps its delay line.
// The existing state stays a valid DF2T state for the new coefficients, so
// the output continues without a discontinuity.
func (c *Chain) SetSection(i int, coeffs Coefficients) error {
	if i < 0 || i >= len(c.sections) {
		return fmt.Errorf("biquad: section index %d out of range [0,%d)", i, len(c.sections))
	}

	c.sections[i].Coefficients = coeffs

	return nil
}

// UpdateCoefficients replaces every section's coefficients.
// State is preserved when the section count is unchanged and reset otherwise.
func (c *Chain) UpdateCoefficients(coeffs []Coefficients) {
	if len(coeffs) == len(c.sections) {
		for i := range c.sections {
			c.sections[i].Coefficients = coeffs[i]
		}

		return
	}

	c.sections = make([]Section, len(coeffs))
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}
}

// Section returns a pointer to the i-th section.
func (c *Chain) Section(i int) *Section {
	return &c.sections[i]
}

// State returns a snapshot of all section delay-line states.
func (c *Chain) State() [][2]float64 {
	states := make([][2]float64, len(c.sections))
	for i := range c.sections {
		states[i] = c.sections[i].State()
	}

	return states
}

// SetState restores previously saved section states.
// Extra or missing entries are ignored.
func (c *Chain) SetState(states [][2]float64) {
	for i := range c.sections {
		if i >= len(states) {
			return
		}
		c.sections[i].SetState(states[i])
	}
}
