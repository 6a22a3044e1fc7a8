package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

func ExampleChain_SetSection() {
	chain := biquad.NewChain([]biquad.Coefficients{biquad.Identity(), biquad.Identity()})

	// Halve the gain of the second section without touching the first.
	_ = chain.SetSection(1, biquad.Coefficients{B0: 0.5})

	fmt.Printf("%.3f\n", chain.ProcessSample(1))
	// Output: 0.500
}
