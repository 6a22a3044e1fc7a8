package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eq/dsp/spectrum"
)

func ExampleToneLevelDB() {
	sig := make([]float64, 960)
	for i := range sig {
		sig[i] = 0.25 * math.Sin(2*math.Pi*1000*float64(i)/48000)
	}

	db, _ := spectrum.ToneLevelDB(sig, 1000, 48000)
	fmt.Printf("%.1f dB\n", db)
	// Output: -12.0 dB
}

func ExampleAnalyzer() {
	a, _ := spectrum.NewAnalyzer(spectrum.WithInterval(1))

	sig := make([]float64, spectrum.FFTSize)
	for i := range sig {
		sig[i] = math.Sin(2 * math.Pi * 64 * float64(i) / spectrum.FFTSize)
	}
	a.PushBlock(sig)
	a.EndBlock()

	snap := a.Snapshot()
	peak := 0
	for k, v := range snap.MagnitudesDB {
		if v > snap.MagnitudesDB[peak] {
			peak = k
		}
	}
	fmt.Println("peak bin:", peak, "sequence:", snap.Sequence)
	// Output: peak bin: 64 sequence: 1
}
