package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/signal"
)

func ExampleTestSignal_Generate() {
	s := signal.NewTestSignal()
	_ = s.SetSampleRate(1000)
	s.SetFrequency(250)
	s.SetAmplitude(1)
	s.SetEnabled(true)

	left := make([]float64, 4)
	right := make([]float64, 4)
	s.Generate([][]float64{left, right}, 4)

	for _, v := range right {
		fmt.Printf("%.0f ", v)
	}
	fmt.Println()
	// Output: 0 1 0 -1
}
