package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/buffer"
)

func ExampleNewView() {
	host := [][]float64{{1, 2, 3}, {4, 5, 6}}

	view := buffer.NewView(2)
	if err := view.Attach(host, 0, 3); err != nil {
		panic(err)
	}

	for ch := 0; ch < view.NumChannels(); ch++ {
		samples := view.Channel(ch)
		for i := range samples {
			samples[i] *= 2
		}
	}

	fmt.Println(host)

	// Output:
	// [[2 4 6] [8 10 12]]
}
