package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/resample"
)

func ExampleOversampler() {
	os, err := resample.NewOversampler(2)
	if err != nil {
		panic(err)
	}
	_ = os.InitProcessing(256)

	blk := buffer.New(2, 256)
	up, _ := os.Up(blk)
	// ... process up at twice the rate ...
	_ = os.Down(blk)

	fmt.Println(up.NumSamples(), blk.NumSamples())
	// Output: 512 256
}
