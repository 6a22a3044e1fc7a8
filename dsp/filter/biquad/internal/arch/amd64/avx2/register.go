//go:build amd64 && !purego

// Package avx2 registers the unrolled biquad kernel used on AVX2 machines.
package avx2

import (
	"github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "avx2",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: processBlock,
	})
}

// step advances one DF2T sample.
func step(c *registry.Coefficients, x, d0, d1 float64) (y, nd0, nd1 float64) {
	y = c.B0*x + d0
	nd0 = c.B1*x - c.A1*y + d1
	nd1 = c.B2*x - c.A2*y

	return y, nd0, nd1
}

// processBlock runs four samples per iteration so the compiler can keep the
// coefficients and state in registers across the unrolled body.
func processBlock(c registry.Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64) {
	n := len(buf) &^ 3
	for i := 0; i < n; i += 4 {
		blk := buf[i : i+4 : i+4]
		blk[0], d0, d1 = step(&c, blk[0], d0, d1)
		blk[1], d0, d1 = step(&c, blk[1], d0, d1)
		blk[2], d0, d1 = step(&c, blk[2], d0, d1)
		blk[3], d0, d1 = step(&c, blk[3], d0, d1)
	}

	for i := n; i < len(buf); i++ {
		buf[i], d0, d1 = step(&c, buf[i], d0, d1)
	}

	return d0, d1
}
