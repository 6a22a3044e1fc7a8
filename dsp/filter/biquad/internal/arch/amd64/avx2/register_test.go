//go:build amd64 && !purego

package avx2

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/generic"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
)

func TestProcessBlockMatchesGeneric(t *testing.T) {
	c := registry.Coefficients{B0: 1.02, B1: -1.91, B2: 0.89, A1: -1.91, A2: 0.91}
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{0, 1, 3, 4, 5, 17, 256} {
		in := make([]float64, n)
		for i := range in {
			in[i] = rng.Float64()*2 - 1
		}

		want := append([]float64(nil), in...)
		got := append([]float64(nil), in...)

		wd0, wd1 := generic.ProcessBlock(c, 0.1, -0.05, want)
		gd0, gd1 := processBlock(c, 0.1, -0.05, got)

		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("n=%d sample %d: got %v, want %v", n, i, got[i], want[i])
			}
		}
		if gd0 != wd0 || gd1 != wd1 {
			t.Fatalf("n=%d state: got (%v,%v), want (%v,%v)", n, gd0, gd1, wd0, wd1)
		}
	}
}
