package resample

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/internal/testutil"
)

func newTestOversampler(t *testing.T, channels, block int) *Oversampler {
	t.Helper()

	o, err := NewOversampler(channels)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.InitProcessing(block); err != nil {
		t.Fatal(err)
	}

	return o
}

// roundTrip streams src through Up and Down in blocks of size block.
func roundTrip(t *testing.T, o *Oversampler, src []float64, block int) []float64 {
	t.Helper()

	out := make([]float64, 0, len(src))
	blk := buffer.New(1, block)
	for start := 0; start < len(src); start += block {
		n := min(block, len(src)-start)
		_ = blk.SetNumSamples(n)
		copy(blk.Channel(0), src[start:start+n])

		up, err := o.Up(blk)
		if err != nil {
			t.Fatal(err)
		}
		if up.NumSamples() != 2*n {
			t.Fatalf("Up produced %d samples, want %d", up.NumSamples(), 2*n)
		}
		if err := o.Down(blk); err != nil {
			t.Fatal(err)
		}
		out = append(out, blk.Channel(0)...)
	}

	return out
}

func TestRoundTripPreservesSine(t *testing.T) {
	const sr = 48000
	o := newTestOversampler(t, 1, 512)
	src := testutil.DeterministicSine(1000, sr, 0.5, sr/4)
	out := roundTrip(t, o, src, 512)

	settle := 1024
	ratio := testutil.RMS(out[settle:]) / testutil.RMS(src[settle:])
	if db := 20 * math.Log10(ratio); math.Abs(db) > 0.05 {
		t.Fatalf("round-trip level = %v dB, want 0 +- 0.05", db)
	}
}

func TestRoundTripDelayMatchesLatency(t *testing.T) {
	o := newTestOversampler(t, 1, 256)
	src := testutil.DeterministicSine(200, 48000, 1, 4096)
	out := roundTrip(t, o, src, 256)

	// Compare against the input delayed by the reported latency using linear
	// interpolation; at 200 Hz the error is dominated by interpolation.
	d := o.Latency()
	if d < 1 || d > 20 {
		t.Fatalf("latency = %v base samples, implausible", d)
	}
	whole := int(d)
	frac := d - float64(whole)
	var worst float64
	for i := 2048; i < len(out); i++ {
		want := (1-frac)*src[i-whole] + frac*src[i-whole-1]
		worst = math.Max(worst, math.Abs(out[i]-want))
	}
	if worst > 1e-3 {
		t.Fatalf("delayed-input mismatch %v", worst)
	}
}

func TestUpRejectsOversizeBlock(t *testing.T) {
	o := newTestOversampler(t, 2, 64)
	if _, err := o.Up(buffer.New(2, 65)); err == nil {
		t.Fatal("expected error for oversize block")
	}

	blk := buffer.New(2, 32)
	if _, err := o.Up(blk); err != nil {
		t.Fatal(err)
	}
	if err := o.Down(buffer.New(2, 31)); err == nil {
		t.Fatal("expected error for mismatched Down length")
	}
}

func TestUpBeforeInit(t *testing.T) {
	o, err := NewOversampler(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Up(buffer.New(1, 8)); err == nil {
		t.Fatal("expected error before InitProcessing")
	}
	if err := o.Down(buffer.New(1, 8)); err == nil {
		t.Fatal("expected error before InitProcessing")
	}
}

func TestResetClearsHistory(t *testing.T) {
	o := newTestOversampler(t, 1, 16)
	blk := buffer.New(1, 16)
	blk.Channel(0)[0] = 1
	_, _ = o.Up(blk)
	_ = o.Down(blk)

	o.Reset()
	blk.Zero()
	_, _ = o.Up(blk)
	_ = o.Down(blk)
	for i, v := range blk.Channel(0) {
		if v != 0 {
			t.Fatalf("sample %d = %v after Reset with silent input", i, v)
		}
	}
}

func TestOptions(t *testing.T) {
	o, err := NewOversampler(1, WithCoefficients(4), WithTransition(0.1), WithCoefficients(0), WithTransition(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Coefficients()) != 4 {
		t.Fatalf("coefficients = %d, want 4", len(o.Coefficients()))
	}
	att, _ := HalfBandAttenuation(4, 0.1)
	if o.StopbandAttenuation() != att {
		t.Fatalf("attenuation = %v, want %v", o.StopbandAttenuation(), att)
	}
	if _, err := NewOversampler(0); err == nil {
		t.Fatal("expected error for zero channels")
	}
}

func TestProcessingZeroAlloc(t *testing.T) {
	o := newTestOversampler(t, 2, 512)
	blk := buffer.New(2, 512)

	allocs := testing.AllocsPerRun(50, func() {
		_, _ = o.Up(blk)
		_ = o.Down(blk)
	})
	if allocs != 0 {
		t.Fatalf("Up/Down allocated %v times", allocs)
	}
}

func BenchmarkRoundTripStereo512(b *testing.B) {
	o, _ := NewOversampler(2)
	_ = o.InitProcessing(512)
	blk := buffer.New(2, 512)
	copy(blk.Channel(0), testutil.DeterministicSine(440, 48000, 0.5, 512))

	b.ResetTimer()
	for range b.N {
		_, _ = o.Up(blk)
		_ = o.Down(blk)
	}
}
