package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-eq/internal/testutil"
)

func TestGoertzelMatchesDFT(t *testing.T) {
	const (
		sr   = 48000.0
		freq = 1000.0
	)
	sig := testutil.DeterministicSine(freq, sr, 1, 1024)

	g, err := NewGoertzel(freq, sr)
	if err != nil {
		t.Fatalf("NewGoertzel: %v", err)
	}
	g.ProcessBlock(sig)

	var dft complex128
	for n, x := range sig {
		dft += complex(x, 0) * cmplx.Exp(complex(0, -2*math.Pi*freq/sr*float64(n)))
	}

	want := cmplx.Abs(dft)
	if math.Abs(g.Magnitude()-want) > 1e-7*want {
		t.Fatalf("magnitude = %v, want %v", g.Magnitude(), want)
	}
}

func TestGoertzelSampleAndBlockAgree(t *testing.T) {
	sig := testutil.DeterministicNoise(5, 1, 300)
	a, _ := NewGoertzel(3000, 44100)
	b, _ := NewGoertzel(3000, 44100)

	a.ProcessBlock(sig)
	for _, x := range sig {
		b.ProcessSample(x)
	}
	if math.Abs(a.Power()-b.Power()) > 1e-9*a.Power() {
		t.Fatalf("block %v vs sample %v", a.Power(), b.Power())
	}
}

func TestGoertzelAmplitude(t *testing.T) {
	// 48 samples per period, 20 periods.
	sig := testutil.DeterministicSine(1000, 48000, 0.5, 960)

	db, err := ToneLevelDB(sig, 1000, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(db-20*math.Log10(0.5)) > 1e-6 {
		t.Fatalf("level = %v dB, want -6.02", db)
	}

	g, _ := NewGoertzel(1000, 48000)
	if g.Amplitude() != 0 {
		t.Fatal("amplitude before input must be 0")
	}
	g.ProcessBlock(sig)
	g.Reset()
	if g.Power() != 0 || g.Amplitude() != 0 {
		t.Fatal("Reset did not clear state")
	}
}

func TestGoertzelInvalid(t *testing.T) {
	for _, tc := range []struct{ f, sr float64 }{
		{1000, 0},
		{1000, math.Inf(1)},
		{-1, 48000},
		{30000, 48000},
		{math.NaN(), 48000},
	} {
		if _, err := NewGoertzel(tc.f, tc.sr); err == nil {
			t.Fatalf("NewGoertzel(%v,%v) should fail", tc.f, tc.sr)
		}
	}
	if _, err := ToneLevelDB(nil, 1000, 0); err == nil {
		t.Fatal("ToneLevelDB should propagate errors")
	}
}

func TestMagnitudeHelpers(t *testing.T) {
	got := Magnitude([]complex128{3 + 4i, -1, 0})
	want := []float64{5, 1, 0}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)

	if Magnitude(nil) != nil {
		t.Fatal("Magnitude(nil) should be nil")
	}

	dst := make([]float64, 2)
	PowerFromParts(dst, []float64{3, 1}, []float64{4, 1})
	testutil.RequireSliceNearlyEqual(t, dst, []float64{25, 2}, 1e-12)
}
