package window

import (
	"math"
	"testing"
)

func TestHannMatchesClosedForm(t *testing.T) {
	const n = 1024
	w := Generate(TypeHann, n)
	for i, v := range w {
		want := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		if math.Abs(v-want) > 1e-15 {
			t.Fatalf("w[%d] = %v, want %v", i, v, want)
		}
	}
	if math.Abs(w[0]) > 1e-15 || math.Abs(w[n-1]) > 1e-15 {
		t.Fatalf("symmetric Hann must be zero at both ends: %v %v", w[0], w[n-1])
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	a := Generate(TypeHann, 16)
	b := Generate(TypeHann, 16, WithPeriodic())
	if a[15] == b[15] {
		t.Fatal("periodic and symmetric forms should differ at the last sample")
	}
	if math.Abs(b[8]-1) > 1e-15 {
		t.Fatalf("periodic Hann peak = %v, want 1 at N/2", b[8])
	}
}

func TestAllTypesFinite(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackmanHarris4Term} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}
			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < -1e-12 || v > 1+1e-12 {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackmanHarris4Term} {
		got, err := ParseType(" " + typ.String() + " ")
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("kaiser"); err == nil {
		t.Fatal("expected error for unknown window")
	}
}

func TestCoherentGainAndENBW(t *testing.T) {
	w := Generate(TypeHann, 4096, WithPeriodic())

	cg, err := CoherentGain(w)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cg-0.5) > 1e-12 {
		t.Fatalf("coherent gain = %v, want 0.5", cg)
	}

	enbw, err := EquivalentNoiseBandwidth(w)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(enbw-1.5) > 1e-9 {
		t.Fatalf("ENBW = %v, want 1.5", enbw)
	}

	if _, err := CoherentGain(nil); err == nil {
		t.Fatal("expected error for empty window")
	}
	if _, err := EquivalentNoiseBandwidth([]float64{0, 0}); err == nil {
		t.Fatal("expected error for zero-sum window")
	}
}

func TestApplyCoefficients(t *testing.T) {
	coeffs := []float64{0, 0.5, 1, 0.5}
	buf := []float64{2, 2, 2, 2}
	if err := ApplyCoefficientsInPlace(buf, coeffs); err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{0, 1, 2, 1} {
		if buf[i] != want {
			t.Fatalf("buf[%d] = %v, want %v", i, buf[i], want)
		}
	}

	dst := make([]float64, 4)
	if err := ApplyCoefficients(dst, []float64{1, 1, 1, 1}, coeffs); err != nil {
		t.Fatal(err)
	}
	if dst[2] != 1 {
		t.Fatalf("dst[2] = %v, want 1", dst[2])
	}
	if err := ApplyCoefficients(dst[:3], buf, coeffs); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestHannRejectsBadSize(t *testing.T) {
	if _, err := Hann(0); err == nil {
		t.Fatal("expected error for zero size")
	}
	if Generate(TypeHann, -1) != nil {
		t.Fatal("expected nil for negative size")
	}
	if w := Generate(TypeHann, 1); len(w) != 1 || w[0] != 0 {
		t.Fatalf("single-point Hann = %v", w)
	}
}
