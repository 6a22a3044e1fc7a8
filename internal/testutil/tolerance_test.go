package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1, 2, 3}, []float64{1, 2.5, 2})
	if err != nil {
		t.Fatal(err)
	}
	if d != 1 {
		t.Fatalf("MaxAbsDiff = %v, want 1", d)
	}
	if _, err := MaxAbsDiff([]float64{1}, nil); err == nil {
		t.Fatal("expected length error")
	}
}

func TestErrorFloorDB(t *testing.T) {
	want := []float64{1, -1, 1, -1}
	got := []float64{1.001, -1.001, 1.001, -1.001}

	db, err := ErrorFloorDB(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(db+60) > 1e-6 {
		t.Fatalf("floor = %v dB, want -60", db)
	}

	db, _ = ErrorFloorDB(want, want)
	if !math.IsInf(db, -1) {
		t.Fatalf("identical slices floor = %v, want -Inf", db)
	}
}
