package buffer

import (
	"errors"
	"testing"
)

func TestNewOwnedBlock(t *testing.T) {
	b := New(2, 8)
	if b.NumChannels() != 2 || b.NumSamples() != 8 || b.Capacity() != 8 {
		t.Fatalf("got channels=%d samples=%d cap=%d", b.NumChannels(), b.NumSamples(), b.Capacity())
	}

	b.Channel(0)[7] = 1
	b.Channel(1)[0] = 2
	if b.Channel(0)[0] != 0 || b.Channel(1)[7] != 0 {
		t.Fatal("channels share storage")
	}

	if err := b.SetNumSamples(4); err != nil {
		t.Fatalf("SetNumSamples: %v", err)
	}
	if len(b.Channel(1)) != 4 {
		t.Fatalf("len = %d, want 4", len(b.Channel(1)))
	}
	if err := b.SetNumSamples(9); !errors.Is(err, ErrCapacity) {
		t.Fatalf("err = %v, want ErrCapacity", err)
	}
}

func TestAttachView(t *testing.T) {
	left := []float64{1, 2, 3, 4}
	right := []float64{5, 6, 7, 8}
	v := NewView(2)

	if err := v.Attach([][]float64{left, right}, 1, 2); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if v.NumSamples() != 2 || v.NumChannels() != 2 {
		t.Fatalf("got samples=%d channels=%d", v.NumSamples(), v.NumChannels())
	}

	v.Channel(0)[0] = 10
	if left[1] != 10 {
		t.Fatalf("view does not alias source: %v", left)
	}

	if err := v.Attach([][]float64{left, right, left}, 0, 1); !errors.Is(err, ErrChannels) {
		t.Fatalf("err = %v, want ErrChannels", err)
	}
	if err := v.Attach([][]float64{left}, 2, 3); !errors.Is(err, ErrCapacity) {
		t.Fatalf("err = %v, want ErrCapacity", err)
	}
	if err := New(1, 1).Attach([][]float64{left}, 0, 1); err == nil {
		t.Fatal("expected error attaching an owned block")
	}
}

func TestCopyFromAndZero(t *testing.T) {
	src := New(2, 4)
	for ch := 0; ch < 2; ch++ {
		for i := range src.Channel(ch) {
			src.Channel(ch)[i] = float64(ch*10 + i)
		}
	}

	dst := New(1, 3)
	if n := dst.CopyFrom(src); n != 3 {
		t.Fatalf("copied %d, want 3", n)
	}
	if dst.Channel(0)[2] != 2 {
		t.Fatalf("dst = %v", dst.Channel(0))
	}

	src.Zero()
	for ch := 0; ch < 2; ch++ {
		for i, v := range src.Channel(ch) {
			if v != 0 {
				t.Fatalf("src[%d][%d] = %v after Zero", ch, i, v)
			}
		}
	}
}

func TestAttachDoesNotAllocate(t *testing.T) {
	data := [][]float64{make([]float64, 64), make([]float64, 64)}
	v := NewView(2)
	allocs := testing.AllocsPerRun(100, func() {
		_ = v.Attach(data, 16, 32)
	})
	if allocs != 0 {
		t.Fatalf("Attach allocated %.0f times", allocs)
	}
}
