package registry

import (
	"testing"

	"github.com/cwbudde/algo-vecmath/cpu"
)

func TestLookupPrefersHigherPriority(t *testing.T) {
	reg := &OpRegistry{}
	reg.Register(OpEntry{Name: "generic", SIMDLevel: cpu.SIMDNone, Priority: 0})
	reg.Register(OpEntry{Name: "avx2", SIMDLevel: cpu.SIMDAVX2, Priority: 20})

	entry := reg.Lookup(cpu.Features{HasSSE2: true, HasAVX2: true})
	if entry == nil || entry.Name != "avx2" {
		t.Fatalf("expected avx2, got %#v", entry)
	}

	entry = reg.Lookup(cpu.Features{HasSSE2: true})
	if entry == nil || entry.Name != "generic" {
		t.Fatalf("expected generic without AVX2, got %#v", entry)
	}
}

func TestLookupForceGeneric(t *testing.T) {
	reg := &OpRegistry{}
	reg.Register(OpEntry{Name: "avx2", SIMDLevel: cpu.SIMDAVX2, Priority: 20})
	reg.Register(OpEntry{Name: "generic", SIMDLevel: cpu.SIMDNone, Priority: 0})

	entry := reg.Lookup(cpu.Features{HasAVX2: true, ForceGeneric: true})
	if entry == nil || entry.Name != "generic" {
		t.Fatalf("expected generic with ForceGeneric, got %#v", entry)
	}
}

func TestRegisterKeepsOrder(t *testing.T) {
	reg := &OpRegistry{}
	reg.Register(OpEntry{Name: "low", Priority: 1})
	reg.Register(OpEntry{Name: "high", Priority: 5})
	reg.Register(OpEntry{Name: "low2", Priority: 1})

	got := reg.ListEntries()
	want := []string{"high", "low", "low2"}
	if len(got) != len(want) {
		t.Fatalf("entries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Fatalf("entry %d = %q, want %q", i, got[i].Name, want[i])
		}
	}

	reg.Reset()
	if reg.Lookup(cpu.Features{}) != nil {
		t.Fatal("lookup after Reset should return nil")
	}
}
