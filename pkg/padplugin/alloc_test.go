package padplugin

import "testing"

// The arena is package state, so these tests do not run in parallel.

func TestAllocAlignment(t *testing.T) {
	resetAlloc()

	first := Alloc(3)
	second := Alloc(1)

	if first%8 != 0 || second%8 != 0 {
		t.Errorf("allocations not 8-byte aligned: %d, %d", first, second)
	}
	if second <= first {
		t.Errorf("allocations overlap: %d then %d", first, second)
	}
}

func TestResetReclaimsArena(t *testing.T) {
	resetAlloc()
	first := Alloc(16)

	resetAlloc()
	if got := Alloc(16); got != first {
		t.Errorf("allocation after reset = %d, want %d", got, first)
	}
}

func TestPollAllocationsDoNotAccumulate(t *testing.T) {
	// One state encoding per poll. With the per-call reset the arena footprint must stay
	// constant no matter how many polls the host issues.
	resetAlloc()
	base := Alloc(16)

	for i := 0; i < 1_000_000; i++ {
		resetAlloc()
		if ptr := Alloc(16); ptr != base {
			t.Fatalf("allocation moved to %d after %d polls", ptr, i+1)
		}
	}
}
