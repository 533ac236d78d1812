package engine

import (
	"errors"
	"testing"
)

func TestNimSum(t *testing.T) {
	if got := NimSum([]uint{3, 4, 5}); got != 2 {
		t.Fatalf("NimSum([3 4 5]) = %d, want 2", got)
	}
	if got := NimSum([]uint{1, 2, 3}); got != 0 {
		t.Fatalf("NimSum([1 2 3]) = %d, want 0", got)
	}
}

func TestOptimalMoveReachesZero(t *testing.T) {
	for _, heaps := range [][]uint{{3, 4, 5}, {1, 5}, {7}, {2, 2, 3}, {10, 6, 9, 1}} {
		m, err := OptimalMove(heaps, false)
		if err != nil {
			t.Fatalf("%v: %v", heaps, err)
		}
		if m.Losing {
			t.Fatalf("%v: winning position reported as losing", heaps)
		}
		after, err := ApplyNim(heaps, m)
		if err != nil {
			t.Fatalf("%v: illegal move %+v: %v", heaps, m, err)
		}
		if NimSum(after) != 0 {
			t.Fatalf("%v: move %+v leaves nim-sum %d", heaps, m, NimSum(after))
		}
	}
}

func TestOptimalMoveAgreesWithBruteForce(t *testing.T) {
	heaps := []uint{3, 4, 5}
	zero := 0
	for _, m := range NimMoves(heaps) {
		after, _ := ApplyNim(heaps, m)
		if NimSum(after) == 0 {
			zero++
		}
	}
	if zero == 0 {
		t.Fatalf("brute force found no zeroing move for %v", heaps)
	}
	m, _ := OptimalMove(heaps, false)
	after, _ := ApplyNim(heaps, m)
	if NimSum(after) != 0 {
		t.Fatalf("OptimalMove %+v does not zero the nim-sum", m)
	}
}

func TestOptimalMoveLosingPosition(t *testing.T) {
	heaps := []uint{1, 1}
	m, err := OptimalMove(heaps, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Losing {
		t.Fatalf("expected losing flag for %v", heaps)
	}
	if _, err := ApplyNim(heaps, m); err != nil {
		t.Fatalf("fallback move must be legal: %v", err)
	}
}

func TestOptimalMoveTerminal(t *testing.T) {
	if _, err := OptimalMove([]uint{0, 0}, false); !errors.Is(err, ErrTerminalPosition) {
		t.Fatalf("expected ErrTerminalPosition, got %v", err)
	}
	if _, err := OptimalMove(nil, true); !errors.Is(err, ErrTerminalPosition) {
		t.Fatalf("expected ErrTerminalPosition, got %v", err)
	}
}

// misereWins solves misère Nim by exhaustive search over three heaps.
func misereWins(heaps []uint) bool {
	memo := map[[3]uint]bool{}
	var win func(h []uint) bool
	win = func(h []uint) bool {
		if allEmpty(h) {
			return true // the opponent took the last object
		}
		key := [3]uint{h[0], h[1], h[2]}
		if v, ok := memo[key]; ok {
			return v
		}
		res := false
		for _, m := range NimMoves(h) {
			after, _ := ApplyNim(h, m)
			if !win(after) {
				res = true
				break
			}
		}
		memo[key] = res
		return res
	}
	return win(heaps)
}

func allEmpty(heaps []uint) bool {
	for _, h := range heaps {
		if h != 0 {
			return false
		}
	}
	return true
}

func TestMisereEndgame(t *testing.T) {
	// Even count of singletons: empty one and leave the opponent an odd count.
	m, err := OptimalMove([]uint{1, 0, 1}, true)
	if err != nil || m.Losing || m.Count != 1 {
		t.Fatalf("unexpected move %+v (err %v)", m, err)
	}
	// Odd count: lost, but still a legal take rather than a pass.
	m, err = OptimalMove([]uint{1, 1, 1}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Losing || m.Count != 1 {
		t.Fatalf("expected forced losing take, got %+v", m)
	}
}

func TestMisereMatchesExhaustiveSearch(t *testing.T) {
	for a := uint(0); a <= 4; a++ {
		for b := uint(0); b <= 4; b++ {
			for c := uint(0); c <= 3; c++ {
				heaps := []uint{a, b, c}
				if allEmpty(heaps) {
					continue
				}
				m, err := OptimalMove(heaps, true)
				if err != nil {
					t.Fatalf("%v: %v", heaps, err)
				}
				after, err := ApplyNim(heaps, m)
				if err != nil {
					t.Fatalf("%v: illegal %+v", heaps, m)
				}
				winning := misereWins(heaps)
				if winning == m.Losing {
					t.Fatalf("%v: losing flag %v but exhaustive says winning=%v", heaps, m.Losing, winning)
				}
				if winning && misereWins(after) {
					t.Fatalf("%v: move %+v hands the opponent a win", heaps, m)
				}
			}
		}
	}
}
