package engine

import "fmt"

// NimMove removes Count objects from heaps[Heap]. Losing is set when the
// position was already lost against perfect play and the move is only a
// legal placeholder.
type NimMove struct {
	Heap   int
	Count  uint
	Losing bool
}

// NimSum is the XOR of all heap sizes.
func NimSum(heaps []uint) uint {
	var x uint
	for _, h := range heaps {
		x ^= h
	}
	return x
}

// OptimalMove picks a perfect-play move for normal (last mover wins) or
// misère (last mover loses) Nim. An all-empty position has no move.
func OptimalMove(heaps []uint, misere bool) (NimMove, error) {
	first := -1
	big, bigAt, ones := 0, -1, 0
	for i, h := range heaps {
		if h > 0 && first < 0 {
			first = i
		}
		switch {
		case h == 1:
			ones++
		case h > 1:
			big++
			bigAt = i
		}
	}
	if first < 0 {
		return NimMove{}, ErrTerminalPosition
	}

	if misere {
		switch big {
		case 0:
			// Only singletons left: leave the opponent an odd count.
			return NimMove{Heap: first, Count: 1, Losing: ones%2 == 1}, nil
		case 1:
			target := uint(1)
			if ones%2 == 1 {
				target = 0
			}
			return NimMove{Heap: bigAt, Count: heaps[bigAt] - target}, nil
		}
	}

	x := NimSum(heaps)
	if x == 0 {
		return NimMove{Heap: first, Count: 1, Losing: true}, nil
	}
	for i, h := range heaps {
		if t := h ^ x; t < h {
			return NimMove{Heap: i, Count: h - t}, nil
		}
	}
	// Unreachable: the heap holding x's top bit always satisfies h^x < h.
	return NimMove{}, fmt.Errorf("no reducing heap for nim-sum %d", x)
}

// NimMoves lists every legal single-heap reduction.
func NimMoves(heaps []uint) []NimMove {
	var out []NimMove
	for i, h := range heaps {
		for c := uint(1); c <= h; c++ {
			out = append(out, NimMove{Heap: i, Count: c})
		}
	}
	return out
}

// ApplyNim returns a new heap slice with m applied; heaps is not modified.
func ApplyNim(heaps []uint, m NimMove) ([]uint, error) {
	if m.Heap < 0 || m.Heap >= len(heaps) || m.Count == 0 || m.Count > heaps[m.Heap] {
		return nil, fmt.Errorf("%w: take %d from heap %d", ErrIllegalMove, m.Count, m.Heap)
	}
	out := append([]uint(nil), heaps...)
	out[m.Heap] -= m.Count
	return out, nil
}
