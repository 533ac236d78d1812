package strategy

import (
	"fmt"

	"github.com/saint2706/Games-sub001/server/engine"
)

// Kind names the shape of an Action.
type Kind string

const (
	Place     Kind = "place" // board games: Cell is the cell or column
	Take      Kind = "take"  // heap games: remove Count from Heap
	Fold      Kind = "fold"
	Check     Kind = "check"
	Call      Kind = "call"
	Raise     Kind = "raise" // Amount is the raise-to total
	Challenge Kind = "challenge"
	Accept    Kind = "accept"
	Claim     Kind = "claim" // deception games: claim Count cards of Rank, Bluff when false
)

// Action is the caller's move descriptor. The selector only ever returns one
// of the values it was given, unchanged.
type Action struct {
	Kind   Kind `json:"kind"`
	Cell   int  `json:"cell,omitempty"`
	Heap   int  `json:"heap,omitempty"`
	Count  int  `json:"count,omitempty"`
	Amount int  `json:"amount,omitempty"`
	Rank   int  `json:"rank,omitempty"`
	Bluff  bool `json:"bluff,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case Place:
		return fmt.Sprintf("place %d", a.Cell)
	case Take:
		return fmt.Sprintf("take %d from heap %d", a.Count, a.Heap)
	case Raise:
		return fmt.Sprintf("raise to %d", a.Amount)
	case Claim:
		s := fmt.Sprintf("claim %d x rank %d", a.Count, a.Rank)
		if a.Bluff {
			s += " (bluff)"
		}
		return s
	}
	return string(a.Kind)
}

func contains(legal []Action, a Action) bool {
	for _, x := range legal {
		if x == a {
			return true
		}
	}
	return false
}

func firstOf(legal []Action, k Kind) (Action, bool) {
	for _, a := range legal {
		if a.Kind == k {
			return a, true
		}
	}
	return Action{}, false
}

// PositionActions lists a Place action for every legal move of p.
func PositionActions(p engine.Position) []Action {
	moves := p.Moves()
	out := make([]Action, len(moves))
	for i, m := range moves {
		out[i] = Action{Kind: Place, Cell: int(m)}
	}
	return out
}

// HeapActions lists every single-heap reduction.
func HeapActions(heaps []uint) []Action {
	var out []Action
	for _, m := range engine.NimMoves(heaps) {
		out = append(out, Action{Kind: Take, Heap: m.Heap, Count: int(m.Count)})
	}
	return out
}

// HoldemActions lists the actor's options on h, with raises at the minimum,
// two thirds of the pot, the full pot and all-in.
func HoldemActions(h *engine.Hand) []Action {
	var out []Action
	for _, k := range h.Legal() {
		switch k {
		case engine.Fold:
			out = append(out, Action{Kind: Fold})
		case engine.Check:
			out = append(out, Action{Kind: Check})
		case engine.Call:
			out = append(out, Action{Kind: Call})
		case engine.Raise:
			minTo, maxTo := h.RaiseBounds()
			seen := map[int]bool{}
			for _, to := range []int{minTo, h.CurBet + h.ToCall() + 2*h.Pot/3, h.CurBet + h.ToCall() + h.Pot, maxTo} {
				if to < minTo {
					to = minTo
				}
				if to > maxTo {
					to = maxTo
				}
				if !seen[to] {
					seen[to] = true
					out = append(out, Action{Kind: Raise, Amount: to})
				}
			}
		}
	}
	return out
}

// Algorithm tags which decision procedure a Situation needs.
type Algorithm int

const (
	Minimax Algorithm = iota
	MonteCarlo
	NimSum
	Hybrid
)

var algorithmNames = [...]string{"minimax", "montecarlo", "nimsum", "hybrid"}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm is the inverse of String.
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, n := range algorithmNames {
		if n == s {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}

// PokerSpot is the acting player's view of a hold'em decision.
type PokerSpot struct {
	Hole      []engine.Card
	Board     []engine.Card
	Dead      []engine.Card
	Opponents int
	Pot       int // including every bet already made this hand
	ToCall    int
	BigBlind  int
}

// Bid is a deception-game claim of Count cards of Rank.
type Bid struct {
	Rank  int
	Count int
}

// ClaimSpot describes a deception-game decision: either responding to
// Against (challenge or accept) or making a claim of Target.
type ClaimSpot struct {
	Hand       []int // ranks held by the acting player
	CopiesEach int   // copies of each rank in the deck, 4 by default
	Against    *Bid
	Target     int
	PileSize   int // cards the loser of a challenge picks up
}

// Situation is the tagged union handed to Choose. Only the payload matching
// Algorithm is read.
type Situation struct {
	Algorithm Algorithm
	Legal     []Action

	Board engine.Position // Minimax

	Heaps  []uint // NimSum
	Misere bool

	Poker *PokerSpot // MonteCarlo
	Claim *ClaimSpot // Hybrid
}
