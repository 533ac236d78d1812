package strategy

import (
	"errors"
	"strings"
	"testing"

	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/opponent"
)

func mustProfile(t *testing.T, name string) Profile {
	t.Helper()
	p, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return p
}

// perfect never makes mistakes or bluffs.
func perfect() Profile {
	return Profile{Name: "perfect", Aggression: 0.5, ChallengeFrequency: 0.5, SearchDepth: 9, Simulations: 2000, SuspicionMemory: 10}
}

func TestNimLosingPositionEndToEnd(t *testing.T) {
	heaps := []uint{1, 2, 3}
	sel := NewSelector(mustProfile(t, "expert"), 1)
	d, err := sel.Choose(Situation{Algorithm: NimSum, Heaps: heaps, Legal: HeapActions(heaps)}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	after, err := engine.ApplyNim(heaps, engine.NimMove{Heap: d.Action.Heap, Count: uint(d.Action.Count)})
	if err != nil {
		t.Fatalf("returned move is not legal: %v", err)
	}
	if engine.NimSum(after) == 0 {
		t.Fatalf("from a lost position every move leaves a non-zero nim-sum, got %v", after)
	}
}

func TestNimWinningPosition(t *testing.T) {
	heaps := []uint{3, 4, 5}
	d, err := NewSelector(perfect(), 1).Choose(Situation{Algorithm: NimSum, Heaps: heaps, Legal: HeapActions(heaps)}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	after, _ := engine.ApplyNim(heaps, engine.NimMove{Heap: d.Action.Heap, Count: uint(d.Action.Count)})
	if engine.NimSum(after) != 0 {
		t.Fatalf("expected a zeroing move, got %s leaving %v", d.Action, after)
	}
}

func TestMinimaxDispatch(t *testing.T) {
	b, err := engine.ParseTicTacToe("XXO/OO./X.X")
	if err != nil {
		t.Fatalf("ParseTicTacToe: %v", err)
	}
	d, err := NewSelector(perfect(), 1).Choose(Situation{Algorithm: Minimax, Board: b, Legal: PositionActions(b)}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action != (Action{Kind: Place, Cell: 5}) || d.Score != engine.WinScore {
		t.Fatalf("expected winning placement at 5, got %+v", d)
	}
	if d.Explanation == "" {
		t.Fatalf("expected an explanation")
	}
}

func TestMinimaxLostPositionExplanation(t *testing.T) {
	// X threatens cells 1 and 3; O can only block one.
	b, err := engine.ParseTicTacToe("X.X/.O./X.O")
	if err != nil {
		t.Fatalf("ParseTicTacToe: %v", err)
	}
	d, err := NewSelector(perfect(), 1).Choose(Situation{Algorithm: Minimax, Board: b, Legal: PositionActions(b)}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Score != -engine.WinScore {
		t.Fatalf("O is lost here, got score %d", d.Score)
	}
	if !strings.Contains(d.Explanation, "loses") || strings.Contains(d.Explanation, "longest") {
		t.Fatalf("explanation should state the loss without claiming a delay: %q", d.Explanation)
	}
}

func TestMistakeInjectionStaysLegal(t *testing.T) {
	p := perfect()
	p.MistakeRate = 1
	heaps := []uint{3, 4, 5}
	legal := HeapActions(heaps)
	sel := NewSelector(p, 9)
	seen := map[Action]bool{}
	for i := 0; i < 200; i++ {
		d, err := sel.Choose(Situation{Algorithm: NimSum, Heaps: heaps, Legal: legal}, nil)
		if err != nil {
			t.Fatalf("Choose: %v", err)
		}
		if !d.Mistake {
			t.Fatalf("mistake rate 1 must always inject")
		}
		seen[d.Action] = true
	}
	if len(seen) < len(legal)/2 {
		t.Fatalf("random mistakes should spread over the legal set, saw %d of %d", len(seen), len(legal))
	}
}

func TestChooseGuards(t *testing.T) {
	sel := NewSelector(perfect(), 1)
	if _, err := sel.Choose(Situation{Algorithm: NimSum, Heaps: []uint{1}}, nil); !errors.Is(err, ErrNoLegalActions) {
		t.Fatalf("expected ErrNoLegalActions, got %v", err)
	}
	// The zeroing move (two from heap 0) is not on offer.
	heaps := []uint{3, 4, 5}
	legal := []Action{{Kind: Take, Heap: 0, Count: 1}}
	if _, err := sel.Choose(Situation{Algorithm: NimSum, Heaps: heaps, Legal: legal}, nil); !errors.Is(err, ErrIllegalActionSelected) {
		t.Fatalf("expected ErrIllegalActionSelected, got %v", err)
	}
	if _, err := sel.Choose(Situation{Algorithm: Minimax, Legal: legal}, nil); !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("expected ErrMissingPayload, got %v", err)
	}
}

func TestPokerValueRaise(t *testing.T) {
	spot := &PokerSpot{Hole: engine.MustCards("As", "Ah"), Opponents: 1, Pot: 150, ToCall: 50, BigBlind: 100}
	legal := []Action{{Kind: Fold}, {Kind: Call}, {Kind: Raise, Amount: 200}, {Kind: Raise, Amount: 1000}}
	d, err := NewSelector(perfect(), 3).Choose(Situation{Algorithm: MonteCarlo, Poker: spot, Legal: legal}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Raise {
		t.Fatalf("pocket aces should raise, got %+v", d)
	}
	if d.Equity < 0.8 {
		t.Fatalf("unexpected equity %.3f", d.Equity)
	}
}

func TestPokerFoldsWithoutOdds(t *testing.T) {
	spot := &PokerSpot{
		Hole:      engine.MustCards("7c", "2d"),
		Board:     engine.MustCards("As", "Kh", "Qd", "Js", "9c"),
		Opponents: 1, Pot: 1000, ToCall: 800, BigBlind: 100,
	}
	legal := []Action{{Kind: Fold}, {Kind: Call}}
	d, err := NewSelector(perfect(), 3).Choose(Situation{Algorithm: MonteCarlo, Poker: spot, Legal: legal}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Fold {
		t.Fatalf("seven-high facing a big river bet should fold, got %+v", d)
	}
}

func TestPokerCallsWithOdds(t *testing.T) {
	// Top pair facing a tiny bet.
	spot := &PokerSpot{
		Hole:      engine.MustCards("Ad", "8c"),
		Board:     engine.MustCards("As", "7h", "4d", "2s", "Jc"),
		Opponents: 1, Pot: 1000, ToCall: 100, BigBlind: 100,
	}
	legal := []Action{{Kind: Fold}, {Kind: Call}}
	d, err := NewSelector(perfect(), 3).Choose(Situation{Algorithm: MonteCarlo, Poker: spot, Legal: legal}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Call {
		t.Fatalf("expected a call, got %+v", d)
	}
}

func TestSameSeedSameDecision(t *testing.T) {
	spot := &PokerSpot{Hole: engine.MustCards("Td", "9d"), Board: engine.MustCards("8d", "2c", "Kh"), Opponents: 2, Pot: 300, ToCall: 100, BigBlind: 100}
	legal := []Action{{Kind: Fold}, {Kind: Call}, {Kind: Raise, Amount: 400}}
	p := mustProfile(t, "trickster")
	a, err := NewSelector(p, 11).Choose(Situation{Algorithm: MonteCarlo, Poker: spot, Legal: legal}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	b, err := NewSelector(p, 11).Choose(Situation{Algorithm: MonteCarlo, Poker: spot, Legal: legal}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if a != b {
		t.Fatalf("fixed seed should replay: %+v vs %+v", a, b)
	}
}

func TestChallengeImpossibleClaim(t *testing.T) {
	spot := &ClaimSpot{Hand: []int{9, 9, 9, 4}, Against: &Bid{Rank: 9, Count: 2}}
	legal := []Action{{Kind: Challenge}, {Kind: Accept}}
	d, err := NewSelector(perfect(), 1).Choose(Situation{Algorithm: Hybrid, Claim: spot, Legal: legal}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Challenge {
		t.Fatalf("only one nine is unaccounted for; a claim of two must be challenged, got %+v", d)
	}
}

func TestAcceptFromTrustedOpponent(t *testing.T) {
	m := opponent.NewProfile("honest-hal", 10)
	for i := 0; i < 10; i++ {
		m.Update(opponent.Truthful)
	}
	spot := &ClaimSpot{Hand: []int{2, 3, 5}, Against: &Bid{Rank: 9, Count: 1}}
	legal := []Action{{Kind: Challenge}, {Kind: Accept}}
	d, err := NewSelector(perfect(), 1).Choose(Situation{Algorithm: Hybrid, Claim: spot, Legal: legal}, m)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Accept {
		t.Fatalf("a plausible claim from a truthful opponent should be accepted, got %+v", d)
	}
}

func TestSuspicionFollowsHistory(t *testing.T) {
	m := opponent.NewProfile("liar", 10)
	for i := 0; i < 10; i++ {
		m.Update(opponent.Bluff)
	}
	spot := &ClaimSpot{Hand: []int{9, 2, 3}, Against: &Bid{Rank: 9, Count: 2}}
	legal := []Action{{Kind: Challenge}, {Kind: Accept}}
	d, err := NewSelector(perfect(), 1).Choose(Situation{Algorithm: Hybrid, Claim: spot, Legal: legal}, m)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Challenge {
		t.Fatalf("a habitual bluffer should be challenged, got %+v", d)
	}
}

func TestMakeClaim(t *testing.T) {
	legal := []Action{
		{Kind: Claim, Rank: 5, Count: 1},
		{Kind: Claim, Rank: 5, Count: 2},
		{Kind: Claim, Rank: 5, Count: 1, Bluff: true},
	}
	sit := Situation{Algorithm: Hybrid, Claim: &ClaimSpot{Hand: []int{5, 5, 8}, Target: 5}, Legal: legal}
	d, err := NewSelector(perfect(), 1).Choose(sit, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action != legal[1] {
		t.Fatalf("without bluffing the largest honest claim wins, got %+v", d.Action)
	}

	forced := Situation{Algorithm: Hybrid, Claim: &ClaimSpot{Hand: []int{8}, Target: 5},
		Legal: []Action{{Kind: Claim, Rank: 5, Count: 2, Bluff: true}, {Kind: Claim, Rank: 5, Count: 1, Bluff: true}}}
	d, err = NewSelector(perfect(), 1).Choose(forced, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Count != 1 || !d.Action.Bluff {
		t.Fatalf("a forced bluff should claim as little as possible, got %+v", d.Action)
	}
}

func TestClaimRoundThroughChoose(t *testing.T) {
	// Respond to a bid, then make one with the Claim action kind.
	spot := &ClaimSpot{Hand: []int{7, 7, 7, 7}, Against: &Bid{Rank: 7, Count: 1}}
	d, err := NewSelector(perfect(), 3).Choose(Situation{Algorithm: Hybrid, Claim: spot,
		Legal: []Action{{Kind: Challenge}, {Kind: Accept}}}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action.Kind != Challenge {
		t.Fatalf("all four sevens are in hand; a bid of one seven is a lie, got %+v", d.Action)
	}

	claim := Action{Kind: Claim, Rank: 7, Count: 4}
	d, err = NewSelector(perfect(), 3).Choose(Situation{Algorithm: Hybrid,
		Claim: &ClaimSpot{Hand: []int{7, 7, 7, 7}, Target: 7}, Legal: []Action{claim}}, nil)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if d.Action != claim || d.Action.String() != "claim 4 x rank 7" {
		t.Fatalf("expected the honest claim, got %+v (%s)", d.Action, d.Action)
	}
}

func TestHoldemActions(t *testing.T) {
	h := engine.NewHand("h", engine.Config{SB: 50, BB: 100, StartStack: 1000}, engine.NewDeck(1))
	acts := HoldemActions(h)
	if acts[0].Kind != Fold || acts[1].Kind != Call {
		t.Fatalf("SB facing the blind should fold or call first, got %v", acts)
	}
	last := acts[len(acts)-1]
	if last.Kind != Raise || last.Amount != 1000 {
		t.Fatalf("expected an all-in raise to 1000, got %v", last)
	}
	for _, a := range acts {
		if a.Kind == Raise && a.Amount < 200 {
			t.Fatalf("raise below the minimum: %v", a)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("EXPERT"); err != nil {
		t.Fatalf("lookups should be case-insensitive: %v", err)
	}
	if _, err := r.Get("nobody"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
	if err := r.Merge(Profile{Name: "broken", MistakeRate: 2, SearchDepth: 1, Simulations: 1, SuspicionMemory: 1}); err == nil {
		t.Fatalf("invalid profile merged")
	}
	custom := perfect()
	custom.Name = "Easy"
	if err := r.Merge(custom); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if p, _ := r.Get("easy"); p.MistakeRate != 0 {
		t.Fatalf("override did not replace builtin: %+v", p)
	}
	for _, p := range NewRegistry().All() {
		if err := p.Validate(); err != nil {
			t.Fatalf("builtin %q invalid: %v", p.Name, err)
		}
	}
}
