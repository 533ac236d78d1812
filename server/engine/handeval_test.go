package engine

import (
	"errors"
	"testing"

	poker "github.com/paulhankin/poker"
)

func mustEval(t *testing.T, cards ...string) HandValue {
	t.Helper()
	v, err := Evaluate(MustCards(cards...), 5)
	if err != nil {
		t.Fatalf("Evaluate(%v) returned error: %v", cards, err)
	}
	return v
}

func TestEvaluateCategories(t *testing.T) {
	cases := []struct {
		cards []string
		want  HandRank
	}{
		{[]string{"2h", "5d", "8c", "Js", "Kh"}, HighCard},
		{[]string{"As", "Ah", "5d", "8c", "Kh"}, OnePair},
		{[]string{"As", "Ah", "Kd", "Kc", "5h"}, TwoPair},
		{[]string{"As", "Ah", "Ad", "8c", "Kh"}, ThreeOfAKind},
		{[]string{"5h", "6d", "7c", "8s", "9h"}, Straight},
		{[]string{"Ah", "2d", "3c", "4s", "5h"}, Straight},
		{[]string{"2h", "5h", "8h", "Jh", "Kh"}, Flush},
		{[]string{"As", "Ah", "Ad", "Kc", "Kh"}, FullHouse},
		{[]string{"9s", "9h", "9d", "9c", "2h"}, FourOfAKind},
		{[]string{"5d", "6d", "7d", "8d", "9d"}, StraightFlush},
		{[]string{"Ah", "2h", "3h", "4h", "5h"}, StraightFlush},
	}
	for _, tc := range cases {
		if got := mustEval(t, tc.cards...); got.Rank != tc.want {
			t.Errorf("%v: expected %v, got %v", tc.cards, tc.want, got)
		}
	}
}

func TestEvaluateWheelIsFiveHigh(t *testing.T) {
	wheel := mustEval(t, "Ah", "2d", "3c", "4s", "5h")
	if wheel.Rank != Straight || wheel.Tiebreak[0] != 5 {
		t.Fatalf("expected five-high straight, got %v", wheel)
	}
	six := mustEval(t, "2d", "3c", "4s", "5h", "6c")
	if wheel.Compare(six) >= 0 {
		t.Fatalf("wheel should lose to a six-high straight")
	}
}

func TestEvaluateOrderIndependent(t *testing.T) {
	base := MustCards("Ks", "Kd", "7h", "7c", "2s")
	want, _ := Evaluate(base, 5)
	var permute func(k int)
	n := 0
	permute = func(k int) {
		if k == len(base) {
			n++
			got, err := Evaluate(base, 5)
			if err != nil || got != want {
				t.Fatalf("permutation %v: got %v (err %v), want %v", base, got, err, want)
			}
			return
		}
		for i := k; i < len(base); i++ {
			base[k], base[i] = base[i], base[k]
			permute(k + 1)
			base[k], base[i] = base[i], base[k]
		}
	}
	permute(0)
	if n != 120 {
		t.Fatalf("expected 120 permutations, visited %d", n)
	}
}

func TestRoyalFlushBeatsQuads(t *testing.T) {
	royal := mustEval(t, "As", "Ks", "Qs", "Js", "Ts")
	quads := mustEval(t, "Ah", "Ad", "Ac", "As", "Kd")
	if !royal.Royal() {
		t.Fatalf("expected royal flush, got %v", royal)
	}
	if royal.Compare(quads) <= 0 {
		t.Fatalf("royal flush should outrank four of a kind")
	}
}

func TestEvaluateBestOfSeven(t *testing.T) {
	v, err := Evaluate(MustCards("Ah", "Kh", "2c", "Qh", "Jh", "7d", "Th"), 5)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Royal() {
		t.Fatalf("expected royal flush from seven cards, got %v", v)
	}

	// Flush present alongside a straight: the flush must win.
	v = mustEvalN(t, 5, "9h", "8h", "7c", "6h", "5d", "2h", "Kh")
	if v.Rank != Flush {
		t.Fatalf("expected flush, got %v", v)
	}
}

func mustEvalN(t *testing.T, size int, cards ...string) HandValue {
	t.Helper()
	v, err := Evaluate(MustCards(cards...), size)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return v
}

func TestEvaluateTiebreakers(t *testing.T) {
	a := mustEval(t, "Ks", "Kd", "9h", "7c", "2s")
	b := mustEval(t, "Kh", "Kc", "9d", "6c", "3s")
	if a.Compare(b) <= 0 {
		t.Fatalf("kicker 7 should beat kicker 6: %v vs %v", a, b)
	}
	c := mustEval(t, "Kh", "Kc", "9d", "7s", "2d")
	if a.Compare(c) != 0 {
		t.Fatalf("identical ranks in other suits should tie: %v vs %v", a, c)
	}
	fh1 := mustEval(t, "3s", "3d", "3h", "Ac", "As")
	fh2 := mustEval(t, "4s", "4d", "4h", "2c", "2s")
	if fh1.Compare(fh2) >= 0 {
		t.Fatalf("trips decide a full house first")
	}
}

func TestEvaluateSmallHands(t *testing.T) {
	v := mustEvalN(t, 3, "Qs", "Qd", "4c")
	if v.Rank != OnePair || v.Tiebreak[0] != 12 || v.Tiebreak[1] != 4 {
		t.Fatalf("unexpected three-card value %v", v)
	}
	// No straights below five cards.
	v = mustEvalN(t, 3, "4s", "5d", "6c")
	if v.Rank != HighCard {
		t.Fatalf("expected high card, got %v", v)
	}
}

func TestEvaluateInvalidHandSize(t *testing.T) {
	_, err := Evaluate(MustCards("As", "Kd", "Qc", "Jh"), 5)
	if !errors.Is(err, ErrInvalidHandSize) {
		t.Fatalf("expected ErrInvalidHandSize, got %v", err)
	}
}

func TestEvaluateInvalidCard(t *testing.T) {
	_, err := Evaluate(MustCards("As", "Kd", "Qc", "Jh", "As"), 5)
	if !errors.Is(err, ErrInvalidCard) || errors.Is(err, ErrInvalidHandSize) {
		t.Fatalf("a repeated card should be ErrInvalidCard, got %v", err)
	}
	_, err = Evaluate([]Card{{Rank: 15, Suit: 's'}, {Rank: 2, Suit: 'd'}}, 2)
	if !errors.Is(err, ErrInvalidCard) {
		t.Fatalf("rank 15 should be ErrInvalidCard, got %v", err)
	}
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// Our ordering must agree with paulhankin/poker (higher score wins) on
// random five and seven card hands.
func TestEvaluateAgreesWithLibrary(t *testing.T) {
	for seed := int64(1); seed <= 400; seed++ {
		deck := NewDeck(seed)
		var a5, b5 [5]poker.Card
		var a7, b7 [7]poker.Card
		for i := 0; i < 5; i++ {
			a5[i], b5[i] = toPH(deck[i]), toPH(deck[5+i])
		}
		for i := 0; i < 7; i++ {
			a7[i], b7[i] = toPH(deck[10+i]), toPH(deck[17+i])
		}

		va, _ := Evaluate(deck[0:5], 5)
		vb, _ := Evaluate(deck[5:10], 5)
		if got, want := va.Compare(vb), sign(int(poker.Eval5(&a5))-int(poker.Eval5(&b5))); got != want {
			t.Fatalf("seed %d: %v vs %v compares %d, library says %d", seed, va, vb, got, want)
		}

		va, _ = Evaluate(deck[10:17], 5)
		vb, _ = Evaluate(deck[17:24], 5)
		if got, want := va.Compare(vb), sign(int(poker.Eval7(&a7))-int(poker.Eval7(&b7))); got != want {
			t.Fatalf("seed %d: %v vs %v compares %d, library says %d", seed, va, vb, got, want)
		}
	}
}

func TestDescribeNeverEmpty(t *testing.T) {
	for _, cs := range [][]string{
		{"As", "Ad", "Kc", "Kh", "2s"},
		{"As", "Ad", "Kc", "Kh", "2s", "3d", "9c"},
		{"As", "Ad", "Kc", "Kh", "2s", "3d"},
	} {
		if d := Describe(MustCards(cs...)); d == "" {
			t.Fatalf("Describe(%v) returned empty string", cs)
		}
	}
}

func TestParseCard(t *testing.T) {
	c, err := ParseCard("10h")
	if err != nil || c != (Card{Rank: 10, Suit: 'h'}) {
		t.Fatalf("ParseCard(10h) = %v, %v", c, err)
	}
	if c.String() != "Th" {
		t.Fatalf("unexpected String %q", c.String())
	}
	if _, err := ParseCard("1x"); err == nil {
		t.Fatalf("expected error for bad card")
	}
	if got := len(Remaining(MustCards("As", "Kd"))); got != 50 {
		t.Fatalf("expected 50 remaining cards, got %d", got)
	}
}
