package engine

import "testing"

func stackedDeck(cards ...string) []Card {
	top := MustCards(cards...)
	return append(top, Remaining(top)...)
}

func TestHandCheckdownToShowdown(t *testing.T) {
	// SB gets As Ah, BB gets Kc Kd; board 2c 7d 9s Jh 3c.
	deck := stackedDeck("As", "Ah", "Kc", "Kd", "2c", "7d", "9s", "Jh", "3c")
	h := NewHand("t1", Config{SB: 50, BB: 100, StartStack: 1000}, deck)
	if h.Pot != 150 || h.ToCall() != 50 {
		t.Fatalf("unexpected blinds: pot=%d toCall=%d", h.Pot, h.ToCall())
	}
	if err := h.Apply(Call, 0); err != nil {
		t.Fatalf("SB call: %v", err)
	}
	if h.RoundDone() {
		t.Fatalf("BB still has the option preflop")
	}
	if err := h.Apply(Check, 0); err != nil {
		t.Fatalf("BB check: %v", err)
	}
	for h.Street != "river" || !h.RoundDone() {
		if h.RoundDone() {
			h.NextStreet()
			continue
		}
		if err := h.Apply(Check, 0); err != nil {
			t.Fatalf("%s check: %v", h.Street, err)
		}
	}
	if !h.Done() {
		t.Fatalf("hand should be done on the river")
	}
	if w := h.Showdown(); w != SB {
		t.Fatalf("aces should win, got %q", w)
	}
	netSB, netBB := h.Settle(1000, 1000)
	if netSB != 100 || netBB != -100 {
		t.Fatalf("unexpected settlement %d/%d", netSB, netBB)
	}
}

func TestHandRejectsIllegal(t *testing.T) {
	h := NewHand("t2", Config{SB: 50, BB: 100, StartStack: 1000}, NewDeck(3))
	if err := h.Apply(Check, 0); err == nil {
		t.Fatalf("SB cannot check facing the big blind")
	}
	if err := h.Apply(Raise, 120); err == nil {
		t.Fatalf("raise below the minimum must fail")
	}
	if err := h.Apply(Raise, 300); err != nil {
		t.Fatalf("raise to 300: %v", err)
	}
	if got := h.ToCall(); got != 200 {
		t.Fatalf("BB should face 200, got %d", got)
	}
}

func TestHandAllInRefundsUncalled(t *testing.T) {
	deck := stackedDeck("As", "Ah", "Kc", "Kd", "2c", "7d", "9s", "Jh", "3c")
	h := NewHand("t3", Config{SB: 50, BB: 100, StartStack: 1000}, deck, 1000, 400)
	if err := h.Apply(Raise, 1000); err != nil {
		t.Fatalf("SB shove: %v", err)
	}
	if err := h.Apply(Call, 0); err != nil {
		t.Fatalf("BB call: %v", err)
	}
	if !h.Done() {
		t.Fatalf("both players all-in or matched: hand should be done")
	}
	h.RunOut()
	if h.Pot != 800 {
		t.Fatalf("uncalled 600 should be refunded, pot=%d", h.Pot)
	}
	netSB, netBB := h.Settle(1000, 400)
	if netSB != 400 || netBB != -400 {
		t.Fatalf("unexpected settlement %d/%d", netSB, netBB)
	}
}
