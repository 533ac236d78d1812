package engine

import (
	poker "github.com/paulhankin/poker"
)

// Convert our engine.Card -> library card.
func toPH(c Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	default:
		s = poker.Spade
	}
	// Our ranks: 2..14 (Ace=14). Library: 1..13 (Ace=1).
	var r poker.Rank
	if c.Rank == 14 {
		r = poker.Rank(1)
	} else {
		r = poker.Rank(c.Rank)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

// Describe names the made hand in cards (e.g. "pair of kings"). It accepts the
// 3, 5 or 7 card shapes the library supports and falls back to our own
// category name for anything else.
func Describe(cards []Card) string {
	switch len(cards) {
	case 3, 5, 7:
		pcs := make([]poker.Card, len(cards))
		for i, c := range cards {
			pcs[i] = toPH(c)
		}
		if d, err := poker.Describe(pcs); err == nil {
			return d
		}
	}
	size := 5
	if len(cards) < size {
		size = len(cards)
	}
	v, err := Evaluate(cards, size)
	if err != nil {
		return ""
	}
	return v.String()
}
