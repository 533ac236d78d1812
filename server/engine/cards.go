package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// FullDeck returns the 52 cards in a fixed order (suit-major, ranks ascending).
func FullDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := 0; s < 4; s++ {
		for rnk := 2; rnk <= 14; rnk++ {
			deck = append(deck, Card{Rank: rnk, Suit: Suits[s]})
		}
	}
	return deck
}

func NewDeck(seed int64) []Card {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	deck := FullDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

func (c Card) String() string {
	ranks := "  23456789TJQKA"
	if c.Rank < 2 || c.Rank > 14 {
		return "??"
	}
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

// Valid reports whether c is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Rank >= 2 && c.Rank <= 14 && strings.IndexByte(Suits, c.Suit) >= 0
}

// Index maps a valid card to 0..51.
func (c Card) Index() int {
	return strings.IndexByte(Suits, c.Suit)*13 + (c.Rank - 2)
}

// ParseCard accepts "As", "Td", "10h" (rank then suit, case-insensitive).
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}
	suit := strings.ToLower(s[len(s)-1:])[0]
	if strings.IndexByte(Suits, suit) < 0 {
		return Card{}, fmt.Errorf("invalid suit: %q", s)
	}
	var rank int
	switch strings.ToUpper(s[:len(s)-1]) {
	case "A":
		rank = 14
	case "K":
		rank = 13
	case "Q":
		rank = 12
	case "J":
		rank = 11
	case "T", "10":
		rank = 10
	default:
		r := s[:len(s)-1]
		if len(r) == 1 && r[0] >= '2' && r[0] <= '9' {
			rank = int(r[0] - '0')
		}
	}
	if rank == 0 {
		return Card{}, fmt.Errorf("invalid rank: %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses every entry, failing on the first bad one.
func ParseCards(ss []string) ([]Card, error) {
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := ParseCard(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustCards is ParseCards for literals in tests and tables.
func MustCards(ss ...string) []Card {
	cs, err := ParseCards(ss)
	if err != nil {
		panic(err)
	}
	return cs
}

func CardsToStrings(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// Remaining returns the deck minus every card in used, preserving FullDeck order.
func Remaining(used ...[]Card) []Card {
	var seen [52]bool
	for _, set := range used {
		for _, c := range set {
			if c.Valid() {
				seen[c.Index()] = true
			}
		}
	}
	out := make([]Card, 0, 52)
	for _, c := range FullDeck() {
		if !seen[c.Index()] {
			out = append(out, c)
		}
	}
	return out
}
