package engine

import (
	"fmt"
	"strings"
)

// HandRank orders the poker categories from weakest to strongest.
type HandRank int

const (
	HighCard HandRank = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var handRankNames = [...]string{
	"high card", "one pair", "two pair", "three of a kind", "straight",
	"flush", "full house", "four of a kind", "straight flush",
}

func (r HandRank) String() string {
	if r < 0 || int(r) >= len(handRankNames) {
		return fmt.Sprintf("HandRank(%d)", int(r))
	}
	return handRankNames[r]
}

// HandValue totally orders hands: category first, then Tiebreak lexicographically.
// Unused tiebreak slots are zero.
type HandValue struct {
	Rank     HandRank
	Tiebreak [5]int
}

// Compare returns -1, 0 or 1.
func (v HandValue) Compare(o HandValue) int {
	if v.Rank != o.Rank {
		if v.Rank < o.Rank {
			return -1
		}
		return 1
	}
	for i := range v.Tiebreak {
		if v.Tiebreak[i] != o.Tiebreak[i] {
			if v.Tiebreak[i] < o.Tiebreak[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Royal reports an ace-high straight flush.
func (v HandValue) Royal() bool {
	return v.Rank == StraightFlush && v.Tiebreak[0] == 14
}

func (v HandValue) String() string {
	if v.Royal() {
		return "royal flush"
	}
	ranks := "  23456789TJQKA"
	var b strings.Builder
	b.WriteString(v.Rank.String())
	b.WriteString(" (")
	for i, t := range v.Tiebreak {
		if t == 0 {
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(ranks[t])
	}
	b.WriteByte(')')
	return b.String()
}

// Evaluate returns the best size-card hand available in cards. Straights and
// flushes only exist for five-card hands. The result does not depend on input order.
func Evaluate(cards []Card, size int) (HandValue, error) {
	if size < 1 || size > 5 || len(cards) < size {
		return HandValue{}, fmt.Errorf("%w: need %d cards, have %d", ErrInvalidHandSize, size, len(cards))
	}
	var seen [64]bool
	for _, c := range cards {
		if !c.Valid() {
			return HandValue{}, fmt.Errorf("%w: %v", ErrInvalidCard, c)
		}
		if seen[c.Index()] {
			return HandValue{}, fmt.Errorf("%w: %v appears twice", ErrInvalidCard, c)
		}
		seen[c.Index()] = true
	}
	var (
		best  HandValue
		found bool
		idx   [5]int
		sub   [5]Card
	)
	for i := 0; i < size; i++ {
		idx[i] = i
	}
	n := len(cards)
	for {
		for i := 0; i < size; i++ {
			sub[i] = cards[idx[i]]
		}
		v := classify(sub[:size])
		if !found || v.Compare(best) > 0 {
			best, found = v, true
		}
		// next combination in lexicographic order
		i := size - 1
		for i >= 0 && idx[i] == n-size+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < size; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return best, nil
}

func classify(cs []Card) HandValue {
	var counts [15]int
	for _, c := range cs {
		counts[c.Rank]++
	}
	var v HandValue
	var groups [5]int // group sizes aligned with v.Tiebreak
	n := 0
	for cnt := 4; cnt >= 1; cnt-- {
		for r := 14; r >= 2; r-- {
			if counts[r] == cnt {
				v.Tiebreak[n] = r
				groups[n] = cnt
				n++
			}
		}
	}

	switch {
	case groups[0] == 4:
		v.Rank = FourOfAKind
		return v
	case groups[0] == 3 && groups[1] == 2:
		v.Rank = FullHouse
		return v
	case groups[0] == 3:
		v.Rank = ThreeOfAKind
		return v
	case groups[0] == 2 && groups[1] == 2:
		v.Rank = TwoPair
		return v
	case groups[0] == 2:
		v.Rank = OnePair
		return v
	}

	if len(cs) != 5 {
		v.Rank = HighCard
		return v
	}

	flush := true
	for _, c := range cs[1:] {
		if c.Suit != cs[0].Suit {
			flush = false
			break
		}
	}
	high := 0
	switch {
	case v.Tiebreak[0]-v.Tiebreak[4] == 4:
		high = v.Tiebreak[0]
	case v.Tiebreak == [5]int{14, 5, 4, 3, 2}:
		high = 5 // wheel: the ace plays low
	}

	switch {
	case high > 0 && flush:
		return HandValue{Rank: StraightFlush, Tiebreak: [5]int{high}}
	case flush:
		v.Rank = Flush
		return v
	case high > 0:
		return HandValue{Rank: Straight, Tiebreak: [5]int{high}}
	}
	v.Rank = HighCard
	return v
}

// Best5of7 evaluates hole cards plus board; it is the shape the table and judge use.
func Best5of7(hole, board []Card) (HandValue, error) {
	all := make([]Card, 0, len(hole)+len(board))
	all = append(all, hole...)
	all = append(all, board...)
	return Evaluate(all, 5)
}
