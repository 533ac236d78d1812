package engine

type Seat string

const (
	SB Seat = "SB"
	BB Seat = "BB"
)

type ActionKind string

const (
	Fold  ActionKind = "fold"
	Check ActionKind = "check"
	Call  ActionKind = "call"
	Raise ActionKind = "raise"
)

type Action struct {
	Seat   Seat       `json:"seat"`
	Kind   ActionKind `json:"action"`
	Amount int        `json:"to,omitempty"`
}

// Card is immutable once dealt. Ranks run 2..14 (Ace=14), suits are one of "cdhs".
type Card struct {
	Rank int
	Suit byte
} // e.g. "As" => rank 14, suit 's'

// Suits lists the four suit symbols in deck order.
const Suits = "cdhs"
