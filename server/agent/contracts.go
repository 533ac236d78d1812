package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/strategy"
)

var (
	ErrUnknownGame    = errors.New("unknown game")
	ErrBadObservation = errors.New("bad observation")
)

// Observation is the JSON a game engine posts to ask for a decision.
// Only the fields of the named game are read.
type Observation struct {
	MatchID   string            `json:"match_id,omitempty"`
	Opponent  string            `json:"opponent,omitempty"` // key of the adversary's OpponentProfile
	Profile   string            `json:"profile"`
	Game      string            `json:"game"`                // tictactoe|connect4|nim|holdem|claim
	Algorithm string            `json:"algorithm,omitempty"` // overrides the game's default
	Legal     []strategy.Action `json:"legal_actions,omitempty"`

	Board string `json:"board,omitempty"` // tictactoe rows "XXO/OO./X.X"
	Moves string `json:"moves,omitempty"` // connect4 columns played, e.g. "3342"

	Heaps  []uint `json:"heaps,omitempty"`
	Misere bool   `json:"misere,omitempty"`

	HandID     string   `json:"hand_id,omitempty"`
	Street     string   `json:"street,omitempty"`
	HoleCards  []string `json:"hole_cards,omitempty"`
	Community  []string `json:"community,omitempty"`
	Dead       []string `json:"dead,omitempty"`
	Opponents  int      `json:"opponents,omitempty"`
	Pot        int      `json:"pot,omitempty"`
	ToCall     int      `json:"to_call,omitempty"`
	CurBet     int      `json:"cur_bet,omitempty"`
	BigBlind   int      `json:"bb,omitempty"`
	MinRaiseTo int      `json:"min_raise_to,omitempty"`
	MaxRaiseTo int      `json:"max_raise_to,omitempty"`

	Hand       []int `json:"hand,omitempty"` // claim: ranks held
	CopiesEach int   `json:"copies_each,omitempty"`
	ClaimRank  int   `json:"claim_rank,omitempty"`
	ClaimCount int   `json:"claim_count,omitempty"` // >0 means respond to this claim
	Target     int   `json:"target,omitempty"`
	PileSize   int   `json:"pile_size,omitempty"`
}

type ActionOut struct {
	Action      strategy.Action `json:"action"`
	Algorithm   string          `json:"algorithm"`
	Explanation string          `json:"explanation"`
	Mistake     bool            `json:"mistake,omitempty"`
	Equity      float64         `json:"equity,omitempty"`
	Score       int             `json:"score,omitempty"`
}

func NewActionOut(d strategy.Decision) ActionOut {
	return ActionOut{
		Action:      d.Action,
		Algorithm:   d.Algorithm.String(),
		Explanation: d.Explanation,
		Mistake:     d.Mistake,
		Equity:      d.Equity,
		Score:       d.Score,
	}
}

var defaultAlgorithm = map[string]strategy.Algorithm{
	"tictactoe": strategy.Minimax,
	"connect4":  strategy.Minimax,
	"nim":       strategy.NimSum,
	"holdem":    strategy.MonteCarlo,
	"claim":     strategy.Hybrid,
}

// Situation converts o into what the selector consumes. When Legal is empty
// the legal actions are derived from the game state.
func (o Observation) Situation() (strategy.Situation, error) {
	game := strings.ToLower(strings.TrimSpace(o.Game))
	alg, ok := defaultAlgorithm[game]
	if !ok {
		return strategy.Situation{}, fmt.Errorf("%w %q", ErrUnknownGame, o.Game)
	}
	if o.Algorithm != "" {
		a, err := strategy.ParseAlgorithm(strings.ToLower(o.Algorithm))
		if err != nil {
			return strategy.Situation{}, fmt.Errorf("%w: %v", ErrBadObservation, err)
		}
		alg = a
	}
	sit := strategy.Situation{Algorithm: alg, Legal: o.Legal}

	switch game {
	case "tictactoe", "connect4":
		var (
			pos engine.Position
			err error
		)
		if game == "tictactoe" {
			pos, err = engine.ParseTicTacToe(o.Board)
		} else {
			pos, err = engine.ParseConnectFour(o.Moves)
		}
		if err != nil {
			return sit, fmt.Errorf("%w: %v", ErrBadObservation, err)
		}
		sit.Board = pos
		if sit.Legal == nil {
			sit.Legal = strategy.PositionActions(pos)
		}
	case "nim":
		sit.Heaps, sit.Misere = o.Heaps, o.Misere
		if sit.Legal == nil {
			sit.Legal = strategy.HeapActions(o.Heaps)
		}
	case "holdem":
		spot, err := o.pokerSpot()
		if err != nil {
			return sit, err
		}
		sit.Poker = spot
		if sit.Legal == nil {
			sit.Legal = o.holdemActions()
		}
	case "claim":
		spot := &strategy.ClaimSpot{Hand: o.Hand, CopiesEach: o.CopiesEach, Target: o.Target, PileSize: o.PileSize}
		if o.ClaimCount > 0 {
			spot.Against = &strategy.Bid{Rank: o.ClaimRank, Count: o.ClaimCount}
		}
		sit.Claim = spot
		if sit.Legal == nil {
			sit.Legal = claimActions(spot)
		}
	}
	return sit, nil
}

func (o Observation) pokerSpot() (*strategy.PokerSpot, error) {
	hole, err := engine.ParseCards(o.HoleCards)
	if err != nil {
		return nil, fmt.Errorf("%w: hole cards: %v", ErrBadObservation, err)
	}
	board, err := engine.ParseCards(o.Community)
	if err != nil {
		return nil, fmt.Errorf("%w: community: %v", ErrBadObservation, err)
	}
	dead, err := engine.ParseCards(o.Dead)
	if err != nil {
		return nil, fmt.Errorf("%w: dead: %v", ErrBadObservation, err)
	}
	opps := o.Opponents
	if opps < 1 {
		opps = 1
	}
	return &strategy.PokerSpot{Hole: hole, Board: board, Dead: dead, Opponents: opps,
		Pot: o.Pot, ToCall: o.ToCall, BigBlind: o.BigBlind}, nil
}

// holdemActions mirrors strategy.HoldemActions for a table the server does
// not own: raises at the minimum, the pot and all-in.
func (o Observation) holdemActions() []strategy.Action {
	var out []strategy.Action
	if o.ToCall == 0 {
		out = append(out, strategy.Action{Kind: strategy.Check})
	} else {
		out = append(out, strategy.Action{Kind: strategy.Fold}, strategy.Action{Kind: strategy.Call})
	}
	if o.MaxRaiseTo <= 0 || o.MinRaiseTo <= 0 {
		return out
	}
	seen := map[int]bool{}
	for _, to := range []int{o.MinRaiseTo, o.CurBet + o.ToCall + o.Pot, o.MaxRaiseTo} {
		if to < o.MinRaiseTo {
			to = o.MinRaiseTo
		}
		if to > o.MaxRaiseTo {
			to = o.MaxRaiseTo
		}
		if !seen[to] {
			seen[to] = true
			out = append(out, strategy.Action{Kind: strategy.Raise, Amount: to})
		}
	}
	return out
}

// claimActions offers challenge/accept against a claim, otherwise every
// honest count of Target held plus one bluff beyond it.
func claimActions(spot *strategy.ClaimSpot) []strategy.Action {
	if spot.Against != nil {
		return []strategy.Action{{Kind: strategy.Challenge}, {Kind: strategy.Accept}}
	}
	copies := spot.CopiesEach
	if copies <= 0 {
		copies = 4
	}
	held := 0
	for _, r := range spot.Hand {
		if r == spot.Target {
			held++
		}
	}
	var out []strategy.Action
	for n := 1; n <= held; n++ {
		out = append(out, strategy.Action{Kind: strategy.Claim, Rank: spot.Target, Count: n})
	}
	if held < copies {
		out = append(out, strategy.Action{Kind: strategy.Claim, Rank: spot.Target, Count: held + 1, Bluff: true})
	}
	return out
}

// BuildObservation converts a live hold'em table into the observation the
// seat's selector decides from. Legal actions are taken from the table.
func BuildObservation(h *engine.Hand, seat engine.Seat) Observation {
	p := h.Seat(seat)
	minTo, maxTo := h.RaiseBounds()
	return Observation{
		Game:       "holdem",
		HandID:     h.ID,
		Street:     h.Street,
		HoleCards:  engine.CardsToStrings(p.Hole),
		Community:  engine.CardsToStrings(h.Board),
		Opponents:  1,
		Pot:        h.Pot,
		ToCall:     h.ToCall(),
		CurBet:     h.CurBet,
		BigBlind:   h.Cfg.BB,
		MinRaiseTo: minTo,
		MaxRaiseTo: maxTo,
		Legal:      strategy.HoldemActions(h),
	}
}

// Validate checks a returned action against the observation's legal set.
func Validate(sit strategy.Situation, a ActionOut) error {
	for _, la := range sit.Legal {
		if la == a.Action {
			if a.Action.Kind == strategy.Raise && a.Action.Amount <= 0 {
				return fmt.Errorf("raise requires amount")
			}
			return nil
		}
	}
	return fmt.Errorf("illegal action %s (legals: %v)", a.Action, sit.Legal)
}
