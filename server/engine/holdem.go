package engine

import "fmt"

type Config struct{ SB, BB, StartStack int }

type Player struct {
	Seat      Seat
	Stack     int
	Committed int
	Hole      []Card
	Folded    bool
	AllIn     bool
}

// Hand is one heads-up no-limit hold'em hand. The duel harness drives it; the
// decision engine only ever sees the public board and the actor's own hole cards.
type Hand struct {
	ID       string
	Cfg      Config
	Deck     []Card
	Board    []Card
	Pot      int
	Street   string
	SB, BB   *Player
	ToAct    Seat
	CurBet   int
	MinRaise int
	History  []Action

	streetStart int
}

// NewHand posts blinds and deals hole cards from deck. Stacks override
// Cfg.StartStack when non-zero (sb, bb order).
func NewHand(id string, cfg Config, deck []Card, stacks ...int) *Hand {
	h := &Hand{
		ID: id, Cfg: cfg, Deck: deck, Street: "preflop",
		SB: &Player{Seat: SB, Stack: cfg.StartStack},
		BB: &Player{Seat: BB, Stack: cfg.StartStack},
	}
	if len(stacks) == 2 {
		h.SB.Stack, h.BB.Stack = stacks[0], stacks[1]
	}
	h.postBlinds()
	h.dealHole()
	h.ToAct = SB        // HU preflop: SB first
	h.MinRaise = cfg.BB // postflop increment; preflop min to is set on first raise
	return h
}

func (h *Hand) postBlinds() { h.bet(h.SB, h.Cfg.SB); h.bet(h.BB, h.Cfg.BB) }
func (h *Hand) dealHole()   { h.SB.Hole = []Card{h.pop(), h.pop()}; h.BB.Hole = []Card{h.pop(), h.pop()} }
func (h *Hand) pop() Card   { c := h.Deck[0]; h.Deck = h.Deck[1:]; return c }

func (h *Hand) bet(p *Player, amt int) {
	if amt >= p.Stack {
		amt = p.Stack
		p.AllIn = true
	}
	p.Stack -= amt
	p.Committed += amt
	if p.Committed > h.CurBet {
		h.CurBet = p.Committed
	}
	h.Pot += amt
}

func (h *Hand) other(p *Player) *Player {
	if p.Seat == SB {
		return h.BB
	}
	return h.SB
}

// Actor is the player whose turn it is.
func (h *Hand) Actor() *Player {
	if h.ToAct == SB {
		return h.SB
	}
	return h.BB
}

// Seat returns the player sitting in s.
func (h *Hand) Seat(s Seat) *Player {
	if s == SB {
		return h.SB
	}
	return h.BB
}

// ToCall is what the actor must add to continue.
func (h *Hand) ToCall() int {
	to := h.CurBet - h.Actor().Committed
	if to < 0 {
		return 0
	}
	return to
}

// RaiseBounds returns the legal raise-to interval for the actor.
func (h *Hand) RaiseBounds() (minTo, maxTo int) {
	a := h.Actor()
	maxTo = a.Stack + a.Committed
	minTo = h.CurBet + h.MinRaise
	if minTo > maxTo {
		minTo = maxTo
	}
	return minTo, maxTo
}

func (h *Hand) Legal() []ActionKind {
	a := h.Actor()
	if a.Folded || a.AllIn {
		return nil
	}
	var out []ActionKind
	toCall := h.CurBet - a.Committed
	if toCall == 0 {
		out = append(out, Check)
	} else {
		out = append(out, Fold, Call)
	}
	if !h.other(a).AllIn && a.Stack > toCall {
		out = append(out, Raise)
	}
	return out
}

func (h *Hand) Apply(kind ActionKind, amount int) error {
	a := h.Actor()
	switch kind {
	case Fold:
		a.Folded = true
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Fold})
		return nil
	case Check:
		if h.CurBet-a.Committed != 0 {
			return fmt.Errorf("%w: cannot check facing %d", ErrIllegalMove, h.CurBet-a.Committed)
		}
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Check})
	case Call:
		to := h.CurBet - a.Committed
		if to < 0 {
			to = 0
		}
		h.bet(a, to)
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Call, Amount: to})
	case Raise:
		minTo, maxTo := h.RaiseBounds()
		if amount < minTo || amount > maxTo {
			return fmt.Errorf("%w: raise to %d outside [%d, %d]", ErrIllegalMove, amount, minTo, maxTo)
		}
		prevCur := h.CurBet
		h.bet(a, amount-a.Committed)
		if amount-prevCur > h.MinRaise {
			h.MinRaise = amount - prevCur
		}
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Raise, Amount: amount})
	default:
		return fmt.Errorf("%w: unknown action %q", ErrIllegalMove, kind)
	}
	h.ToAct = h.other(a).Seat
	return nil
}

// streetActions counts actions since the current street began.
func (h *Hand) streetActions() []Action {
	return h.History[h.streetStart:]
}

func (h *Hand) bettingRoundDone() bool {
	if h.SB.Folded || h.BB.Folded {
		return true
	}
	if h.SB.AllIn && h.BB.AllIn {
		return true
	}
	if h.SB.AllIn || h.BB.AllIn {
		short, other := h.SB, h.BB
		if h.BB.AllIn {
			short, other = h.BB, h.SB
		}
		return other.Committed >= short.Committed
	}
	if h.CurBet-h.SB.Committed != 0 || h.CurBet-h.BB.Committed != 0 {
		return false
	}
	return len(h.streetActions()) >= 2
}

// returnUncalled refunds the part of a bet the all-in opponent could not match.
func (h *Hand) returnUncalled() {
	hi, lo := h.SB, h.BB
	if lo.Committed > hi.Committed {
		hi, lo = lo, hi
	}
	if !lo.AllIn || hi.Committed <= lo.Committed {
		return
	}
	excess := hi.Committed - lo.Committed
	hi.Committed -= excess
	hi.Stack += excess
	h.Pot -= excess
	h.CurBet = hi.Committed
}

// RoundDone reports whether the current betting round is closed.
func (h *Hand) RoundDone() bool { return h.bettingRoundDone() }

func (h *Hand) NextStreet() {
	switch h.Street {
	case "preflop":
		h.Board = append(h.Board, h.pop(), h.pop(), h.pop())
		h.Street = "flop"
	case "flop":
		h.Board = append(h.Board, h.pop())
		h.Street = "turn"
	case "turn":
		h.Board = append(h.Board, h.pop())
		h.Street = "river"
	}
	h.CurBet = 0
	h.SB.Committed = 0
	h.BB.Committed = 0
	h.MinRaise = h.Cfg.BB
	h.ToAct = BB // postflop in HU
	h.streetStart = len(h.History)
}

// RunOut deals the remaining board once nobody can act any more.
func (h *Hand) RunOut() {
	h.returnUncalled()
	for h.Street != "river" {
		h.NextStreet()
	}
}

func (h *Hand) Done() bool {
	if h.SB.Folded || h.BB.Folded {
		return true
	}
	return h.bettingRoundDone() && (h.Street == "river" || h.SB.AllIn || h.BB.AllIn)
}

// Showdown returns the winning seat, or "" for a split pot.
func (h *Hand) Showdown() Seat {
	if h.SB.Folded {
		return BB
	}
	if h.BB.Folded {
		return SB
	}
	sb, _ := Best5of7(h.SB.Hole, h.Board)
	bb, _ := Best5of7(h.BB.Hole, h.Board)
	switch sb.Compare(bb) {
	case 1:
		return SB
	case -1:
		return BB
	default:
		return "" // tie
	}
}

// Settle pays the pot out to the stacks and returns each seat's net result.
func (h *Hand) Settle(startSB, startBB int) (netSB, netBB int) {
	if !h.SB.Folded && !h.BB.Folded {
		h.returnUncalled()
	}
	switch h.Showdown() {
	case SB:
		h.SB.Stack += h.Pot
	case BB:
		h.BB.Stack += h.Pot
	default:
		h.SB.Stack += h.Pot / 2
		h.BB.Stack += h.Pot - h.Pot/2
	}
	h.Pot = 0
	return h.SB.Stack - startSB, h.BB.Stack - startBB
}
