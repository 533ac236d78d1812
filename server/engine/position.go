package engine

// Move identifies a move within one Position implementation (a cell or a column).
type Move int

// Undo is returned by Play and must be handed back to Unplay in LIFO order.
type Undo struct {
	Move Move
	Ply  int
}

// Position is a two-player, perfect-information game state. Players are 0 and 1.
type Position interface {
	ToMove() int
	Moves() []Move
	Terminal() bool
	// Winner is the winning player, or -1 for a draw or unfinished game.
	Winner() int
	Play(m Move) (Undo, error)
	Unplay(u Undo) error
	Clone() Position
}

// Evaluator scores a position from player's point of view. Implementations
// must be zero-sum: Score(p, 0) == -Score(p, 1).
type Evaluator interface {
	Score(p Position, player int) int
}

// MoveOrderer sorts candidate moves most-promising first.
type MoveOrderer interface {
	Order(p Position, moves []Move) []Move
}

// WinScore dominates every heuristic score.
const WinScore = 1_000_000

// TerminalScore is the fixed score of a finished game.
func TerminalScore(p Position, player int) int {
	switch w := p.Winner(); {
	case w < 0:
		return 0
	case w == player:
		return WinScore
	default:
		return -WinScore
	}
}

type terminalOnly struct{}

func (terminalOnly) Score(p Position, player int) int {
	if p.Terminal() {
		return TerminalScore(p, player)
	}
	return 0
}

type asGiven struct{}

func (asGiven) Order(_ Position, moves []Move) []Move { return moves }

func hasMove(moves []Move, m Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}
