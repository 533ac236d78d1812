package engine

import (
	"fmt"
	"sort"
	"strings"
)

var tttLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// lineWeight[n] is the value of a line holding n of one player's marks and none of the other's.
var tttLineWeight = [4]int{0, 1, 10, 100}

const (
	tttCenterBonus = 3
	tttCornerBonus = 2
)

// TicTacToe is a 3x3 board. Cells hold 0 (empty) or player+1. Player 0 is X.
type TicTacToe struct {
	cells   [9]int8
	toMove  int
	history []Move
}

func NewTicTacToe() *TicTacToe { return &TicTacToe{} }

// ParseTicTacToe reads nine cells row-major from 'X', 'O' and '.' (spaces and
// slashes ignored). The side to move is derived from the mark counts.
func ParseTicTacToe(s string) (*TicTacToe, error) {
	t := &TicTacToe{}
	i, xs, ns := 0, 0, 0
	for _, r := range s {
		switch r {
		case ' ', '/', '\n':
			continue
		}
		if i >= 9 {
			return nil, fmt.Errorf("tictactoe: too many cells in %q", s)
		}
		switch r {
		case 'X', 'x':
			t.cells[i] = 1
			xs++
		case 'O', 'o':
			t.cells[i] = 2
			ns++
		case '.', '-', '_':
		default:
			return nil, fmt.Errorf("tictactoe: bad cell %q", r)
		}
		i++
	}
	if i != 9 {
		return nil, fmt.Errorf("tictactoe: want 9 cells, got %d", i)
	}
	switch xs - ns {
	case 0:
		t.toMove = 0
	case 1:
		t.toMove = 1
	default:
		return nil, fmt.Errorf("tictactoe: impossible mark counts X=%d O=%d", xs, ns)
	}
	return t, nil
}

func (t *TicTacToe) ToMove() int { return t.toMove }

func (t *TicTacToe) Moves() []Move {
	if t.Winner() >= 0 {
		return nil
	}
	var out []Move
	for i, c := range t.cells {
		if c == 0 {
			out = append(out, Move(i))
		}
	}
	return out
}

func (t *TicTacToe) Winner() int {
	for _, l := range tttLines {
		c := t.cells[l[0]]
		if c != 0 && c == t.cells[l[1]] && c == t.cells[l[2]] {
			return int(c) - 1
		}
	}
	return -1
}

func (t *TicTacToe) Terminal() bool {
	if t.Winner() >= 0 {
		return true
	}
	for _, c := range t.cells {
		if c == 0 {
			return false
		}
	}
	return true
}

func (t *TicTacToe) Play(m Move) (Undo, error) {
	if m < 0 || m > 8 || t.cells[m] != 0 || t.Winner() >= 0 {
		return Undo{}, fmt.Errorf("%w: cell %d", ErrIllegalMove, m)
	}
	t.cells[m] = int8(t.toMove + 1)
	t.toMove = 1 - t.toMove
	t.history = append(t.history, m)
	return Undo{Move: m, Ply: len(t.history)}, nil
}

func (t *TicTacToe) Unplay(u Undo) error {
	n := len(t.history)
	if n == 0 || u.Ply != n || t.history[n-1] != u.Move {
		return ErrUndoOrder
	}
	t.cells[u.Move] = 0
	t.toMove = 1 - t.toMove
	t.history = t.history[:n-1]
	return nil
}

func (t *TicTacToe) Clone() Position {
	c := *t
	c.history = append([]Move(nil), t.history...)
	return &c
}

// Score counts open lines weighted by how full they are, plus center and
// corner occupation, as player's total minus the opponent's.
func (t *TicTacToe) Score(p Position, player int) int {
	b, ok := p.(*TicTacToe)
	if !ok {
		return 0
	}
	if b.Terminal() {
		return TerminalScore(b, player)
	}
	return b.features(player) - b.features(1-player)
}

func (t *TicTacToe) features(player int) int {
	own, opp := int8(player+1), int8(2-player)
	score := 0
	for _, l := range tttLines {
		n, blocked := 0, false
		for _, i := range l {
			switch t.cells[i] {
			case own:
				n++
			case opp:
				blocked = true
			}
		}
		if !blocked {
			score += tttLineWeight[n]
		}
	}
	for i, c := range t.cells {
		if c != own {
			continue
		}
		switch i {
		case 4:
			score += tttCenterBonus
		case 0, 2, 6, 8:
			score += tttCornerBonus
		}
	}
	return score
}

// completes reports whether marking cell for player finishes a line.
func (t *TicTacToe) completes(cell int, player int) bool {
	mark := int8(player + 1)
	for _, l := range tttLines {
		n, hit := 0, false
		for _, i := range l {
			if i == cell {
				hit = true
			} else if t.cells[i] == mark {
				n++
			}
		}
		if hit && n == 2 {
			return true
		}
	}
	return false
}

// Order puts winning moves first, then blocks, then center, corners, edges.
func (t *TicTacToe) Order(p Position, moves []Move) []Move {
	b, ok := p.(*TicTacToe)
	if !ok {
		return moves
	}
	rank := func(m Move) int {
		switch {
		case b.completes(int(m), b.toMove):
			return 5
		case b.completes(int(m), 1-b.toMove):
			return 4
		case m == 4:
			return 3
		case m == 0 || m == 2 || m == 6 || m == 8:
			return 2
		}
		return 1
	}
	out := append([]Move(nil), moves...)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) > rank(out[j]) })
	return out
}

func (t *TicTacToe) String() string {
	var b strings.Builder
	for i, c := range t.cells {
		if i > 0 && i%3 == 0 {
			b.WriteByte('/')
		}
		b.WriteByte(".XO"[c])
	}
	return b.String()
}
