package engine

import (
	"fmt"
	"sort"
	"strings"
)

const (
	C4Cols = 7
	C4Rows = 6
)

// ConnectFour is a 7x6 gravity board. Cell (col,row) is at col*C4Rows+row,
// row 0 at the bottom. Moves are column numbers.
type ConnectFour struct {
	cells   [C4Cols * C4Rows]int8
	heights [C4Cols]int
	toMove  int
	winner  int
	history []Move
}

func NewConnectFour() *ConnectFour { return &ConnectFour{winner: -1} }

// ParseConnectFour replays a sequence of column digits ("3344").
func ParseConnectFour(moves string) (*ConnectFour, error) {
	c := NewConnectFour()
	for _, r := range moves {
		if r < '0' || r >= '0'+C4Cols {
			return nil, fmt.Errorf("connect4: bad column %q", r)
		}
		if _, err := c.Play(Move(r - '0')); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *ConnectFour) at(col, row int) int8 { return c.cells[col*C4Rows+row] }

func (c *ConnectFour) ToMove() int { return c.toMove }
func (c *ConnectFour) Winner() int { return c.winner }

func (c *ConnectFour) Terminal() bool {
	return c.winner >= 0 || len(c.history) == C4Cols*C4Rows
}

func (c *ConnectFour) Moves() []Move {
	if c.winner >= 0 {
		return nil
	}
	var out []Move
	for col := 0; col < C4Cols; col++ {
		if c.heights[col] < C4Rows {
			out = append(out, Move(col))
		}
	}
	return out
}

func (c *ConnectFour) Play(m Move) (Undo, error) {
	col := int(m)
	if col < 0 || col >= C4Cols || c.heights[col] >= C4Rows || c.winner >= 0 {
		return Undo{}, fmt.Errorf("%w: column %d", ErrIllegalMove, m)
	}
	row := c.heights[col]
	c.cells[col*C4Rows+row] = int8(c.toMove + 1)
	c.heights[col]++
	if c.connects(col, row) {
		c.winner = c.toMove
	}
	c.toMove = 1 - c.toMove
	c.history = append(c.history, m)
	return Undo{Move: m, Ply: len(c.history)}, nil
}

func (c *ConnectFour) Unplay(u Undo) error {
	n := len(c.history)
	if n == 0 || u.Ply != n || c.history[n-1] != u.Move {
		return ErrUndoOrder
	}
	col := int(u.Move)
	c.heights[col]--
	c.cells[col*C4Rows+c.heights[col]] = 0
	c.toMove = 1 - c.toMove
	c.winner = -1 // only the last move can have won
	c.history = c.history[:n-1]
	return nil
}

func (c *ConnectFour) Clone() Position {
	cp := *c
	cp.history = append([]Move(nil), c.history...)
	return &cp
}

var c4Dirs = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

func (c *ConnectFour) connects(col, row int) bool {
	mark := c.at(col, row)
	for _, d := range c4Dirs {
		n := 1
		for _, sign := range [2]int{1, -1} {
			x, y := col+sign*d[0], row+sign*d[1]
			for x >= 0 && x < C4Cols && y >= 0 && y < C4Rows && c.at(x, y) == mark {
				n++
				x += sign * d[0]
				y += sign * d[1]
			}
		}
		if n >= 4 {
			return true
		}
	}
	return false
}

// Score sums every four-cell window: three of player's discs with an empty
// fourth is a threat, two with two empties an open line; center column
// discs add a bonus. The opponent's total is subtracted.
func (c *ConnectFour) Score(p Position, player int) int {
	b, ok := p.(*ConnectFour)
	if !ok {
		return 0
	}
	if b.Terminal() {
		return TerminalScore(b, player)
	}
	return b.features(player) - b.features(1-player)
}

func (c *ConnectFour) features(player int) int {
	own := int8(player + 1)
	score := 0
	for row := 0; row < C4Rows; row++ {
		if c.at(C4Cols/2, row) == own {
			score += 3
		}
	}
	for col := 0; col < C4Cols; col++ {
		for row := 0; row < C4Rows; row++ {
			for _, d := range c4Dirs {
				ex, ey := col+3*d[0], row+3*d[1]
				if ex < 0 || ex >= C4Cols || ey < 0 || ey >= C4Rows {
					continue
				}
				n, empty := 0, 0
				for k := 0; k < 4; k++ {
					switch c.at(col+k*d[0], row+k*d[1]) {
					case own:
						n++
					case 0:
						empty++
					}
				}
				switch {
				case n == 3 && empty == 1:
					score += 50
				case n == 2 && empty == 2:
					score += 5
				}
			}
		}
	}
	return score
}

func (c *ConnectFour) wouldConnect(col, player int) bool {
	row := c.heights[col]
	if row >= C4Rows {
		return false
	}
	c.cells[col*C4Rows+row] = int8(player + 1)
	ok := c.connects(col, row)
	c.cells[col*C4Rows+row] = 0
	return ok
}

// Order tries wins, then blocks, then columns nearest the center.
func (c *ConnectFour) Order(p Position, moves []Move) []Move {
	b, ok := p.(*ConnectFour)
	if !ok {
		return moves
	}
	rank := func(m Move) int {
		col := int(m)
		switch {
		case b.wouldConnect(col, b.toMove):
			return 100
		case b.wouldConnect(col, 1-b.toMove):
			return 50
		}
		d := col - C4Cols/2
		if d < 0 {
			d = -d
		}
		return 10 - d
	}
	out := append([]Move(nil), moves...)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) > rank(out[j]) })
	return out
}

func (c *ConnectFour) String() string {
	var b strings.Builder
	for row := C4Rows - 1; row >= 0; row-- {
		for col := 0; col < C4Cols; col++ {
			b.WriteByte(".XO"[c.at(col, row)])
		}
		if row > 0 {
			b.WriteByte('/')
		}
	}
	return b.String()
}
