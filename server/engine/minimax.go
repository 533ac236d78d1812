package engine

import (
	"fmt"
	"math"
)

// SearchOptions tunes Search. A nil Eval or Order falls back to the position's
// own Score/Order methods when it has them.
type SearchOptions struct {
	Eval    Evaluator
	Order   MoveOrderer
	NoPrune bool // plain minimax, for checking alpha-beta against
}

type SearchResult struct {
	Score   int
	Move    Move
	HasMove bool
	Nodes   int
}

// Search runs depth-limited minimax with alpha-beta pruning and returns the
// score from maximizer's point of view together with the best move for the
// side to move. pos itself is never modified; the search plays on a clone.
func Search(pos Position, depth, maximizer int, opt SearchOptions) (SearchResult, error) {
	if depth < 0 {
		return SearchResult{}, fmt.Errorf("%w: %d", ErrInvalidDepth, depth)
	}
	s := &searcher{
		pos:     pos.Clone(),
		max:     maximizer,
		eval:    opt.Eval,
		order:   opt.Order,
		noPrune: opt.NoPrune,
	}
	if s.eval == nil {
		if e, ok := pos.(Evaluator); ok {
			s.eval = e
		} else {
			s.eval = terminalOnly{}
		}
	}
	if s.order == nil {
		if o, ok := pos.(MoveOrderer); ok {
			s.order = o
		} else {
			s.order = asGiven{}
		}
	}

	if s.pos.Terminal() {
		return SearchResult{Score: TerminalScore(s.pos, maximizer), Nodes: 1}, nil
	}
	if depth == 0 {
		return SearchResult{Score: s.eval.Score(s.pos, maximizer), Nodes: 1}, nil
	}
	return s.root(depth)
}

type searcher struct {
	pos     Position
	max     int
	eval    Evaluator
	order   MoveOrderer
	noPrune bool
	nodes   int
	err     error
}

func (s *searcher) root(depth int) (SearchResult, error) {
	s.nodes++
	maximizing := s.pos.ToMove() == s.max
	alpha, beta := math.MinInt, math.MaxInt
	var res SearchResult
	for _, m := range s.order.Order(s.pos, s.pos.Moves()) {
		v, err := s.child(m, depth, alpha, beta)
		if err != nil {
			return SearchResult{}, err
		}
		improved := !res.HasMove || (maximizing && v > res.Score) || (!maximizing && v < res.Score)
		if improved {
			res.Score, res.Move, res.HasMove = v, m, true
		}
		if s.noPrune {
			continue
		}
		if maximizing && v > alpha {
			alpha = v
		}
		if !maximizing && v < beta {
			beta = v
		}
	}
	res.Nodes = s.nodes
	return res, nil
}

func (s *searcher) child(m Move, depth, alpha, beta int) (int, error) {
	u, err := s.pos.Play(m)
	if err != nil {
		return 0, err
	}
	v := s.minimax(depth-1, alpha, beta)
	if err := s.pos.Unplay(u); err != nil {
		return 0, err
	}
	if s.err != nil {
		return 0, s.err
	}
	return v, nil
}

func (s *searcher) minimax(depth, alpha, beta int) int {
	s.nodes++
	if s.pos.Terminal() {
		return TerminalScore(s.pos, s.max)
	}
	if depth == 0 {
		return s.eval.Score(s.pos, s.max)
	}
	moves := s.pos.Moves()
	if len(moves) == 0 {
		return s.eval.Score(s.pos, s.max)
	}
	maximizing := s.pos.ToMove() == s.max
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	for _, m := range s.order.Order(s.pos, moves) {
		v, err := s.child(m, depth, alpha, beta)
		if err != nil {
			s.err = err
			return 0
		}
		if maximizing {
			if v > best {
				best = v
			}
			if v > alpha {
				alpha = v
			}
		} else {
			if v < best {
				best = v
			}
			if v < beta {
				beta = v
			}
		}
		if !s.noPrune && beta <= alpha {
			break
		}
	}
	return best
}
