// Package equity estimates how often a hold'em holding wins against unknown
// opponent cards. Only the acting player's own hole cards, the public board
// and explicitly dead cards are ever read; everything else is sampled.
package equity

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/saint2706/Games-sub001/server/engine"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInsufficientDeck = errors.New("insufficient deck")
	ErrDuplicateCard    = errors.New("duplicate card")
	ErrBadSpot          = errors.New("bad equity spot")
)

// Spot is everything the acting player may legally know.
type Spot struct {
	Hole      []engine.Card
	Board     []engine.Card
	Dead      []engine.Card
	Opponents int
}

// Hidden is the number of unseen cards one trial has to draw.
func (s Spot) Hidden() int { return 2*s.Opponents + (5 - len(s.Board)) }

// Result tallies trials. Equity counts a tie as half a win.
type Result struct {
	Equity float64 `json:"equity"`
	Wins   int     `json:"wins"`
	Ties   int     `json:"ties"`
	Losses int     `json:"losses"`
	Trials int     `json:"trials"`
}

func (r *Result) add(o Result) {
	r.Wins += o.Wins
	r.Ties += o.Ties
	r.Losses += o.Losses
	r.Trials += o.Trials
	r.finish()
}

func (r *Result) finish() {
	if r.Trials > 0 {
		r.Equity = (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(r.Trials)
	}
}

// unseen validates the spot and returns the cards that may still be dealt.
func (s Spot) unseen() ([]engine.Card, error) {
	if len(s.Hole) != 2 {
		return nil, fmt.Errorf("%w: need 2 hole cards, have %d", ErrBadSpot, len(s.Hole))
	}
	if len(s.Board) > 5 {
		return nil, fmt.Errorf("%w: board has %d cards", ErrBadSpot, len(s.Board))
	}
	if s.Opponents < 1 {
		return nil, fmt.Errorf("%w: need at least one opponent", ErrBadSpot)
	}
	var seen [52]bool
	for _, set := range [][]engine.Card{s.Hole, s.Board, s.Dead} {
		for _, c := range set {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: invalid card %v", ErrBadSpot, c)
			}
			if seen[c.Index()] {
				return nil, fmt.Errorf("%w: %v", ErrDuplicateCard, c)
			}
			seen[c.Index()] = true
		}
	}
	rest := engine.Remaining(s.Hole, s.Board, s.Dead)
	if len(rest) < s.Hidden() {
		return nil, fmt.Errorf("%w: %d unseen cards, %d needed", ErrInsufficientDeck, len(rest), s.Hidden())
	}
	return rest, nil
}

// Estimate runs trials independent random completions drawn from rng.
func Estimate(spot Spot, trials int, rng *rand.Rand) (Result, error) {
	return estimate(context.Background(), spot, trials, rng)
}

func estimate(ctx context.Context, spot Spot, trials int, rng *rand.Rand) (Result, error) {
	if trials <= 0 {
		return Result{}, fmt.Errorf("%w: trials must be positive, got %d", ErrBadSpot, trials)
	}
	deck, err := spot.unseen()
	if err != nil {
		return Result{}, err
	}
	need := 5 - len(spot.Board)
	hidden := spot.Hidden()
	board := make([]engine.Card, 5)
	copy(board, spot.Board)
	hand := make([]engine.Card, 7)

	var res Result
	for t := 0; t < trials; t++ {
		if t&1023 == 1023 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		// Partial Fisher-Yates: the first hidden cards of deck become the draw.
		for i := 0; i < hidden; i++ {
			j := i + rng.Intn(len(deck)-i)
			deck[i], deck[j] = deck[j], deck[i]
		}
		copy(board[len(spot.Board):], deck[:need])
		draw := deck[need:hidden]

		copy(hand, spot.Hole)
		copy(hand[2:], board)
		hero, _ := engine.Evaluate(hand, 5)

		outcome := 1
		for o := 0; o < spot.Opponents; o++ {
			hand[0], hand[1] = draw[2*o], draw[2*o+1]
			v, _ := engine.Evaluate(hand, 5)
			switch c := hero.Compare(v); {
			case c < 0:
				outcome = -1
			case c == 0 && outcome > 0:
				outcome = 0
			}
			if outcome < 0 {
				break
			}
		}
		switch outcome {
		case 1:
			res.Wins++
		case 0:
			res.Ties++
		default:
			res.Losses++
		}
		res.Trials++
	}
	res.finish()
	return res, nil
}

// EstimateParallel splits trials into one fixed shard per worker. Each shard
// draws from its own generator seeded from seed, so the result depends only on
// (spot, trials, workers, seed), never on scheduling.
func EstimateParallel(ctx context.Context, spot Spot, trials, workers int, seed int64) (Result, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > trials && trials > 0 {
		workers = trials
	}
	if _, err := spot.unseen(); err != nil {
		return Result{}, err
	}
	if trials <= 0 {
		return Result{}, fmt.Errorf("%w: trials must be positive, got %d", ErrBadSpot, trials)
	}

	seeds := engine.NewSeedStream(uint64(seed))
	shards := make([]Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := trials / workers
		if w < trials%workers {
			n++
		}
		w, n, rng := w, n, rand.New(rand.NewSource(seeds.NextInt64()))
		g.Go(func() error {
			r, err := estimate(gctx, spot, n, rng)
			if err != nil {
				return err
			}
			shards[w] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	var total Result
	for _, r := range shards {
		total.add(r)
	}
	return total, nil
}

// Exact enumerates every opponent holding on a complete board (heads-up only).
func Exact(spot Spot) (Result, error) {
	if len(spot.Board) != 5 || spot.Opponents != 1 {
		return Result{}, fmt.Errorf("%w: exact equity needs a full board and one opponent", ErrBadSpot)
	}
	avail, err := spot.unseen()
	if err != nil {
		return Result{}, err
	}
	hero, err := engine.Best5of7(spot.Hole, spot.Board)
	if err != nil {
		return Result{}, err
	}
	hand := make([]engine.Card, 7)
	copy(hand[2:], spot.Board)
	var res Result
	for i := 0; i < len(avail); i++ {
		for j := i + 1; j < len(avail); j++ {
			hand[0], hand[1] = avail[i], avail[j]
			v, _ := engine.Evaluate(hand, 5)
			switch hero.Compare(v) {
			case 1:
				res.Wins++
			case 0:
				res.Ties++
			default:
				res.Losses++
			}
			res.Trials++
		}
	}
	res.finish()
	return res, nil
}
