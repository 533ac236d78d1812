// Package strategy turns a difficulty profile and a game situation into one
// legal action. Choose is the only entry point game engines call.
package strategy

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/opponent"
)

var (
	ErrNoLegalActions        = errors.New("no legal actions")
	ErrIllegalActionSelected = errors.New("illegal action selected")
	ErrMissingPayload        = errors.New("situation payload missing")
)

// Decision is the chosen action plus an advisory explanation.
type Decision struct {
	Action      Action
	Explanation string
	Algorithm   Algorithm
	Mistake     bool
	Equity      float64 // MonteCarlo only
	Score       int     // Minimax only
}

// Selector makes decisions for one seat. Its generator drives mistake
// injection and Monte Carlo sampling, so a fixed seed replays exactly.
type Selector struct {
	Profile Profile
	Workers int         // >1 shards Monte Carlo trials across goroutines
	Logger  *log.Logger // optional

	rng *rand.Rand
}

func NewSelector(p Profile, seed int64) *Selector {
	return &Selector{Profile: p, Workers: 1, rng: rand.New(rand.NewSource(seed))}
}

// NewSelectorRand uses a caller-owned generator.
func NewSelectorRand(p Profile, rng *rand.Rand) *Selector {
	return &Selector{Profile: p, Workers: 1, rng: rng}
}

func (s *Selector) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// Choose returns exactly one action from sit.Legal. model is the profile of
// the adversary being faced and may be nil.
func (s *Selector) Choose(sit Situation, model *opponent.Profile) (Decision, error) {
	if len(sit.Legal) == 0 {
		return Decision{}, ErrNoLegalActions
	}

	var (
		d   Decision
		err error
	)
	if s.Profile.MistakeRate > 0 && s.rng.Float64() < s.Profile.MistakeRate {
		a := sit.Legal[s.rng.Intn(len(sit.Legal))]
		d = Decision{Action: a, Mistake: true, Algorithm: sit.Algorithm,
			Explanation: fmt.Sprintf("%s plays on instinct: %s", s.Profile.Name, a)}
		s.logf("mistake injected (%s): %s", s.Profile.Name, a)
	} else {
		d, err = s.dispatch(sit, model)
		if err != nil {
			return Decision{}, err
		}
	}

	if !contains(sit.Legal, d.Action) {
		return Decision{}, fmt.Errorf("%w: %s not in %v", ErrIllegalActionSelected, d.Action, sit.Legal)
	}
	return d, nil
}

func (s *Selector) dispatch(sit Situation, model *opponent.Profile) (Decision, error) {
	switch sit.Algorithm {
	case Minimax:
		return s.chooseMinimax(sit)
	case NimSum:
		return s.chooseNim(sit)
	case MonteCarlo:
		return s.choosePoker(sit, model)
	case Hybrid:
		return s.chooseClaim(sit, model)
	}
	return Decision{}, fmt.Errorf("unknown algorithm %v", sit.Algorithm)
}

func (s *Selector) chooseMinimax(sit Situation) (Decision, error) {
	if sit.Board == nil {
		return Decision{}, fmt.Errorf("%w: minimax needs a board", ErrMissingPayload)
	}
	depth := s.Profile.SearchDepth
	res, err := engine.Search(sit.Board, depth, sit.Board.ToMove(), engine.SearchOptions{})
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Algorithm: Minimax, Score: res.Score}
	if !res.HasMove {
		d.Action = sit.Legal[0]
		d.Explanation = "no searchable move; taking the first legal one"
		s.logf("minimax returned no move; falling back to %s", d.Action)
		return d, nil
	}
	d.Action = Action{Kind: Place, Cell: int(res.Move)}
	switch {
	case res.Score >= engine.WinScore:
		d.Explanation = fmt.Sprintf("%s forces a win (depth %d)", d.Action, depth)
	case res.Score <= -engine.WinScore:
		d.Explanation = fmt.Sprintf("every line loses against best play; playing %s", d.Action)
	default:
		d.Explanation = fmt.Sprintf("%s scores %d after a %d-ply search of %d nodes", d.Action, res.Score, depth, res.Nodes)
	}
	return d, nil
}

func (s *Selector) chooseNim(sit Situation) (Decision, error) {
	m, err := engine.OptimalMove(sit.Heaps, sit.Misere)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Algorithm: NimSum, Action: Action{Kind: Take, Heap: m.Heap, Count: int(m.Count)}}
	x := engine.NimSum(sit.Heaps)
	switch {
	case m.Losing:
		d.Explanation = fmt.Sprintf("nim-sum is %d, a lost position; %s and hope for a slip", x, d.Action)
	case sit.Misere:
		d.Explanation = fmt.Sprintf("misère play: %s", d.Action)
	default:
		d.Explanation = fmt.Sprintf("nim-sum is %d; %s leaves nim-sum 0", x, d.Action)
	}
	return d, nil
}
