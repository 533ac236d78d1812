// Package judge prices logged hold'em river decisions against exact equity
// and records whether the chosen action was the best one.
package judge

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/equity"
	"github.com/saint2706/Games-sub001/server/store"
	"github.com/saint2706/Games-sub001/server/strategy"
)

const Solver = "ExactJudge"

// assumedFoldEquity prices a two-thirds pot bet when the river is unopened.
const assumedFoldEquity = 0.35

// Evaluate judges a single river decision. ok is false when the decision is
// not one the judge prices (wrong street, unparsable cards, other actions).
func Evaluate(d store.Decision) (ev store.DecisionEval, ok bool, err error) {
	if d.Street != "river" || len(d.Board) != 5 || len(d.Hole) != 2 {
		return ev, false, nil
	}
	board, err := engine.ParseCards(d.Board)
	if err != nil {
		return ev, false, fmt.Errorf("decision %d board: %w", d.ID, err)
	}
	hole, err := engine.ParseCards(d.Hole)
	if err != nil {
		return ev, false, fmt.Errorf("decision %d hole: %w", d.ID, err)
	}
	t0 := time.Now()
	res, err := equity.Exact(equity.Spot{Hole: hole, Board: board, Opponents: 1})
	if err != nil {
		return ev, false, fmt.Errorf("decision %d: %w", d.ID, err)
	}
	eq := res.Equity
	bb := d.BigBlind
	if bb <= 0 {
		bb = 100
	}
	eps := 0.15 * float64(bb)
	P := float64(d.Pot)

	var evs map[strategy.Kind]float64
	if d.ToCall > 0 {
		if d.Action.Kind != strategy.Call && d.Action.Kind != strategy.Fold {
			return ev, false, nil
		}
		evs = map[strategy.Kind]float64{
			strategy.Fold: 0,
			strategy.Call: equity.CallEV(eq, d.Pot, d.ToCall),
		}
	} else {
		if d.Action.Kind != strategy.Check && d.Action.Kind != strategy.Raise {
			return ev, false, nil
		}
		b := math.Max(float64(bb), math.Round(0.66*P))
		F := assumedFoldEquity
		evs = map[strategy.Kind]float64{
			strategy.Check: eq * P,
			strategy.Raise: F*P + (1.0-F)*(eq*(P+b)-(1.0-eq)*b),
		}
	}

	best, evBest := strategy.Kind(""), math.Inf(-1)
	for _, k := range []strategy.Kind{strategy.Call, strategy.Fold, strategy.Check, strategy.Raise} {
		if v, ok := evs[k]; ok && v > evBest {
			best, evBest = k, v
		}
	}
	evChosen := evs[d.Action.Kind]
	return store.DecisionEval{
		DecisionID:  d.ID,
		Solver:      Solver,
		Equity:      eq,
		BestAction:  string(best),
		EVChosen:    evChosen,
		EVBest:      evBest,
		EVGapBB:     (evBest - evChosen) / float64(bb),
		IsTopAction: evBest-evChosen <= eps,
		ComputeMS:   int(time.Since(t0) / time.Millisecond),
	}, true, nil
}

// EvaluateMatch judges every priceable river decision of a match and writes
// one decision_eval row each. It returns how many were judged.
func EvaluateMatch(ctx context.Context, db *store.DB, matchID int64) (int, error) {
	ds, err := db.RiverDecisions(ctx, matchID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range ds {
		ev, ok, err := Evaluate(d)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		if err := db.InsertDecisionEval(ctx, ev); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
