package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/equity"
	"github.com/saint2706/Games-sub001/server/opponent"
)

// defaultFoldEquity is assumed when nothing is known about the opponent.
const defaultFoldEquity = 0.3

func (s *Selector) estimate(spot *PokerSpot) (equity.Result, error) {
	es := equity.Spot{Hole: spot.Hole, Board: spot.Board, Dead: spot.Dead, Opponents: spot.Opponents}
	if es.Opponents < 1 {
		es.Opponents = 1
	}
	if len(es.Board) == 5 && es.Opponents == 1 {
		return equity.Exact(es)
	}
	if s.Workers > 1 {
		return equity.EstimateParallel(context.Background(), es, s.Profile.Simulations, s.Workers, s.rng.Int63())
	}
	return equity.Estimate(es, s.Profile.Simulations, s.rng)
}

// foldEquity is how likely the opponent is to fold to a bet.
func foldEquity(spot *PokerSpot, model *opponent.Profile) float64 {
	if model == nil || model.Observations() == 0 {
		return defaultFoldEquity
	}
	d := model.Predict([]opponent.Category{opponent.Fold, opponent.Call, opponent.Raise},
		opponent.Context{Pot: spot.Pot, BigBlind: spot.BigBlind})
	return d[opponent.Fold]
}

// raiseNear picks the legal raise whose amount is closest to target.
func raiseNear(legal []Action, target int) (Action, bool) {
	var best Action
	found := false
	for _, a := range legal {
		if a.Kind != Raise {
			continue
		}
		if !found || abs(a.Amount-target) < abs(best.Amount-target) {
			best, found = a, true
		}
	}
	return best, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// choosePoker compares Monte Carlo equity with the pot odds. Strong hands
// raise (the threshold drops with aggression), priced-in hands call, and the
// rest fold or check unless a bluff fires. Bluffs are more frequent against
// opponents predicted to fold.
func (s *Selector) choosePoker(sit Situation, model *opponent.Profile) (Decision, error) {
	spot := sit.Poker
	if spot == nil {
		return Decision{}, fmt.Errorf("%w: montecarlo needs a poker spot", ErrMissingPayload)
	}
	res, err := s.estimate(spot)
	if err != nil {
		return Decision{}, err
	}
	eq := res.Equity
	odds := equity.PotOdds(spot.Pot, spot.ToCall)
	opps := math.Max(1, float64(spot.Opponents))
	fair := 1 / (opps + 1)
	strong := fair + (1-fair)*(0.25+0.35*(1-s.Profile.Aggression))
	fe := foldEquity(spot, model)

	hand := append(append([]engine.Card{}, spot.Hole...), spot.Board...)
	made := engine.Describe(hand)
	d := Decision{Algorithm: MonteCarlo, Equity: eq}
	why := func(verdict string) string {
		return fmt.Sprintf("equity %.2f vs pot odds %.2f holding %s: %s", eq, odds, made, verdict)
	}

	sizing := spot.ToCall + int(float64(spot.Pot)*(0.5+0.5*s.Profile.Aggression))
	if eq > strong {
		if a, ok := raiseNear(sit.Legal, sizing); ok {
			d.Action, d.Explanation = a, why("value raise")
			return d, nil
		}
	}

	bluff := s.rng.Float64() < s.Profile.BluffFrequency*fe/defaultFoldEquity
	if spot.ToCall == 0 {
		if bluff && eq <= strong {
			if a, ok := raiseNear(sit.Legal, 0); ok {
				d.Action, d.Explanation = a, why(fmt.Sprintf("bluff, expecting folds %.0f%% of the time", fe*100))
				return d, nil
			}
		}
		if a, ok := firstOf(sit.Legal, Check); ok {
			d.Action, d.Explanation = a, why("check")
			return d, nil
		}
	}

	if equity.ShouldCall(eq, spot.Pot, spot.ToCall) {
		if a, ok := firstOf(sit.Legal, Call); ok {
			d.Action, d.Explanation = a, why("call, the price is right")
			return d, nil
		}
		if a, ok := firstOf(sit.Legal, Check); ok {
			d.Action, d.Explanation = a, why("check")
			return d, nil
		}
	}
	if bluff {
		if a, ok := raiseNear(sit.Legal, 0); ok {
			d.Action, d.Explanation = a, why("bluff raise")
			return d, nil
		}
	}
	if a, ok := firstOf(sit.Legal, Fold); ok {
		d.Action, d.Explanation = a, why("fold")
		return d, nil
	}
	if a, ok := firstOf(sit.Legal, Check); ok {
		d.Action, d.Explanation = a, why("check")
		return d, nil
	}
	// Only raises (or a forced call) remain.
	d.Action, d.Explanation = sit.Legal[0], why("only option")
	return d, nil
}
