package equity

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/saint2706/Games-sub001/server/engine"
)

func TestEstimateDeterministicUnderSeed(t *testing.T) {
	spot := Spot{Hole: engine.MustCards("Qs", "Jh"), Board: engine.MustCards("2c", "9d", "Th"), Opponents: 1}
	a, err := Estimate(spot, 10000, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	b, err := Estimate(spot, 10000, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if a != b {
		t.Fatalf("same seed produced different results: %+v vs %+v", a, b)
	}
}

func TestPocketAcesHeadsUp(t *testing.T) {
	spot := Spot{Hole: engine.MustCards("As", "Ah"), Opponents: 1}
	res, err := Estimate(spot, 10000, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if math.Abs(res.Equity-0.85) > 0.03 {
		t.Fatalf("AA vs random expected ~0.85, got %.4f", res.Equity)
	}
	if res.Wins+res.Ties+res.Losses != res.Trials || res.Trials != 10000 {
		t.Fatalf("tallies do not add up: %+v", res)
	}
}

func TestMoreOpponentsLowerEquity(t *testing.T) {
	hole := engine.MustCards("Kd", "Kc")
	one, _ := Estimate(Spot{Hole: hole, Opponents: 1}, 3000, rand.New(rand.NewSource(5)))
	four, _ := Estimate(Spot{Hole: hole, Opponents: 4}, 3000, rand.New(rand.NewSource(5)))
	if four.Equity >= one.Equity {
		t.Fatalf("equity should fall with more opponents: 1=%.3f 4=%.3f", one.Equity, four.Equity)
	}
}

func TestEstimateErrors(t *testing.T) {
	_, err := Estimate(Spot{Hole: engine.MustCards("As", "Ah"), Opponents: 24}, 10, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInsufficientDeck) {
		t.Fatalf("expected ErrInsufficientDeck, got %v", err)
	}
	_, err = Estimate(Spot{Hole: engine.MustCards("As", "As"), Opponents: 1}, 10, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrDuplicateCard) {
		t.Fatalf("expected ErrDuplicateCard, got %v", err)
	}
	_, err = Estimate(Spot{Hole: engine.MustCards("As", "Ah"), Opponents: 1}, 0, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("zero trials must be rejected")
	}
}

func TestDeadCardsAreNeverDealt(t *testing.T) {
	// With every other ace dead, the hero's pair of kings can never lose to aces.
	spot := Spot{
		Hole:      engine.MustCards("Ks", "Kh"),
		Board:     engine.MustCards("2c", "7d", "9h", "3s"),
		Dead:      engine.MustCards("Ac", "Ad", "Ah", "As"),
		Opponents: 1,
	}
	rest, err := spot.unseen()
	if err != nil {
		t.Fatalf("unseen: %v", err)
	}
	for _, c := range rest {
		if c.Rank == 14 {
			t.Fatalf("dead card %v left in the unseen pool", c)
		}
	}
}

func TestExactRiver(t *testing.T) {
	nuts := Spot{Hole: engine.MustCards("As", "Ks"), Board: engine.MustCards("Qs", "Js", "Ts", "2d", "3c"), Opponents: 1}
	res, err := Exact(nuts)
	if err != nil {
		t.Fatalf("Exact: %v", err)
	}
	if res.Equity != 1 || res.Trials != 990 {
		t.Fatalf("royal flush should win every one of 990 combos, got %+v", res)
	}
	if _, err := Exact(Spot{Hole: nuts.Hole, Board: nuts.Board[:4], Opponents: 1}); err == nil {
		t.Fatalf("Exact must refuse an incomplete board")
	}
}

func TestMonteCarloConvergesToExact(t *testing.T) {
	spot := Spot{Hole: engine.MustCards("Ah", "Tc"), Board: engine.MustCards("Td", "7s", "4h", "2c", "Kd"), Opponents: 1}
	exact, err := Exact(spot)
	if err != nil {
		t.Fatalf("Exact: %v", err)
	}
	mc, err := Estimate(spot, 5000, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if math.Abs(mc.Equity-exact.Equity) > 0.03 {
		t.Fatalf("Monte Carlo %.4f too far from exact %.4f", mc.Equity, exact.Equity)
	}
}

func TestEstimateParallel(t *testing.T) {
	spot := Spot{Hole: engine.MustCards("As", "Ah"), Opponents: 1}
	a, err := EstimateParallel(context.Background(), spot, 8000, 4, 77)
	if err != nil {
		t.Fatalf("EstimateParallel: %v", err)
	}
	b, err := EstimateParallel(context.Background(), spot, 8000, 4, 77)
	if err != nil {
		t.Fatalf("EstimateParallel: %v", err)
	}
	if a != b {
		t.Fatalf("parallel run not reproducible: %+v vs %+v", a, b)
	}
	if a.Trials != 8000 {
		t.Fatalf("expected 8000 trials, got %d", a.Trials)
	}
	if math.Abs(a.Equity-0.85) > 0.03 {
		t.Fatalf("parallel AA equity %.4f outside band", a.Equity)
	}
}

func TestPotOdds(t *testing.T) {
	if got := PotOdds(300, 100); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("PotOdds(300,100) = %v, want 0.25", got)
	}
	if PotOdds(300, 0) != 0 {
		t.Fatalf("nothing to call means zero price")
	}
	if !ShouldCall(0.3, 300, 100) || ShouldCall(0.2, 300, 100) {
		t.Fatalf("ShouldCall disagrees with pot odds")
	}
	if ev := CallEV(0.25, 300, 100); math.Abs(ev) > 1e-9 {
		t.Fatalf("break-even call should have zero EV, got %v", ev)
	}
}
