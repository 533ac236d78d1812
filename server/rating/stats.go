package rating

import (
	"math"
	"math/rand"
	"sort"
)

// Record tallies one side's results, split by whether it moved first.
type Record struct {
	Wins, Losses, Draws int
	FirstGames          int
	FirstWins           int
}

// Add records one game scored s (1, 0.5 or 0).
func (r *Record) Add(s float64, first bool) {
	switch {
	case s > 0.5:
		r.Wins++
	case s < 0.5:
		r.Losses++
	default:
		r.Draws++
	}
	if first {
		r.FirstGames++
		if s > 0.5 {
			r.FirstWins++
		}
	}
}

func (r Record) Games() int { return r.Wins + r.Losses + r.Draws }

// Score is the mean result with draws as half a win.
func (r Record) Score() float64 {
	n := r.Games()
	if n == 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Draws)) / float64(n)
}

// WilsonCI95 bounds the win rate over total games, draws counting half.
func WilsonCI95(wins, draws, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(draws)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 bounds the mean of vals (per-game scores or chip margins)
// using B resamples drawn from rng.
func BootstrapCI95(vals []float64, B int, rng *rand.Rand) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[rng.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	return res[int(0.025*float64(B-1))], res[int(0.975*float64(B-1))]
}
