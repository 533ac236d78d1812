// Package rating scores duel results: Elo and Glicko-2 ratings plus
// confidence intervals on the win rate.
package rating

import "math"

// Elo holds the ratings of side A and B across one match.
type Elo struct {
	A, B  float64
	K     float64 // base K
	Games int
}

func NewElo(start, k float64) Elo { return Elo{A: start, B: start, K: k} }

// Expect returns each side's expected score.
func (e Elo) Expect() (ea, eb float64) {
	ea = 1.0 / (1.0 + math.Pow(10, (e.B-e.A)/400.0))
	return ea, 1.0 - ea
}

// Update applies one game with score sa for A (1 win, 0.5 draw, 0 loss) and
// returns the applied deltas. K anneals slowly over the match.
func (e *Elo) Update(sa float64) (dA, dB float64) {
	ea, eb := e.Expect()
	k := e.K * decay(e.Games)
	dA = k * (sa - ea)
	dB = k * ((1 - sa) - eb)
	e.A += dA
	e.B += dB
	e.Games++
	return dA, dB
}

// UpdateFromChips scores a hold'em hand by chip margin rather than by
// win/loss: the score is a tanh of the margin in big blinds and K is
// tempered by the pot size and the margin.
func (e *Elo) UpdateFromChips(chipsA, pot, bb int) (dA, dB float64) {
	ea, eb := e.Expect()

	const lambdaBB = 6.0
	sA := 0.5 + 0.5*math.Tanh(float64(chipsA)/(lambdaBB*float64(max(bb, 1))))

	k := e.K * potScale(pot, bb) * marginScale(chipsA, bb) * decay(e.Games)
	dA = k * (sA - ea)
	dB = k * ((1 - sA) - eb)
	e.A += dA
	e.B += dB
	e.Games++
	return dA, dB
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func potScale(pot, bb int) float64 {
	if bb <= 0 || pot <= 0 {
		return 1.0
	}
	return clamp(float64(pot)/(2.0*float64(bb)), 0.5, 3.0)
}

func marginScale(chipsA, bb int) float64 {
	if bb <= 0 {
		return 1.0
	}
	m := math.Abs(float64(chipsA)) / float64(bb)
	return 1.0 + 0.35*math.Tanh(m/8.0) // at most ~1.35
}

func decay(games int) float64 {
	return 1.0 / (1.0 + 0.01*float64(games))
}
