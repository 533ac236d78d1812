package rating

import "math"

// Glicko-2 constants (Glickman's paper values).
const (
	g2Scale = 173.7178 // r <-> mu
	pi2     = math.Pi * math.Pi

	DefaultTau = 0.5
)

// Glicko2 holds the public 1500-scale values.
type Glicko2 struct {
	Rating     float64 `json:"rating"`
	RD         float64 `json:"rd"`
	Volatility float64 `json:"volatility"`
	Games      int     `json:"games"` // rating periods applied
}

func NewGlicko2() *Glicko2 {
	return &Glicko2{Rating: 1500, RD: 350, Volatility: 0.06}
}

// NewGlicko2With seeds a player from stored values.
func NewGlicko2With(r, rd, sigma float64) *Glicko2 {
	return &Glicko2{Rating: r, RD: rd, Volatility: sigma}
}

func (a *Glicko2) Copy() *Glicko2 {
	cp := *a
	return &cp
}

func toMuPhi(r, rd float64) (mu, phi float64)   { return (r - 1500.0) / g2Scale, rd / g2Scale }
func fromMuPhi(mu, phi float64) (r, rd float64) { return mu*g2Scale + 1500.0, phi * g2Scale }

func g(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*phi*phi/pi2) }

func expected(mu, muj, phij float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phij)*(mu-muj)))
}

// Result is one opponent's aggregate score over a rating period, S in [0,1].
type Result struct {
	Opp *Glicko2
	S   float64
}

// Age applies an idle period: RD grows with volatility, the rating stays.
func (a *Glicko2) Age() {
	phi := a.RD / g2Scale
	a.RD = math.Sqrt(phi*phi+a.Volatility*a.Volatility) * g2Scale
	a.Games++
}

// Update is the rating-period update against every opponent faced. Opponent
// values must be those from the start of the period.
func (a *Glicko2) Update(results []Result, tau float64) {
	if len(results) == 0 {
		a.Age()
		return
	}
	mu, phi := toMuPhi(a.Rating, a.RD)

	var sumG2E, sumGSE float64 // Σ g²E(1-E), Σ g(S-E)
	for _, r := range results {
		muB, phiB := toMuPhi(r.Opp.Rating, r.Opp.RD)
		gB := g(phiB)
		e := expected(mu, muB, phiB)
		sumG2E += gB * gB * e * (1.0 - e)
		sumGSE += gB * (r.S - e)
	}
	v := 1.0 / sumG2E
	delta := v * sumGSE

	sigma := newVolatility(phi, v, delta, a.Volatility, tau)
	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muNew := mu + phiNew*phiNew*sumGSE

	a.Rating, a.RD = fromMuPhi(muNew, phiNew)
	a.Volatility = sigma
	a.Games++
}

// newVolatility solves f(x)=0 for the new sigma with the Illinois method.
func newVolatility(phi, v, delta, sigma, tau float64) float64 {
	a0 := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		den := 2.0 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/den - (x-a0)/(tau*tau)
	}

	A := a0
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a0-k*tau) < 0 && k < 1e6 {
			k++
		}
		B = a0 - k*tau
	}
	fA, fB := f(A), f(B)
	for it := 0; it < 100 && math.Abs(B-A) > 1e-6; it++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			break
		}
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2.0)
}

// UpdatePair is Update with a single opponent.
func (a *Glicko2) UpdatePair(b *Glicko2, S, tau float64) {
	a.Update([]Result{{Opp: b, S: S}}, tau)
}

// ScoreFromOutcome maps a game result to S: win 1, draw 0.5, loss 0.
func ScoreFromOutcome(win, draw bool) float64 {
	if draw {
		return 0.5
	}
	if win {
		return 1.0
	}
	return 0.0
}

// ScoreFromMargin maps a chip margin normalised by effStack to S in [0,1]
// through tanh; k sets the steepness.
func ScoreFromMargin(chipsA int, effStack, k float64) float64 {
	if effStack <= 0 {
		return 0.5
	}
	return 0.5 + 0.5*math.Tanh(k*float64(chipsA)/effStack)
}
