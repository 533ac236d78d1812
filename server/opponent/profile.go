// Package opponent keeps per-adversary behaviour statistics for one match.
package opponent

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Category is an observed action class, shared across games.
type Category string

const (
	Fold      Category = "fold"
	Check     Category = "check"
	Call      Category = "call"
	Raise     Category = "raise"
	Truthful  Category = "truthful"
	Bluff     Category = "bluff"
	Challenge Category = "challenge"
	Accept    Category = "accept"
)

var categories = []Category{Fold, Check, Call, Raise, Truthful, Bluff, Challenge, Accept}

var ErrUnknownCategory = errors.New("unknown category")

func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownCategory, s)
}

// Honest reports whether the category counts toward trust. Trust measures
// deception only: raises and caught bluffs lower it. A challenge is pressure
// but not a lie, so it raises aggression and still counts as honest.
func (c Category) Honest() bool { return c != Raise && c != Bluff }

// aggressive marks the categories that put pressure on the other player.
func (c Category) aggressive() bool { return c == Raise || c == Bluff || c == Challenge }

const (
	DefaultCapacity = 10
	neutralTrust    = 0.5
)

var ErrDivisionByZero = errors.New("division by zero")

// Profile is one adversary's running record. The recent history is a ring
// buffer; once full, each update evicts the oldest entry.
type Profile struct {
	Name   string
	Counts map[Category]int

	ring  []Category
	head  int // next write position
	size  int
	total int

	trust      float64
	aggression float64
}

func NewProfile(name string, capacity int) *Profile {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Profile{
		Name:   name,
		Counts: map[Category]int{},
		ring:   make([]Category, capacity),
		trust:  neutralTrust,
	}
}

// Update records one observation and recomputes the derived metrics.
func (p *Profile) Update(c Category) {
	p.Counts[c]++
	p.total++
	p.ring[p.head] = c
	p.head = (p.head + 1) % len(p.ring)
	if p.size < len(p.ring) {
		p.size++
	}
	p.recompute()
}

func (p *Profile) recompute() {
	honest := 0
	for _, c := range p.Recent() {
		if c.Honest() {
			honest++
		}
	}
	p.trust = neutralTrust
	if p.size > 0 {
		p.trust = float64(honest) / float64(p.size)
	}
	aggr := 0
	for c, n := range p.Counts {
		if c.aggressive() {
			aggr += n
		}
	}
	p.aggression = 0
	if p.total > 0 {
		p.aggression = float64(aggr) / float64(p.total)
	}
}

// TrustScore is the honest fraction of the recent history, 0.5 with no data.
func (p *Profile) TrustScore() float64 { return p.trust }

// AggressionRatio is the all-time share of raises, bluffs and challenges.
func (p *Profile) AggressionRatio() float64 { return p.aggression }

// Tightness is how often the adversary folds when a betting decision is observed.
func (p *Profile) Tightness() float64 {
	betting := p.Counts[Fold] + p.Counts[Check] + p.Counts[Call] + p.Counts[Raise]
	if betting == 0 {
		return 0
	}
	return float64(p.Counts[Fold]) / float64(betting)
}

// Observations is the all-time number of updates.
func (p *Profile) Observations() int { return p.total }

// Capacity is the ring buffer length.
func (p *Profile) Capacity() int { return len(p.ring) }

// Recent returns the buffered history, oldest first.
func (p *Profile) Recent() []Category {
	out := make([]Category, 0, p.size)
	start := (p.head - p.size + len(p.ring)) % len(p.ring)
	for i := 0; i < p.size; i++ {
		out = append(out, p.ring[(start+i)%len(p.ring)])
	}
	return out
}

// Context carries the situation a prediction is made in.
type Context struct {
	Pot        int
	BigBlind   int
	ClaimCount int // cards claimed in a deception game; 0 when not applicable
}

// pressure maps pot size in big blinds to [0,1]: nothing below 10bb, full at 50bb.
func (c Context) pressure() float64 {
	if c.BigBlind <= 0 || c.Pot <= 0 {
		return 0
	}
	bbs := float64(c.Pot) / float64(c.BigBlind)
	return math.Max(0, math.Min(1, (bbs-10)/40))
}

// Distribution maps each action in the requested space to a probability.
type Distribution map[Category]float64

// Most returns the most likely category (ties broken by name for determinism).
func (d Distribution) Most() Category {
	keys := make([]Category, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	var best Category
	bp := -1.0
	for _, k := range keys {
		if d[k] > bp {
			best, bp = k, d[k]
		}
	}
	return best
}

// Predict blends Laplace-smoothed observed frequencies with situational
// adjustments and renormalises so the result sums to 1. Tight players fold
// more as the pot grows; claims of many cards draw more challenges.
func (p *Profile) Predict(space []Category, ctx Context) Distribution {
	d := Distribution{}
	if len(space) == 0 {
		return d
	}
	seen := 0
	for _, c := range space {
		seen += p.Counts[c]
	}
	for _, c := range space {
		d[c] = float64(p.Counts[c]+1) / float64(seen+len(space))
	}

	if pr := ctx.pressure(); pr > 0 {
		if _, ok := d[Fold]; ok {
			d[Fold] *= 1 + p.Tightness()*pr
		}
		if _, ok := d[Raise]; ok {
			d[Raise] *= 1 + p.aggression*pr*0.5
		}
	}
	if ctx.ClaimCount > 2 {
		if _, ok := d[Challenge]; ok {
			d[Challenge] *= 1 + 0.25*float64(ctx.ClaimCount-2)
		}
	}

	sum := 0.0
	for _, v := range d {
		sum += v
	}
	for c := range d {
		d[c] /= sum
	}
	return d
}

// BayesUpdate returns P(bluff | evidence) from a prior P(bluff) and the two
// likelihoods. When both likelihood terms vanish it returns the prior with
// ErrDivisionByZero.
func BayesUpdate(prior, likeBluff, likeHonest float64) (float64, error) {
	num := likeBluff * prior
	den := num + likeHonest*(1-prior)
	if den == 0 {
		return prior, ErrDivisionByZero
	}
	return num / den, nil
}
