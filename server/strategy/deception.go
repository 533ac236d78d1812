package strategy

import (
	"fmt"
	"math"

	"github.com/saint2706/Games-sub001/server/opponent"
)

// priorBluff turns the opponent's recent honesty into a prior that they are
// lying now. Only the last SuspicionMemory observations count.
func (s *Selector) priorBluff(model *opponent.Profile) float64 {
	if model == nil {
		return 0.5
	}
	recent := model.Recent()
	if n := s.Profile.SuspicionMemory; n > 0 && len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	if len(recent) == 0 {
		return 0.5
	}
	honest := 0
	for _, c := range recent {
		if c.Honest() {
			honest++
		}
	}
	trust := float64(honest) / float64(len(recent))
	return math.Max(0.05, math.Min(0.95, 1-trust))
}

// claimLikelihoods returns P(claim | bluff) and P(claim | honest). A claim
// needing more copies than can be outside our hand is impossible when honest.
func claimLikelihoods(spot *ClaimSpot) (likeBluff, likeHonest float64) {
	copies := spot.CopiesEach
	if copies <= 0 {
		copies = 4
	}
	held := 0
	for _, r := range spot.Hand {
		if r == spot.Against.Rank {
			held++
		}
	}
	avail := copies - held
	if spot.Against.Count > avail {
		return 1, 0
	}
	return 1, math.Pow(float64(avail)/float64(copies), float64(spot.Against.Count))
}

func (s *Selector) chooseClaim(sit Situation, model *opponent.Profile) (Decision, error) {
	spot := sit.Claim
	if spot == nil {
		return Decision{}, fmt.Errorf("%w: hybrid needs a claim spot", ErrMissingPayload)
	}
	if spot.Against != nil {
		return s.respondToClaim(sit, model)
	}
	return s.makeClaim(sit, model)
}

func (s *Selector) respondToClaim(sit Situation, model *opponent.Profile) (Decision, error) {
	spot := sit.Claim
	prior := s.priorBluff(model)
	lb, lh := claimLikelihoods(spot)
	post, err := opponent.BayesUpdate(prior, lb, lh)
	if err != nil {
		s.logf("bayes update: %v; keeping prior %.2f", err, prior)
	}
	pile := math.Min(float64(spot.PileSize), 10)
	threshold := 0.5 + (0.5-s.Profile.ChallengeFrequency)*0.6 + 0.02*pile

	d := Decision{Algorithm: Hybrid}
	trust := 1 - prior
	if post > threshold {
		if a, ok := firstOf(sit.Legal, Challenge); ok {
			d.Action = a
			d.Explanation = fmt.Sprintf("trust %.2f, P(bluff)=%.2f above %.2f: challenge", trust, post, threshold)
			return d, nil
		}
	}
	if a, ok := firstOf(sit.Legal, Accept); ok {
		d.Action = a
		d.Explanation = fmt.Sprintf("trust %.2f, P(bluff)=%.2f within %.2f: accept", trust, post, threshold)
		return d, nil
	}
	d.Action = sit.Legal[0]
	d.Explanation = "no accept option"
	return d, nil
}

// makeClaim prefers the largest honest claim. It bluffs when it has no honest
// option, or at the profile's bluff frequency scaled down by how likely the
// opponent is to challenge; a bluff claims as few cards as possible.
func (s *Selector) makeClaim(sit Situation, model *opponent.Profile) (Decision, error) {
	var honest, bluff *Action
	for i := range sit.Legal {
		a := &sit.Legal[i]
		if a.Kind != Claim {
			continue
		}
		if a.Bluff {
			if bluff == nil || a.Count < bluff.Count {
				bluff = a
			}
		} else if honest == nil || a.Count > honest.Count {
			honest = a
		}
	}

	pChallenge := 0.5
	if model != nil && model.Observations() > 0 {
		n := 1
		if bluff != nil {
			n = bluff.Count
		}
		d := model.Predict([]opponent.Category{opponent.Challenge, opponent.Accept}, opponent.Context{ClaimCount: n})
		pChallenge = d[opponent.Challenge]
	}

	d := Decision{Algorithm: Hybrid}
	switch {
	case honest == nil && bluff != nil:
		d.Action = *bluff
		d.Explanation = fmt.Sprintf("nothing to claim honestly; %s", d.Action)
	case honest != nil && bluff != nil && s.rng.Float64() < s.Profile.BluffFrequency*2*(1-pChallenge):
		d.Action = *bluff
		d.Explanation = fmt.Sprintf("opponent challenges %.0f%% of the time; %s", pChallenge*100, d.Action)
	case honest != nil:
		d.Action = *honest
		d.Explanation = fmt.Sprintf("honest %s", d.Action)
	default:
		d.Action = sit.Legal[0]
		d.Explanation = "no claim options"
	}
	return d, nil
}
