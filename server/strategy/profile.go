package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownProfile = errors.New("unknown profile")

// Profile is a difficulty level or personality. It is chosen once per game
// and never mutated.
type Profile struct {
	Name               string  `json:"name"`
	MistakeRate        float64 `json:"mistake_rate"`        // chance of a uniformly random legal action
	Aggression         float64 `json:"aggression"`          // 0..1, lowers the value-raise threshold
	BluffFrequency     float64 `json:"bluff_frequency"`     // 0..1
	ChallengeFrequency float64 `json:"challenge_frequency"` // 0..1, lowers the challenge threshold
	SearchDepth        int     `json:"search_depth"`
	Simulations        int     `json:"simulations"`
	SuspicionMemory    int     `json:"suspicion_memory"` // recent observations weighed for trust
}

func (p Profile) Validate() error {
	unit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("profile %q: %s %.3f outside [0,1]", p.Name, name, v)
		}
		return nil
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile without a name")
	}
	for _, e := range []error{
		unit("mistake_rate", p.MistakeRate),
		unit("aggression", p.Aggression),
		unit("bluff_frequency", p.BluffFrequency),
		unit("challenge_frequency", p.ChallengeFrequency),
	} {
		if e != nil {
			return e
		}
	}
	if p.SearchDepth < 1 {
		return fmt.Errorf("profile %q: search_depth must be at least 1", p.Name)
	}
	if p.Simulations < 1 {
		return fmt.Errorf("profile %q: simulations must be at least 1", p.Name)
	}
	if p.SuspicionMemory < 1 {
		return fmt.Errorf("profile %q: suspicion_memory must be at least 1", p.Name)
	}
	return nil
}

// Builtin difficulties and personalities.
var builtin = []Profile{
	{Name: "easy", MistakeRate: 0.35, Aggression: 0.3, BluffFrequency: 0.05, ChallengeFrequency: 0.3, SearchDepth: 2, Simulations: 200, SuspicionMemory: 3},
	{Name: "medium", MistakeRate: 0.15, Aggression: 0.5, BluffFrequency: 0.1, ChallengeFrequency: 0.5, SearchDepth: 4, Simulations: 1000, SuspicionMemory: 6},
	{Name: "hard", MistakeRate: 0.05, Aggression: 0.6, BluffFrequency: 0.15, ChallengeFrequency: 0.5, SearchDepth: 6, Simulations: 3000, SuspicionMemory: 10},
	{Name: "expert", MistakeRate: 0, Aggression: 0.65, BluffFrequency: 0.2, ChallengeFrequency: 0.55, SearchDepth: 9, Simulations: 10000, SuspicionMemory: 10},
	{Name: "maniac", MistakeRate: 0.1, Aggression: 0.95, BluffFrequency: 0.45, ChallengeFrequency: 0.8, SearchDepth: 3, Simulations: 500, SuspicionMemory: 4},
	{Name: "rock", MistakeRate: 0.05, Aggression: 0.15, BluffFrequency: 0.02, ChallengeFrequency: 0.2, SearchDepth: 5, Simulations: 2000, SuspicionMemory: 10},
	{Name: "trickster", MistakeRate: 0.08, Aggression: 0.6, BluffFrequency: 0.35, ChallengeFrequency: 0.65, SearchDepth: 4, Simulations: 1500, SuspicionMemory: 8},
}

// Registry holds named profiles; overrides replace builtins by name.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry starts from the builtin profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: map[string]Profile{}}
	for _, p := range builtin {
		r.profiles[p.Name] = p
	}
	return r
}

// Merge validates and installs each profile, replacing any of the same name.
func (r *Registry) Merge(ps ...Profile) error {
	for _, p := range ps {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if err := p.Validate(); err != nil {
			return err
		}
		r.profiles[p.Name] = p
	}
	return nil
}

func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) All() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, n := range r.Names() {
		out = append(out, r.profiles[n])
	}
	return out
}

// Lookup finds a builtin profile by name.
func Lookup(name string) (Profile, error) { return NewRegistry().Get(name) }
