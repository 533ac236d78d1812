package opponent

import "sort"

// Model owns the profiles for one match, keyed by adversary name. It is not
// safe for concurrent writers; the match applies events in order.
type Model struct {
	capacity int
	profiles map[string]*Profile
}

func NewModel(capacity int) *Model {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Model{capacity: capacity, profiles: map[string]*Profile{}}
}

// Profile returns the named profile, creating it on first use.
func (m *Model) Profile(name string) *Profile {
	p, ok := m.profiles[name]
	if !ok {
		p = NewProfile(name, m.capacity)
		m.profiles[name] = p
	}
	return p
}

// Lookup returns the named profile without creating it.
func (m *Model) Lookup(name string) (*Profile, bool) {
	p, ok := m.profiles[name]
	return p, ok
}

// Observe records one action by name and returns the updated profile.
func (m *Model) Observe(name string, c Category) *Profile {
	p := m.Profile(name)
	p.Update(c)
	return p
}

func (m *Model) Names() []string {
	out := make([]string, 0, len(m.profiles))
	for n := range m.profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Snapshot is a serialisable view of a profile.
type Snapshot struct {
	Name         string           `json:"name"`
	Counts       map[Category]int `json:"counts"`
	Recent       []Category       `json:"recent"`
	Trust        float64          `json:"trust"`
	Aggression   float64          `json:"aggression"`
	Tightness    float64          `json:"tightness"`
	Observations int              `json:"observations"`
}

func (p *Profile) Snapshot() Snapshot {
	counts := make(map[Category]int, len(p.Counts))
	for k, v := range p.Counts {
		counts[k] = v
	}
	return Snapshot{
		Name:         p.Name,
		Counts:       counts,
		Recent:       p.Recent(),
		Trust:        p.trust,
		Aggression:   p.aggression,
		Tightness:    p.Tightness(),
		Observations: p.total,
	}
}

// Snapshots returns every profile sorted by name.
func (m *Model) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(m.profiles))
	for _, n := range m.Names() {
		out = append(out, m.profiles[n].Snapshot())
	}
	return out
}
