// Package maps holds the static map pool and the per-match map rotation rule.
package maps

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pable/royaleops/internal/model"
)

// Strategy controls how maps are assigned to the matches of a series or session.
type Strategy string

const (
	StrategyNoRepeat Strategy = "no_repeat"
	StrategyRepeat   Strategy = "repeat"
	StrategyFixed    Strategy = "fixed"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNoRepeat, StrategyRepeat, StrategyFixed:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown map strategy %q (want no_repeat, repeat or fixed)", s)
}

// DefaultPool is the built-in map pool.
var DefaultPool = []model.MapEntry{
	{
		ID: "bermuda", Name: "Bermuda", Image: "maps/bermuda.png",
		Callouts: []string{"Clock Tower", "Peak", "Pochinok", "Mars Electric", "Factory",
			"Rim Nam Village", "Bimasakti Strip", "Mill", "Hangar", "Shipyard", "Cape Town", "Observatory"},
	},
	{
		ID: "purgatory", Name: "Purgatory", Image: "maps/purgatory.png",
		Callouts: []string{"Brasilia", "Fire Camp", "Graveyard", "Moathouse", "Central",
			"Quarry", "Mt. Villa", "Skyline", "Golf Course", "Campsite"},
	},
	{
		ID: "kalahari", Name: "Kalahari", Image: "maps/kalahari.png",
		Callouts: []string{"Council Hall", "Refinery", "Bigrock", "Command Post", "Sub-Base",
			"Fortress", "Railway Station"},
	},
	{
		ID: "alpine", Name: "Alpine", Image: "maps/alpine.png",
		Callouts: []string{"Lumber Camp", "Space Center", "Port", "Lakeside", "Harbor"},
	},
	{
		ID: "nexterra", Name: "NeXTerra", Image: "maps/nexterra.png",
		Callouts: []string{"Hyperloop", "Data Center", "Eco Farm", "Sky Garden"},
	},
	{
		ID: "solara", Name: "Solara", Image: "maps/solara.png",
		Callouts: []string{"Harbour", "Sun Temple", "Old Town", "Greenhouse"},
	},
}

// Pool is an ordered set of maps with lookup by id.
type Pool struct {
	entries []model.MapEntry
	byID    map[string]model.MapEntry
}

// NewPool builds a pool. Duplicate ids are rejected.
func NewPool(entries []model.MapEntry) (*Pool, error) {
	p := &Pool{byID: make(map[string]model.MapEntry, len(entries))}
	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("map %q has no id", e.Name)
		}
		if _, dup := p.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate map id %q", e.ID)
		}
		p.byID[e.ID] = e
		p.entries = append(p.entries, e)
	}
	return p, nil
}

// Default returns a pool over DefaultPool.
func Default() *Pool {
	p, _ := NewPool(DefaultPool)
	return p
}

// LoadPool reads a YAML list of maps from path.
func LoadPool(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map pool: %w", err)
	}
	var entries []model.MapEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode map pool: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("map pool %s is empty", path)
	}
	return NewPool(entries)
}

// Entries returns the maps in pool order.
func (p *Pool) Entries() []model.MapEntry {
	out := make([]model.MapEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// IDs returns the map ids in pool order.
func (p *Pool) IDs() []string {
	ids := make([]string, len(p.entries))
	for i, e := range p.entries {
		ids[i] = e.ID
	}
	return ids
}

// Lookup returns the map with the given id.
func (p *Pool) Lookup(id string) (model.MapEntry, bool) {
	e, ok := p.byID[id]
	return e, ok
}

// Name returns the display name of id, or id itself when unknown.
func (p *Pool) Name(id string) string {
	if e, ok := p.byID[id]; ok {
		return e.Name
	}
	return id
}

// Rotate assigns maps to n matches.
//
//	fixed     one map drawn once, repeated n times
//	repeat    independent uniform draw per match
//	no_repeat sampling without replacement; stops short when the pool has fewer than n maps
//
// An empty pool or an unknown strategy yields an empty rotation.
func Rotate(strategy Strategy, pool []string, n int, rng *rand.Rand) []string {
	if len(pool) == 0 || n <= 0 {
		return []string{}
	}
	switch strategy {
	case StrategyFixed:
		pick := pool[rng.IntN(len(pool))]
		out := make([]string, n)
		for i := range out {
			out[i] = pick
		}
		return out
	case StrategyRepeat:
		out := make([]string, n)
		for i := range out {
			out[i] = pool[rng.IntN(len(pool))]
		}
		return out
	case StrategyNoRepeat:
		perm := rng.Perm(len(pool))
		out := make([]string, 0, min(n, len(pool)))
		for _, idx := range perm {
			if len(out) == n {
				break
			}
			out = append(out, pool[idx])
		}
		return out
	}
	return []string{}
}
