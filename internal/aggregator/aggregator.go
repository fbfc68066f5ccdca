package aggregator

import (
	"strings"

	"github.com/pable/royaleops/internal/model"
)

// DefaultSeparators are the characters that may sit between a team tag and the
// in-game player name, e.g. "ABC.Sniper" or "ABC•Sniper".
const DefaultSeparators = ".•|丶"

// Options tune how player names are attributed to teams.
type Options struct {
	// Separators lists the runes accepted between tag and name. Empty means DefaultSeparators.
	Separators string
}

func (o Options) separators() string {
	if o.Separators == "" {
		return DefaultSeparators
	}
	return o.Separators
}

// TeamTag returns the prefix of name before the first separator, or UnaffiliatedTag
// when name has no separator.
func TeamTag(name string, opts Options) string {
	idx := strings.IndexAny(name, opts.separators())
	if idx < 0 {
		return model.UnaffiliatedTag
	}
	return name[:idx]
}

// createsRecord reports whether an event of kind introduces a player not seen before.
func createsRecord(k model.EventKind) bool {
	return k == model.EventDamage || k == model.EventKill || k == model.EventPlayerPresence
}

// Aggregate folds replay events, in input order, into per-player statistics and the
// elimination time of each team.
//
// Player records are only created by damage, kill and presence events. Every later
// event naming a known player widens its first/last event window. Events are not
// re-sorted; the window is computed from each event's own time.
func Aggregate(events []model.ReplayEvent, opts Options) (map[string]model.PlayerStat, map[string]float64) {
	players := make(map[string]*model.PlayerStat)
	eliminations := make(map[string]float64)

	for _, e := range events {
		p, known := players[e.Subject]
		if !known && createsRecord(e.Kind) {
			p = &model.PlayerStat{
				Name:           e.Subject,
				TeamTag:        TeamTag(e.Subject, opts),
				FirstEventTime: e.Time,
				LastEventTime:  e.Time,
			}
			players[e.Subject] = p
			known = true
		}

		if known {
			p.FirstEventTime = min(p.FirstEventTime, e.Time)
			p.LastEventTime = max(p.LastEventTime, e.Time)

			switch e.Kind {
			case model.EventDamage:
				if e.HasValue {
					p.Damage += e.Value
				}
			case model.EventKill:
				p.Kills++
			}
		}

		if e.Kind == model.EventTeamEliminated {
			eliminations[e.Subject] = e.Time
		}
	}

	out := make(map[string]model.PlayerStat, len(players))
	for name, p := range players {
		out[name] = *p
	}
	return out, eliminations
}
