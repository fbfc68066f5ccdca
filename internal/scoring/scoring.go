// Package scoring joins aggregated replay statistics with the registered roster: it
// assigns each team a placement and scores each player for MVP.
package scoring

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pable/royaleops/internal/model"
)

// MVP weights.
const (
	killWeight      = 3.0
	damageDivisor   = 300.0
	survivalDivisor = 200.0
)

// MVPScore is kills*3 + damage/300 + timeAlive/200.
func MVPScore(kills int, damage, timeAlive float64) float64 {
	return float64(kills)*killWeight + damage/damageDivisor + timeAlive/survivalDivisor
}

// Result is the outcome of resolving one replay against a roster.
type Result struct {
	// Scores is keyed by team id and holds an entry for every roster team.
	Scores map[string]model.MatchScore
	// Players is keyed by player name.
	Players map[string]model.PlayerAnalysis
	// FallbackTeams lists the ids of teams absent from the elimination list, which were
	// all given rank 1. More than one entry means the log was incomplete.
	FallbackTeams []string
}

// Ambiguous reports whether more than one team fell back to rank 1.
func (r Result) Ambiguous() bool { return len(r.FallbackTeams) > 1 }

type elimination struct {
	team string
	time float64
}

// Resolve ranks every roster team and scores every player.
//
// Teams are ordered by elimination time, latest first. The team at position i of that
// order gets rank i+2; a team that was never eliminated gets rank 1. Team names are
// matched case-insensitively, both against the elimination list and against player
// tags.
func Resolve(players map[string]model.PlayerStat, eliminations map[string]float64, roster []model.Team) Result {
	order := make([]elimination, 0, len(eliminations))
	for team, t := range eliminations {
		order = append(order, elimination{team: team, time: t})
	}
	slices.SortFunc(order, func(a, b elimination) int {
		if c := cmp.Compare(b.time, a.time); c != 0 {
			return c
		}
		return cmp.Compare(a.team, b.team)
	})

	res := Result{
		Scores:  make(map[string]model.MatchScore, len(roster)),
		Players: make(map[string]model.PlayerAnalysis, len(players)),
	}

	for _, team := range roster {
		rank := 1
		idx := slices.IndexFunc(order, func(e elimination) bool {
			return strings.EqualFold(e.team, team.Name)
		})
		if idx >= 0 {
			rank = idx + 2
		} else {
			res.FallbackTeams = append(res.FallbackTeams, team.ID)
		}

		score := model.MatchScore{
			TeamID:      team.ID,
			Rank:        rank,
			PlayerKills: make(map[string]int),
		}
		for _, p := range players {
			if p.TeamTag == model.UnaffiliatedTag || !strings.EqualFold(p.TeamTag, team.Name) {
				continue
			}
			score.Kills += p.Kills
			score.PlayerKills[p.Name] = p.Kills
		}
		res.Scores[team.ID] = score
	}

	for name, p := range players {
		alive := p.TimeAlive()
		a := model.PlayerAnalysis{
			PlayerStat: p,
			MVPScore:   MVPScore(p.Kills, p.Damage, alive),
			TimeAlive:  alive,
		}
		if p.TeamTag != model.UnaffiliatedTag {
			if i := slices.IndexFunc(roster, func(t model.Team) bool {
				return strings.EqualFold(t.Name, p.TeamTag)
			}); i >= 0 {
				a.TeamID = roster[i].ID
			}
		}
		res.Players[name] = a
	}

	return res
}

// RankPlayers returns analyses sorted by MVP score, then kills, then name.
func RankPlayers(in map[string]model.PlayerAnalysis) []model.PlayerAnalysis {
	out := make([]model.PlayerAnalysis, 0, len(in))
	for _, a := range in {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b model.PlayerAnalysis) int {
		if c := cmp.Compare(b.MVPScore, a.MVPScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Kills, a.Kills); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
