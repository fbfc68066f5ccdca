// Package leaderboard folds per-match battle-royale results into session standings.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/pable/royaleops/internal/model"
)

// placementPoints is indexed by rank; ranks past the table score nothing.
var placementPoints = [...]int{0, 12, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// PlacementPoints returns the points awarded for finishing at rank.
func PlacementPoints(rank int) int {
	if rank <= 0 || rank >= len(placementPoints) {
		return 0
	}
	return placementPoints[rank]
}

// Compute recomputes the standings from scratch. scores is keyed by match index, then
// team id. Only entries with a positive rank count. Rows are ordered by total points,
// then booyahs, both descending; remaining ties keep roster order.
func Compute(roster []model.Team, scores map[int]map[string]model.MatchScore) []model.ProcessedScore {
	matchIdx := make([]int, 0, len(scores))
	for m := range scores {
		matchIdx = append(matchIdx, m)
	}
	slices.Sort(matchIdx)

	rows := make([]model.ProcessedScore, 0, len(roster))
	for _, team := range roster {
		row := model.ProcessedScore{TeamID: team.ID, Name: team.Name, Color: team.Color}
		for _, m := range matchIdx {
			s, ok := scores[m][team.ID]
			if !ok || !s.Scored() {
				continue
			}
			pp := PlacementPoints(s.Rank)
			row.MatchesPlayed++
			row.PlacementPoints += pp
			row.KillPoints += s.Kills
			row.TotalPoints += pp + s.Kills
			row.TotalKills += s.Kills
			if s.Rank == 1 {
				row.Booyahs++
			}
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b model.ProcessedScore) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		return cmp.Compare(b.Booyahs, a.Booyahs)
	})
	return rows
}
