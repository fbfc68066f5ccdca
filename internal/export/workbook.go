package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pable/royaleops/internal/session"
)

// MapNamer resolves map ids to display names.
type MapNamer interface {
	Name(id string) string
}

// Sheet names.
const (
	SheetLeaderboard = "Leaderboard"
	SheetMatches     = "Matches"
	SheetPlayers     = "Players"
	SheetSeries      = "Series"
)

// Workbook builds an xlsx snapshot of s. Battle-royale sessions get the leaderboard,
// per-match scores and player analyses; series sessions get the series history.
func Workbook(s *session.Session, maps MapNamer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	var sheets []string
	switch s.Kind {
	case session.KindSeries:
		sheets = []string{SheetSeries}
	default:
		sheets = []string{SheetLeaderboard, SheetMatches, SheetPlayers}
	}
	if err := f.SetSheetName("Sheet1", sheets[0]); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	var err error
	if s.Kind == session.KindSeries {
		err = writeSeries(f, s, maps)
	} else {
		err = writeBattleRoyale(f, s, maps)
	}
	if err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeBattleRoyale(f *excelize.File, s *session.Session, maps MapNamer) error {
	board := [][]any{{"Pos", "Team", "Played", "Booyah", "Placement", "Kills", "Total"}}
	for i, r := range s.Leaderboard() {
		board = append(board, []any{i + 1, r.Name, r.MatchesPlayed, r.Booyahs, r.PlacementPoints, r.KillPoints, r.TotalPoints})
	}
	if err := writeRows(f, SheetLeaderboard, board); err != nil {
		return err
	}

	header := []any{"Team"}
	for _, m := range s.Matches {
		label := fmt.Sprintf("M%d", m.Index+1)
		if m.MapID != "" {
			label += " " + maps.Name(m.MapID)
		}
		header = append(header, label+" rank", label+" kills")
	}
	matches := [][]any{header}
	for _, t := range s.Teams {
		row := []any{t.Name}
		for _, m := range s.Matches {
			sc, ok := m.Scores[t.ID]
			if !ok || !sc.Scored() {
				row = append(row, nil, nil)
				continue
			}
			row = append(row, sc.Rank, sc.Kills)
		}
		matches = append(matches, row)
	}
	if err := writeRows(f, SheetMatches, matches); err != nil {
		return err
	}

	teamNames := make(map[string]string, len(s.Teams))
	for _, t := range s.Teams {
		teamNames[t.ID] = t.Name
	}
	players := [][]any{{"Player", "Team", "Match", "Kills", "Damage", "Time alive", "MVP"}}
	for _, p := range s.MVPs() {
		players = append(players, []any{p.Name, teamNames[p.TeamID], p.MatchIndex + 1, p.Kills, p.Damage, p.TimeAlive, p.MVPScore})
	}
	return writeRows(f, SheetPlayers, players)
}

func writeSeries(f *excelize.File, s *session.Session, maps MapNamer) error {
	if s.Series == nil {
		return writeRows(f, SheetSeries, [][]any{{"Series not started"}})
	}
	st := *s.Series
	rows := [][]any{
		{"Format", fmt.Sprintf("MD%d", st.BestOf), "Rounds", st.RoundsFormat, "Draft", st.PickBanMode},
		{"Series", st.SeriesScore.A, st.SeriesScore.B},
		{"History"},
		{"Match", "Map", "Winner", "Bans A", "Bans B", "Picks A", "Picks B"},
	}
	for _, h := range st.History {
		rows = append(rows, []any{
			h.MatchIndex + 1,
			maps.Name(h.MapID),
			"Side " + h.Winner.String(),
			strings.Join(h.Draft.BansA, ", "),
			strings.Join(h.Draft.BansB, ", "),
			strings.Join(h.Draft.PicksA, ", "),
			strings.Join(h.Draft.PicksB, ", "),
		})
	}
	return writeRows(f, SheetSeries, rows)
}

