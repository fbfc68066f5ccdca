package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/series"
	"github.com/pable/royaleops/internal/session"
)

// MapNamer resolves map ids to display names.
type MapNamer interface {
	Name(id string) string
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// PrintSessionHeader prints a one-line summary header for the session.
func PrintSessionHeader(w io.Writer, s *session.Session) {
	fmt.Fprintf(w, "\n%s  |  %s  |  %s  |  Teams: %d  |  Updated: %s  |  ID: %s\n\n",
		s.Name, s.Kind, s.Status, len(s.Teams), s.UpdatedAt.Format("2006-01-02 15:04"), s.ID[:8])
}

// PrintSessionList prints one row per stored session.
func PrintSessionList(w io.Writer, list []model.SessionSummary) {
	table := newTable(w)
	table.Header("ID", "NAME", "KIND", "STATUS", "TEAMS", "MATCHES", "UPDATED")
	for _, s := range list {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append(
			id,
			s.Name,
			s.Kind,
			s.Status,
			strconv.Itoa(s.Teams),
			strconv.Itoa(s.Matches),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// PrintRoster prints the registered teams in registration order.
func PrintRoster(w io.Writer, teams []model.Team) {
	table := newTable(w)
	table.Header("#", "ID", "TEAM", "COLOR")
	for i, t := range teams {
		table.Append(strconv.Itoa(i+1), t.ID, t.Name, string(t.Color))
	}
	table.Render()
}

// PrintMatchSheets prints one row per team and one RANK/K column pair per match.
// Unscored cells show a dash.
func PrintMatchSheets(w io.Writer, s *session.Session, maps MapNamer) {
	if len(s.Matches) == 0 {
		fmt.Fprintln(w, "(no matches scheduled)")
		return
	}

	header := []any{"TEAM"}
	for _, m := range s.Matches {
		label := fmt.Sprintf("M%d", m.Index+1)
		if m.MapID != "" {
			label += " " + strings.ToUpper(maps.Name(m.MapID))
		}
		header = append(header, label, "K")
	}
	table := newTable(w)
	table.Header(header...)

	for _, t := range s.Teams {
		row := []any{t.Name}
		for _, m := range s.Matches {
			sc, ok := m.Scores[t.ID]
			if !ok || !sc.Scored() {
				row = append(row, "—", "—")
				continue
			}
			row = append(row, "#"+strconv.Itoa(sc.Rank), strconv.Itoa(sc.Kills))
		}
		table.Append(row...)
	}
	table.Render()
}

// PrintLeaderboard prints the standings in the order given.
func PrintLeaderboard(w io.Writer, rows []model.ProcessedScore) {
	table := newTable(w)
	table.Header("POS", "TEAM", "PLAYED", "BOOYAH", "PLACE_PTS", "KILL_PTS", "TOTAL")
	for i, r := range rows {
		table.Append(
			strconv.Itoa(i+1),
			r.Name,
			strconv.Itoa(r.MatchesPlayed),
			strconv.Itoa(r.Booyahs),
			strconv.Itoa(r.PlacementPoints),
			strconv.Itoa(r.KillPoints),
			strconv.Itoa(r.TotalPoints),
		)
	}
	table.Render()
}

// PrintPlayers prints player analyses in the order given, marking the first row as MVP.
// Players outside the roster show a dash for their team.
func PrintPlayers(w io.Writer, players []model.PlayerAnalysis, teams []model.Team, limit int) {
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	table := newTable(w)
	table.Header(" ", "PLAYER", "TEAM", "MATCH", "K", "DMG", "ALIVE", "MVP")
	for i, p := range players {
		if limit > 0 && i >= limit {
			break
		}
		marker := " "
		if i == 0 {
			marker = "★"
		}
		table.Append(
			marker,
			p.Name,
			dash(names[p.TeamID]),
			strconv.Itoa(p.MatchIndex+1),
			strconv.Itoa(p.Kills),
			fmt.Sprintf("%.0f", p.Damage),
			fmt.Sprintf("%.0fs", p.TimeAlive),
			fmt.Sprintf("%.2f", p.MVPScore),
		)
	}
	table.Render()
}

// PrintDraftBoard prints bans and picks side by side, followed by the awaited action.
func PrintDraftBoard(w io.Writer, d model.DraftState, next model.Action, hasNext bool) {
	table := newTable(w)
	table.Header("SLOT", "SIDE A", "SIDE B")

	table.Append("BAN", dash(strings.Join(d.BansA, ", ")), dash(strings.Join(d.BansB, ", ")))
	rows := max(len(d.PicksA), len(d.PicksB), 1)
	for i := 0; i < rows; i++ {
		a, b := "", ""
		if i < len(d.PicksA) {
			a = d.PicksA[i]
		}
		if i < len(d.PicksB) {
			b = d.PicksB[i]
		}
		table.Append("PICK "+strconv.Itoa(i+1), dash(a), dash(b))
	}
	table.Render()

	switch {
	case d.IsComplete:
		fmt.Fprintln(w, "Draft complete.")
	case hasNext:
		fmt.Fprintf(w, "Turn %d: %s\n", d.TurnIndex+1, next)
	}
}

// PrintSeries prints the series header, the per-match history and the live match.
func PrintSeries(w io.Writer, st model.SeriesState, maps MapNamer) {
	fmt.Fprintf(w, "\nMD%d  |  %d rounds  |  %s draft  |  maps: %s  |  Series A %d – %d B\n\n",
		st.BestOf, st.RoundsFormat, st.PickBanMode, st.MapStrategy, st.SeriesScore.A, st.SeriesScore.B)

	table := newTable(w)
	table.Header("MATCH", "MAP", "WINNER", "A PICKS", "B PICKS")
	for _, h := range st.History {
		table.Append(
			strconv.Itoa(h.MatchIndex+1),
			dash(maps.Name(h.MapID)),
			h.Winner.String(),
			dash(strings.Join(h.Draft.PicksA, ", ")),
			dash(strings.Join(h.Draft.PicksB, ", ")),
		)
	}
	table.Render()

	if st.Complete {
		if side, ok := series.Winner(st); ok {
			fmt.Fprintf(w, "Series complete. Winner: side %s\n", side)
		} else {
			fmt.Fprintln(w, "Series complete.")
		}
		return
	}
	fmt.Fprintf(w, "Match %d on %s  |  Rounds A %d – %d B (first to %d)\n",
		st.CurrentMatchIndex+1, dash(maps.Name(st.CurrentMap())),
		st.MatchRoundScore.A, st.MatchRoundScore.B, series.WinCap(st.RoundsFormat))
}

// PrintFallbackWarning prints the teams that were given rank 1 without an elimination
// record, when there is more than one.
func PrintFallbackWarning(w io.Writer, fallback []string, teams []model.Team) {
	if len(fallback) < 2 {
		return
	}
	names := make([]string, 0, len(fallback))
	for _, id := range fallback {
		for _, t := range teams {
			if t.ID == id {
				names = append(names, t.Name)
			}
		}
	}
	fmt.Fprintf(w, "warning: %d teams have no elimination record and share rank 1: %s\n",
		len(fallback), strings.Join(names, ", "))
}
