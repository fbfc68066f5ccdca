package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/royaleops/internal/export"
	"github.com/pable/royaleops/internal/report"
	"github.com/pable/royaleops/internal/session"
)

var (
	leaderboardPNG  string
	leaderboardXLSX string
	playersLimit    int
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <session>",
	Short: "Show session standings, optionally exporting PNG/xlsx snapshots",
	Long: `Show the standings of a battle-royale session: placement points (12, 9, 8 ... 1
for ranks 1-10) plus one point per kill, sorted by total then booyahs.

For a 4x4 series, shows the series board instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runLeaderboard,
}

var playersCmd = &cobra.Command{
	Use:   "players <session>",
	Short: "Show player analyses from imported replays, MVP first",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayers,
}

func init() {
	leaderboardCmd.Flags().StringVar(&leaderboardPNG, "png", "", "write a chart snapshot to this file")
	leaderboardCmd.Flags().StringVar(&leaderboardXLSX, "xlsx", "", "write a workbook snapshot to this file")
	playersCmd.Flags().IntVarP(&playersLimit, "limit", "n", 0, "show only the top N players")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetSession(args[0])
	if err != nil {
		return err
	}
	pool, err := mapPool()
	if err != nil {
		return err
	}

	report.PrintSessionHeader(os.Stdout, s)
	var img []byte
	switch {
	case s.Kind == session.KindSeries && s.Series != nil:
		report.PrintSeries(os.Stdout, *s.Series, pool)
		if leaderboardPNG != "" {
			img, err = export.SeriesPNG(*s.Series)
		}
	case s.Kind == session.KindSeries:
		fmt.Fprintln(os.Stdout, "Series not started.")
	default:
		rows := s.Leaderboard()
		report.PrintLeaderboard(os.Stdout, rows)
		if leaderboardPNG != "" {
			img, err = export.LeaderboardPNG(s.Name, rows)
		}
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	if img != nil {
		if err := os.WriteFile(leaderboardPNG, img, 0644); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", leaderboardPNG)
	}
	if leaderboardXLSX != "" {
		data, err := export.Workbook(s, pool)
		if err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
		if err := os.WriteFile(leaderboardXLSX, data, 0644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", leaderboardXLSX)
	}
	return nil
}

func runPlayers(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetSession(args[0])
	if err != nil {
		return err
	}
	players := s.MVPs()
	if len(players) == 0 {
		fmt.Fprintln(os.Stdout, "No replays imported yet.")
		return nil
	}
	report.PrintPlayers(os.Stdout, players, s.Teams, playersLimit)
	return nil
}
