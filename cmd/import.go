package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/royaleops/internal/aggregator"
	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/parser"
	"github.com/pable/royaleops/internal/report"
	"github.com/pable/royaleops/internal/storage"
)

var importMatch int

var importCmd = &cobra.Command{
	Use:   "import <session> <replay.json> [<replay.json>...]",
	Short: "Score battle-royale matches from replay files",
	Long: `Parse replay event logs and score matches from them. The first file scores
match --match, the next one the following match, and so on.

Placements come from team elimination times: the team eliminated last is
second, the one before it third, and a team with no elimination record is
the winner. Kills are credited by the team tag in front of each player name.
Re-importing a match replaces its previous scores.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVarP(&importMatch, "match", "m", 1, "match number scored by the first file")
}

type parsedReplay struct {
	path   string
	replay *model.Replay
	empty  bool
}

func runImport(cmd *cobra.Command, args []string) error {
	if importMatch < 1 {
		return fmt.Errorf("invalid match number %d", importMatch)
	}
	files := args[1:]

	// Files are parsed concurrently; results are applied in argument order.
	parsed := make([]parsedReplay, len(files))
	g := new(errgroup.Group)
	for i, path := range files {
		g.Go(func() error {
			r, err := parser.ParseReplayFile(path)
			if errors.Is(err, parser.ErrNoEvents) {
				parsed[i] = parsedReplay{path: path, empty: true}
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parsed[i] = parsedReplay{path: path, replay: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := loadOpenSession(db, args[0])
	if err != nil {
		return err
	}
	opts := aggregator.Options{Separators: cfg.Replay.TagSeparators}

	for i, p := range parsed {
		match := importMatch - 1 + i
		if p.empty {
			log.Warn().Str("file", p.path).Msg("replay has no events, nothing imported")
			continue
		}

		prev, err := db.ImportFor(s.ID, match)
		if err != nil {
			return fmt.Errorf("check previous import: %w", err)
		}
		if prev != nil && prev.Hash == p.replay.Hash {
			log.Info().Str("file", p.path).Int("match", match+1).Msg("replay already imported, re-applying")
		}

		res, err := s.ImportReplay(match, p.replay, opts)
		if err != nil {
			return fmt.Errorf("import %s into match %d: %w", p.path, match+1, err)
		}
		report.PrintFallbackWarning(os.Stderr, res.FallbackTeams, s.Teams)
		if err := db.RecordImport(storage.ReplayImport{SessionID: s.ID, MatchIndex: match, Hash: p.replay.Hash}); err != nil {
			return fmt.Errorf("record import: %w", err)
		}
		log.Info().
			Str("file", p.path).
			Int("match", match+1).
			Int("events", len(p.replay.Events)).
			Int("players", len(res.Players)).
			Msg("replay imported")
	}

	if err := db.SaveOpen(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	pool, err := mapPool()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	report.PrintMatchSheets(os.Stdout, s, pool)
	fmt.Fprintln(os.Stdout)
	report.PrintLeaderboard(os.Stdout, s.Leaderboard())
	return nil
}
