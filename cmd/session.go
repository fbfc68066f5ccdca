package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/report"
	"github.com/pable/royaleops/internal/session"
)

var (
	newSeries      bool
	newMatches     int
	newMapStrategy string
	listSaved      bool
	deleteForce    bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create, list, show, archive and delete sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a battle-royale session, or a 4x4 series with --series",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionNew,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open sessions (waiting list), or archived ones with --saved",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a session's roster, match sheets and standings",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionFinishCmd = &cobra.Command{
	Use:   "finish <id-prefix>",
	Short: "Archive a session; archived sessions are read-only",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionFinish,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id-prefix>",
	Short: "Permanently delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	sessionNewCmd.Flags().BoolVar(&newSeries, "series", false, "create a 4x4 series instead of a battle-royale session")
	sessionNewCmd.Flags().IntVar(&newMatches, "matches", 0, "number of battle-royale matches (default from config)")
	sessionNewCmd.Flags().StringVar(&newMapStrategy, "maps", "", "map rotation: no_repeat, repeat or fixed (default from config)")
	sessionListCmd.Flags().BoolVar(&listSaved, "saved", false, "list archived sessions")
	sessionDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation prompt")

	sessionCmd.AddCommand(sessionNewCmd, sessionListCmd, sessionShowCmd, sessionFinishCmd, sessionDeleteCmd)
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	kind := session.KindBattleRoyale
	opts := session.Options{Rand: newRand()}
	if newSeries {
		kind = session.KindSeries
	} else {
		pool, err := mapPool()
		if err != nil {
			return err
		}
		strategyName := cfg.Training.MapStrategy
		if newMapStrategy != "" {
			strategyName = newMapStrategy
		}
		strategy, err := mappool.ParseStrategy(strategyName)
		if err != nil {
			return err
		}
		opts.Matches = cfg.Training.Matches
		if cmd.Flags().Changed("matches") {
			opts.Matches = newMatches
		}
		opts.MapStrategy = strategy
		opts.Pool = pool.IDs()
	}

	s, err := session.New(args[0], kind, opts)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if err := db.SaveOpen(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	log.Info().Str("session", s.ID).Str("kind", string(kind)).Int("matches", len(s.Matches)).Msg("session created")
	fmt.Fprintf(os.Stdout, "Created %s session %q: %s\n", kind, s.Name, s.ID)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := db.ListOpen()
	if listSaved {
		list, err = db.ListSaved()
	}
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stdout, "No sessions stored yet.")
		return nil
	}
	report.PrintSessionList(os.Stdout, list)
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
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
	report.PrintRoster(os.Stdout, s.Teams)
	switch s.Kind {
	case session.KindSeries:
		if s.Series == nil {
			fmt.Fprintln(os.Stdout, "\nSeries not started. Run: royaleops series", s.ID[:8])
			return nil
		}
		report.PrintSeries(os.Stdout, *s.Series, pool)
	default:
		fmt.Fprintln(os.Stdout)
		report.PrintMatchSheets(os.Stdout, s, pool)
		fmt.Fprintln(os.Stdout)
		report.PrintLeaderboard(os.Stdout, s.Leaderboard())
	}
	return nil
}

func runSessionFinish(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := loadOpenSession(db, args[0])
	if err != nil {
		return err
	}
	if err := db.Archive(s); err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Archived %q.\n", s.Name)
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetSession(args[0])
	if err != nil {
		return err
	}
	if !deleteForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete session %q (%s).\n", s.Name, s.ID)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := db.DeleteSession(s.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", s.ID)
	return nil
}
