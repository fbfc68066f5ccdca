package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score battle-royale matches by hand",
}

var scoreSetCmd = &cobra.Command{
	Use:   "set <session> <match> <team> <rank> <kills>",
	Short: "Record a team's placement and kill count for a match (matches are numbered from 1)",
	Args:  cobra.ExactArgs(5),
	RunE:  runScoreSet,
}

var scoreClearCmd = &cobra.Command{
	Use:   "clear <session> <match> <team>",
	Short: "Mark a team as not scored for a match",
	Args:  cobra.ExactArgs(3),
	RunE:  runScoreClear,
}

func init() {
	scoreCmd.AddCommand(scoreSetCmd, scoreClearCmd)
}

// parseMatch converts a 1-based match number into a sheet index.
func parseMatch(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid match number %q", s)
	}
	return n - 1, nil
}

func runScoreSet(cmd *cobra.Command, args []string) error {
	match, err := parseMatch(args[1])
	if err != nil {
		return err
	}
	rank, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid rank %q", args[3])
	}
	kills, err := strconv.Atoi(args[4])
	if err != nil || kills < 0 {
		return fmt.Errorf("invalid kill count %q", args[4])
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
	if err := s.SetScore(match, args[2], rank, kills); err != nil {
		return fmt.Errorf("set score: %w", err)
	}
	if err := db.SaveOpen(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Match %d: %s placed #%d with %d kills\n", match+1, args[2], rank, kills)
	return nil
}

func runScoreClear(cmd *cobra.Command, args []string) error {
	match, err := parseMatch(args[1])
	if err != nil {
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
	if err := s.ClearScore(match, args[2]); err != nil {
		return fmt.Errorf("clear score: %w", err)
	}
	if err := db.SaveOpen(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Match %d: %s cleared\n", match+1, args[2])
	return nil
}
