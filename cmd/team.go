package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/report"
	"github.com/pable/royaleops/internal/session"
)

var (
	teamColor string
	teamForce bool
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage a session's roster",
}

var teamAddCmd = &cobra.Command{
	Use:   "add <session> <name> [<name>...]",
	Short: "Register one or more teams",
	Long: `Register teams by name. The name doubles as the tag players carry in-game, so
"Wolves.Sniper" in a replay is credited to team "Wolves" (case-insensitive).
At most 15 teams can be registered; extra registrations are ignored.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTeamAdd,
}

var teamRmCmd = &cobra.Command{
	Use:   "rm <session> <team>",
	Short: "Remove a team and its scores",
	Args:  cobra.ExactArgs(2),
	RunE:  runTeamRm,
}

var teamListCmd = &cobra.Command{
	Use:   "list <session>",
	Short: "Show the roster",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamList,
}

func init() {
	teamAddCmd.Flags().StringVar(&teamColor, "color", "", "hex colour, e.g. #e53935 (default: next palette colour)")
	teamRmCmd.Flags().BoolVarP(&teamForce, "force", "f", false, "skip confirmation prompt")
	teamCmd.AddCommand(teamAddCmd, teamRmCmd, teamListCmd)
}

func runTeamAdd(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := loadOpenSession(db, args[0])
	if err != nil {
		return err
	}

	for _, name := range args[1:] {
		if s.HasDuplicateName(name) {
			log.Warn().Str("team", name).Msg("a team with this name is already registered; both will share replay kills")
		}
		team, added, err := s.AddTeam(name, model.Color(teamColor))
		if err != nil {
			return fmt.Errorf("add team %q: %w", name, err)
		}
		if !added {
			log.Warn().Str("team", name).Int("max", session.MaxTeams).Msg("roster full, registration ignored")
			continue
		}
		fmt.Fprintf(os.Stdout, "Registered %s (%s)\n", team.Name, team.ID)
	}
	if err := db.SaveOpen(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func runTeamRm(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := loadOpenSession(db, args[0])
	if err != nil {
		return err
	}
	team, ok := s.FindTeam(args[1])
	if !ok {
		return fmt.Errorf("%w: %s", session.ErrUnknownTeam, args[1])
	}
	if !teamForce {
		fmt.Fprintf(os.Stderr, "This will remove %s and all of its scores.\n", team.Name)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if _, err := s.RemoveTeam(team.ID); err != nil {
		return err
	}
	if err := db.SaveOpen(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Removed %s\n", team.Name)
	return nil
}

func runTeamList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := db.GetSession(args[0])
	if err != nil {
		return err
	}
	if len(s.Teams) == 0 {
		fmt.Fprintln(os.Stdout, "No teams registered yet.")
		return nil
	}
	report.PrintRoster(os.Stdout, s.Teams)
	return nil
}
