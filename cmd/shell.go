package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/royaleops/internal/draft"
	"github.com/pable/royaleops/internal/export"
	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/report"
	"github.com/pable/royaleops/internal/series"
	"github.com/pable/royaleops/internal/session"
	"github.com/pable/royaleops/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var seriesCmd = &cobra.Command{
	Use:   "series <session>",
	Short: "Run a 4x4 series: drafts, round scores and match results",
	Long:  "Open an interactive shell on a 4x4 series session. Type 'help' for available commands.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeriesShell,
}

// seriesShell is the state of one interactive series session.
type seriesShell struct {
	db      *storage.DB
	sess    *session.Session
	pool    *mappool.Pool
	ctrl    *series.Controller
	scanner *bufio.Scanner
}

func runSeriesShell(_ *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := loadOpenSession(db, args[0])
	if err != nil {
		return err
	}
	if s.Kind != session.KindSeries {
		return fmt.Errorf("session %s is a %s session: %w", s.ID[:8], s.Kind, session.ErrNotSeries)
	}
	pool, err := mapPool()
	if err != nil {
		return err
	}

	sh := &seriesShell{db: db, sess: s, pool: pool, scanner: bufio.NewScanner(os.Stdin)}
	if s.Series != nil {
		sh.ctrl, err = s.SeriesController(pool.IDs(), newRand())
		if err != nil {
			return err
		}
	}

	cGreeting.Printf("royaleops series: %s\n", s.Name)
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()
	if sh.ctrl != nil {
		sh.board()
	} else {
		cMuted.Println("Series not started. Type 'start' to begin.")
	}

	for {
		cPrompt.Print("series")
		cMuted.Print("> ")
		if !sh.scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(sh.scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "start":
			sh.start(args)
		case "board", "status":
			sh.board()
		case "pick", "ban", "select":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: pick <character>")
				continue
			}
			sh.selectCharacter(args[0])
		case "drop":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, "usage: drop <A|B> <character>")
				continue
			}
			sh.drop(args[0], args[1])
		case "round":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, "usage: round <A|B> <+N|-N>")
				continue
			}
			sh.round(args[0], args[1])
		case "win":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: win <A|B>")
				continue
			}
			sh.win(args[0])
		case "reset":
			sh.reset()
		case "png":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: png <file>")
				continue
			}
			sh.png(args[0])
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"start [bo] [rounds] [mode] [maps]", "start (or restart) the series, e.g. start 5 13 snake no_repeat"},
		{"board", "show the series and the current draft"},
		{"pick <character>", "ban or pick for the side whose turn it is"},
		{"drop <A|B> <character>", "ban or pick, only if it is that side's turn"},
		{"round <A|B> <+N|-N>", "adjust the round score of the current match"},
		{"win <A|B>", "record the winner of the current match"},
		{"reset", "clear the current match's draft and round score"},
		{"png <file>", "export a series chart"},
		{"help", "show this message"},
		{"exit / quit", "close the shell"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// confirm asks a yes/no question on the shell's input. Anything but y/yes is a no.
func (sh *seriesShell) confirm(question string) bool {
	cWarn.Printf("%s [y/N] ", question)
	if !sh.scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sh.scanner.Text()))
	return answer == "y" || answer == "yes"
}

func (sh *seriesShell) requireSeries() bool {
	if sh.ctrl == nil {
		cError.Fprintln(os.Stderr, "series not started, type 'start'")
		return false
	}
	return true
}

// save persists the controller state into the session.
func (sh *seriesShell) save() {
	sh.sess.SetSeries(sh.ctrl.State())
	if err := sh.db.SaveOpen(sh.sess); err != nil {
		cError.Fprintf(os.Stderr, "error: save session: %v\n", err)
	}
}

func parseSide(s string) (model.Side, bool) {
	side, ok := model.ParseSide(s)
	if !ok {
		cError.Fprintf(os.Stderr, "unknown side %q, want A or B\n", s)
	}
	return side, ok
}

func (sh *seriesShell) start(args []string) {
	c := cfg.Series
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			cError.Fprintf(os.Stderr, "invalid best-of %q\n", args[0])
			return
		}
		c.BestOf = n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			cError.Fprintf(os.Stderr, "invalid rounds format %q\n", args[1])
			return
		}
		c.Rounds = n
	}
	if len(args) > 2 {
		c.Mode = args[2]
	}
	if len(args) > 3 {
		c.MapStrategy = args[3]
	}

	mode, err := draft.ParseMode(c.Mode)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	strategy, err := mappool.ParseStrategy(c.MapStrategy)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	sc := series.Config{BestOf: c.BestOf, RoundsFormat: c.Rounds, Mode: mode, MapStrategy: strategy}

	if sh.ctrl != nil && !sh.confirm("Restart the series? All results will be lost.") {
		return
	}
	ctrl, err := sh.sess.StartSeries(sc, sh.pool.IDs(), newRand())
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	sh.ctrl = ctrl
	if len(ctrl.State().Maps) < sc.BestOf {
		cWarn.Fprintf(os.Stderr, "map pool has only %d maps: later matches have no map assigned\n", len(ctrl.State().Maps))
	}
	log.Info().Str("session", sh.sess.ID).Int("best_of", sc.BestOf).Str("mode", string(mode)).Msg("series started")
	sh.save()
	sh.board()
}

func (sh *seriesShell) board() {
	if !sh.requireSeries() {
		return
	}
	st := sh.ctrl.State()
	report.PrintSeries(os.Stdout, st, sh.pool)
	if st.Complete {
		return
	}
	fmt.Println()
	cHeader.Printf("--- Draft: match %d ---\n", st.CurrentMatchIndex+1)
	next, ok := series.NextAction(st)
	report.PrintDraftBoard(os.Stdout, st.Draft, next, ok)
}

func (sh *seriesShell) selectCharacter(id string) {
	if !sh.requireSeries() {
		return
	}
	next, ok := series.NextAction(sh.ctrl.State())
	if !sh.ctrl.Select(id) {
		cWarn.Fprintf(os.Stderr, "%s rejected: already used, draft complete or series over\n", id)
		return
	}
	if ok {
		cMuted.Printf("%s: %s\n", next, id)
	}
	sh.save()
	sh.board()
}

func (sh *seriesShell) drop(sideArg, id string) {
	if !sh.requireSeries() {
		return
	}
	side, ok := parseSide(sideArg)
	if !ok {
		return
	}
	if !sh.ctrl.Drop(side, id) {
		cWarn.Fprintf(os.Stderr, "%s rejected for side %s: not that side's turn, already used or draft complete\n", id, side)
		return
	}
	sh.save()
	sh.board()
}

func (sh *seriesShell) round(sideArg, deltaArg string) {
	if !sh.requireSeries() {
		return
	}
	side, ok := parseSide(sideArg)
	if !ok {
		return
	}
	delta, err := strconv.Atoi(deltaArg)
	if err != nil {
		cError.Fprintf(os.Stderr, "invalid round delta %q\n", deltaArg)
		return
	}
	before := sh.ctrl.State().MatchRoundScore
	sh.ctrl.AdjustRoundScore(side, delta)
	after := sh.ctrl.State().MatchRoundScore
	if before == after && delta != 0 {
		cWarn.Fprintf(os.Stderr, "round score unchanged (cap is %d)\n", series.WinCap(sh.ctrl.State().RoundsFormat))
		return
	}
	sh.save()
	cMuted.Printf("Rounds A %d – %d B\n", after.A, after.B)
}

func (sh *seriesShell) win(sideArg string) {
	if !sh.requireSeries() {
		return
	}
	side, ok := parseSide(sideArg)
	if !ok {
		return
	}
	st := sh.ctrl.State()
	if !st.Complete && !sh.confirm(fmt.Sprintf("Record side %s as winner of match %d?", side, st.CurrentMatchIndex+1)) {
		return
	}
	if err := sh.ctrl.RecordMatchWinner(side); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	log.Info().Str("session", sh.sess.ID).Int("match", st.CurrentMatchIndex+1).Str("winner", side.String()).Msg("match recorded")
	sh.save()
	sh.board()
}

func (sh *seriesShell) reset() {
	if !sh.requireSeries() {
		return
	}
	if !sh.confirm("Clear the current match's draft and round score?") {
		return
	}
	sh.ctrl.ResetCurrentMatch()
	sh.save()
	sh.board()
}

func (sh *seriesShell) png(path string) {
	if !sh.requireSeries() {
		return
	}
	img, err := export.SeriesPNG(sh.ctrl.State())
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if err := os.WriteFile(path, img, 0644); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cMuted.Printf("Wrote %s\n", path)
}
