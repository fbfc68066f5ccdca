// Package series runs a best-of-N 4x4 series: round scoring inside a match, match
// results, the series score and the draft of the match in progress.
//
// The package-level functions are pure transitions over model.SeriesState. Controller
// owns one state value and replaces it wholesale on every call.
package series

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/pable/royaleops/internal/draft"
	"github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/model"
)

// ErrSeriesComplete is returned when a match result is recorded after the series ended.
var ErrSeriesComplete = errors.New("series already complete")

// Config describes a series before it starts.
type Config struct {
	BestOf       int
	RoundsFormat int
	Mode         draft.Mode
	MapStrategy  maps.Strategy
}

// Validate checks the formats against the supported values.
func (c Config) Validate() error {
	if !slices.Contains([]int{1, 3, 5, 7}, c.BestOf) {
		return fmt.Errorf("best-of must be 1, 3, 5 or 7, got %d", c.BestOf)
	}
	if c.RoundsFormat != 11 && c.RoundsFormat != 13 {
		return fmt.Errorf("rounds format must be 11 or 13, got %d", c.RoundsFormat)
	}
	if _, err := draft.ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if _, err := maps.ParseStrategy(string(c.MapStrategy)); err != nil {
		return err
	}
	return nil
}

// WinCap is the number of rounds that wins a match: 7 of 13, 6 of 11.
func WinCap(roundsFormat int) int {
	if roundsFormat == 13 {
		return 7
	}
	return 6
}

// WinsNeeded is the number of match wins that takes the series.
func WinsNeeded(bestOf int) int {
	return (bestOf + 1) / 2
}

// Start returns a fresh series: empty draft, match 0, zero scores, empty history,
// maps assigned by the configured rotation.
func Start(cfg Config, pool []string, rng *rand.Rand) model.SeriesState {
	return model.SeriesState{
		BestOf:       cfg.BestOf,
		RoundsFormat: cfg.RoundsFormat,
		PickBanMode:  string(cfg.Mode),
		MapStrategy:  string(cfg.MapStrategy),
		Maps:         maps.Rotate(cfg.MapStrategy, pool, cfg.BestOf, rng),
		History:      []model.SeriesMatchResult{},
		Draft:        draft.New(),
	}
}

// AdjustRoundScore adds delta to side's round score. A result above the win cap is
// rejected and leaves the score unchanged; a result below zero floors at zero.
func AdjustRoundScore(st model.SeriesState, side model.Side, delta int) model.SeriesState {
	if st.Complete {
		return st
	}
	v := st.MatchRoundScore.Get(side) + delta
	if v > WinCap(st.RoundsFormat) {
		return st
	}
	st.MatchRoundScore = st.MatchRoundScore.With(side, max(v, 0))
	return st
}

// ResetCurrentMatch clears the draft and round score of the match in progress. The
// series score and history are kept. Confirmation is the caller's concern.
func ResetCurrentMatch(st model.SeriesState) model.SeriesState {
	if st.Complete {
		return st
	}
	st.Draft = draft.New()
	st.MatchRoundScore = model.Score{}
	return st
}

// Select applies a character selection to the current draft.
func Select(st model.SeriesState, characterID string) model.SeriesState {
	if st.Complete {
		return st
	}
	st.Draft = draft.ApplySelection(st.Draft, characterID, draft.Mode(st.PickBanMode), st.CurrentMatchIndex)
	return st
}

// Drop applies a selection dropped on side's panel; drops on the wrong panel are ignored.
func Drop(st model.SeriesState, side model.Side, characterID string) model.SeriesState {
	if st.Complete {
		return st
	}
	st.Draft = draft.DropOnSide(st.Draft, side, characterID, draft.Mode(st.PickBanMode), st.CurrentMatchIndex)
	return st
}

// RecordMatchWinner appends the finished match to the history and credits side. The
// series ends when side reaches the wins needed or the last scheduled match was
// played; otherwise the next match starts with an empty draft and round score.
func RecordMatchWinner(st model.SeriesState, side model.Side) (model.SeriesState, error) {
	if st.Complete {
		return st, ErrSeriesComplete
	}

	history := make([]model.SeriesMatchResult, len(st.History), len(st.History)+1)
	copy(history, st.History)
	st.History = append(history, model.SeriesMatchResult{
		MatchIndex: st.CurrentMatchIndex,
		MapID:      st.CurrentMap(),
		Winner:     side,
		Draft:      draft.Clone(st.Draft),
	})
	st.SeriesScore = st.SeriesScore.With(side, st.SeriesScore.Get(side)+1)

	if st.SeriesScore.Get(side) >= WinsNeeded(st.BestOf) || st.CurrentMatchIndex >= st.BestOf-1 {
		st.Complete = true
		return st, nil
	}

	st.CurrentMatchIndex++
	st.Draft = draft.New()
	st.MatchRoundScore = model.Score{}
	return st, nil
}

// Winner returns the side with more match wins once the series is complete.
func Winner(st model.SeriesState) (model.Side, bool) {
	if !st.Complete || st.SeriesScore.A == st.SeriesScore.B {
		return model.SideA, false
	}
	if st.SeriesScore.A > st.SeriesScore.B {
		return model.SideA, true
	}
	return model.SideB, true
}

// NextAction returns the draft action awaited in the current match.
func NextAction(st model.SeriesState) (model.Action, bool) {
	if st.Complete {
		return model.Action{}, false
	}
	return draft.Next(st.Draft, draft.Mode(st.PickBanMode), st.CurrentMatchIndex)
}

// Controller holds the state of one series.
type Controller struct {
	state model.SeriesState
	pool  []string
	rng   *rand.Rand
}

// NewController starts a series.
func NewController(cfg Config, pool []string, rng *rand.Rand) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{pool: slices.Clone(pool), rng: rng}
	c.state = Start(cfg, c.pool, rng)
	return c, nil
}

// Resume wraps a previously saved state.
func Resume(st model.SeriesState, pool []string, rng *rand.Rand) *Controller {
	return &Controller{state: st, pool: slices.Clone(pool), rng: rng}
}

// State returns the current state value.
func (c *Controller) State() model.SeriesState { return c.state }

// Complete reports whether the series has ended.
func (c *Controller) Complete() bool { return c.state.Complete }

// StartSeries resets the controller to a new series with cfg.
func (c *Controller) StartSeries(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.state = Start(cfg, c.pool, c.rng)
	return nil
}

// AdjustRoundScore see AdjustRoundScore.
func (c *Controller) AdjustRoundScore(side model.Side, delta int) {
	c.state = AdjustRoundScore(c.state, side, delta)
}

// ResetCurrentMatch see ResetCurrentMatch.
func (c *Controller) ResetCurrentMatch() {
	c.state = ResetCurrentMatch(c.state)
}

// Select applies a selection and reports whether it was accepted.
func (c *Controller) Select(characterID string) bool {
	before := c.state.Draft.TurnIndex
	c.state = Select(c.state, characterID)
	return c.state.Draft.TurnIndex != before
}

// Drop applies a panel drop and reports whether it was accepted.
func (c *Controller) Drop(side model.Side, characterID string) bool {
	before := c.state.Draft.TurnIndex
	c.state = Drop(c.state, side, characterID)
	return c.state.Draft.TurnIndex != before
}

// RecordMatchWinner see RecordMatchWinner.
func (c *Controller) RecordMatchWinner(side model.Side) error {
	st, err := RecordMatchWinner(c.state, side)
	if err != nil {
		return err
	}
	c.state = st
	return nil
}
