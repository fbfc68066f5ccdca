// Package draft implements the 4x4 ban/pick draft: who acts on each turn and how a
// selection advances the board.
package draft

import (
	"fmt"
	"slices"

	"github.com/pable/royaleops/internal/model"
)

// Length is the fixed number of actions in a draft: 2 bans + 8 picks.
const Length = 10

// PicksPerSide is the number of characters each side ends up with.
const PicksPerSide = 4

// Mode is the pick ordering after the opening bans.
type Mode string

const (
	ModeSnake    Mode = "snake"
	ModeLinear   Mode = "linear"
	ModeMirrored Mode = "mirrored"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSnake, ModeLinear, ModeMirrored:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown draft mode %q (want snake, linear or mirrored)", s)
}

var (
	banA  = model.Action{Phase: model.PhaseBan, Side: model.SideA}
	banB  = model.Action{Phase: model.PhaseBan, Side: model.SideB}
	pickA = model.Action{Phase: model.PhasePick, Side: model.SideA}
	pickB = model.Action{Phase: model.PhasePick, Side: model.SideB}
)

var snakeOrder = [Length]model.Action{
	banA, banB,
	pickA, pickB, pickB, pickA, pickA, pickB, pickB, pickA,
}

var linearOrder = [Length]model.Action{
	banA, banB,
	pickA, pickB, pickA, pickB, pickA, pickB, pickA, pickB,
}

// ResolveTurn returns the action required at turnIndex for the given mode. On odd
// match indexes the sides are swapped so the side banning first alternates each match.
// ok is false once the draft is over (turnIndex >= Length) or the mode is unknown.
func ResolveTurn(turnIndex int, mode Mode, matchIndex int) (model.Action, bool) {
	if turnIndex < 0 || turnIndex >= Length {
		return model.Action{}, false
	}

	var act model.Action
	switch mode {
	case ModeSnake:
		act = snakeOrder[turnIndex]
	case ModeLinear:
		act = linearOrder[turnIndex]
	case ModeMirrored:
		// Bans are entered one after the other in place of true simultaneous entry.
		switch {
		case turnIndex == 0:
			act = banA
		case turnIndex == 1:
			act = banB
		case turnIndex%2 == 0:
			act = pickA
		default:
			act = pickB
		}
	default:
		return model.Action{}, false
	}

	if matchIndex%2 != 0 {
		act = act.Swapped()
	}
	return act, true
}

// New returns an empty draft board.
func New() model.DraftState {
	return model.DraftState{
		BansA:   []string{},
		BansB:   []string{},
		PicksA:  []string{},
		PicksB:  []string{},
		History: []model.DraftEntry{},
	}
}

// Used reports whether characterID is already banned or picked by either side.
func Used(state model.DraftState, characterID string) bool {
	return slices.Contains(state.BansA, characterID) ||
		slices.Contains(state.BansB, characterID) ||
		slices.Contains(state.PicksA, characterID) ||
		slices.Contains(state.PicksB, characterID)
}

// Next returns the action awaited by the board, if any.
func Next(state model.DraftState, mode Mode, matchIndex int) (model.Action, bool) {
	if state.IsComplete {
		return model.Action{}, false
	}
	return ResolveTurn(state.TurnIndex, mode, matchIndex)
}

// ApplySelection applies characterID to the action currently awaited and returns the
// next board. Illegal selections (draft complete, character already used, empty id,
// no resolvable action) return state unchanged; callers may invoke it on every click.
func ApplySelection(state model.DraftState, characterID string, mode Mode, matchIndex int) model.DraftState {
	if characterID == "" || state.IsComplete || Used(state, characterID) {
		return state
	}
	act, ok := ResolveTurn(state.TurnIndex, mode, matchIndex)
	if !ok {
		return state
	}

	next := clone(state)
	switch {
	case act.Phase == model.PhaseBan && act.Side == model.SideA:
		next.BansA = append(next.BansA, characterID)
	case act.Phase == model.PhaseBan && act.Side == model.SideB:
		next.BansB = append(next.BansB, characterID)
	case act.Side == model.SideA:
		next.PicksA = append(next.PicksA, characterID)
	default:
		next.PicksB = append(next.PicksB, characterID)
	}
	next.History = append(next.History, model.DraftEntry{Action: act, CharacterID: characterID})
	next.TurnIndex++
	next.IsComplete = next.TurnIndex >= Length
	return next
}

// DropOnSide is the panel-drop entry point: the selection is applied only when the
// panel's side is the side the current action belongs to, otherwise it is ignored.
func DropOnSide(state model.DraftState, side model.Side, characterID string, mode Mode, matchIndex int) model.DraftState {
	act, ok := Next(state, mode, matchIndex)
	if !ok || act.Side != side {
		return state
	}
	return ApplySelection(state, characterID, mode, matchIndex)
}

// Clone returns a deep copy of state.
func Clone(state model.DraftState) model.DraftState {
	return clone(state)
}

func clone(s model.DraftState) model.DraftState {
	return model.DraftState{
		BansA:      cloneNonNil(s.BansA),
		BansB:      cloneNonNil(s.BansB),
		PicksA:     cloneNonNil(s.PicksA),
		PicksB:     cloneNonNil(s.PicksB),
		TurnIndex:  s.TurnIndex,
		History:    cloneNonNil(s.History),
		IsComplete: s.IsComplete,
	}
}

func cloneNonNil[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
