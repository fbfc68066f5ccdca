package draft

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/royaleops/internal/model"
)

var allModes = []Mode{ModeSnake, ModeLinear, ModeMirrored}

func TestResolveTurn_DefinedInsideDraft(t *testing.T) {
	for _, mode := range allModes {
		for _, match := range []int{0, 1} {
			for i := 0; i < Length; i++ {
				_, ok := ResolveTurn(i, mode, match)
				assert.True(t, ok, "mode=%s match=%d turn=%d", mode, match, i)
			}
			for _, i := range []int{Length, Length + 1, 99} {
				_, ok := ResolveTurn(i, mode, match)
				assert.False(t, ok, "mode=%s match=%d turn=%d", mode, match, i)
			}
		}
	}
}

func TestResolveTurn_SnakeOrder(t *testing.T) {
	want := []string{
		"BAN_A", "BAN_B", "PICK_A", "PICK_B", "PICK_B",
		"PICK_A", "PICK_A", "PICK_B", "PICK_B", "PICK_A",
	}
	for i, w := range want {
		act, ok := ResolveTurn(i, ModeSnake, 0)
		require.True(t, ok)
		assert.Equal(t, w, act.String(), "turn %d", i)
	}
}

func TestResolveTurn_LinearAndMirrored(t *testing.T) {
	want := []string{
		"BAN_A", "BAN_B", "PICK_A", "PICK_B", "PICK_A",
		"PICK_B", "PICK_A", "PICK_B", "PICK_A", "PICK_B",
	}
	for _, mode := range []Mode{ModeLinear, ModeMirrored} {
		for i, w := range want {
			act, _ := ResolveTurn(i, mode, 0)
			assert.Equal(t, w, act.String(), "mode=%s turn %d", mode, i)
		}
	}
}

func TestResolveTurn_SidesSwapOnOddMatches(t *testing.T) {
	for _, mode := range allModes {
		for i := 0; i < Length; i++ {
			even, _ := ResolveTurn(i, mode, 0)
			odd, _ := ResolveTurn(i, mode, 1)
			assert.Equal(t, even.Phase, odd.Phase)
			assert.Equal(t, even.Side.Opposite(), odd.Side)
		}
	}
}

func TestResolveTurn_PeriodTwo(t *testing.T) {
	for _, mode := range allModes {
		for match := 0; match < 6; match++ {
			for i := 0; i < Length; i++ {
				a, _ := ResolveTurn(i, mode, match)
				b, _ := ResolveTurn(i, mode, match+2)
				assert.Equal(t, a, b)
			}
		}
	}
}

func TestResolveTurn_UnknownMode(t *testing.T) {
	_, ok := ResolveTurn(0, Mode("random"), 0)
	assert.False(t, ok)
}

func runFullDraft(t *testing.T, mode Mode, match int) model.DraftState {
	t.Helper()
	st := New()
	for i := 0; i < Length; i++ {
		st = ApplySelection(st, fmt.Sprintf("char-%d", i), mode, match)
		require.Equal(t, i+1, st.TurnIndex)
	}
	return st
}

func TestApplySelection_FullDraft(t *testing.T) {
	for _, mode := range allModes {
		for _, match := range []int{0, 1} {
			st := runFullDraft(t, mode, match)
			assert.True(t, st.IsComplete)
			assert.Len(t, st.PicksA, PicksPerSide)
			assert.Len(t, st.PicksB, PicksPerSide)
			assert.Len(t, st.BansA, 1)
			assert.Len(t, st.BansB, 1)
			assert.Len(t, st.History, Length)
		}
	}
}

func TestApplySelection_OddMatchBansBFirst(t *testing.T) {
	st := ApplySelection(New(), "alok", ModeSnake, 1)
	assert.Equal(t, []string{"alok"}, st.BansB)
	assert.Empty(t, st.BansA)
}

func TestApplySelection_RejectsUsedCharacter(t *testing.T) {
	st := New()
	st = ApplySelection(st, "alok", ModeSnake, 0)
	st = ApplySelection(st, "chrono", ModeSnake, 0)
	st = ApplySelection(st, "kelly", ModeSnake, 0)

	for _, id := range []string{"alok", "chrono", "kelly"} {
		got := ApplySelection(st, id, ModeSnake, 0)
		assert.Equal(t, st, got, "reselecting %s must be a no-op", id)
	}
}

func TestApplySelection_RejectsAfterComplete(t *testing.T) {
	st := runFullDraft(t, ModeLinear, 0)
	got := ApplySelection(st, "late", ModeLinear, 0)
	assert.Equal(t, st, got)
}

func TestApplySelection_RejectsEmptyID(t *testing.T) {
	st := New()
	assert.Equal(t, st, ApplySelection(st, "", ModeSnake, 0))
}

func TestApplySelection_DoesNotAliasInput(t *testing.T) {
	st := ApplySelection(New(), "alok", ModeSnake, 0)
	before := Clone(st)
	_ = ApplySelection(st, "chrono", ModeSnake, 0)
	assert.Equal(t, before, st)
}

func TestDropOnSide(t *testing.T) {
	st := New()

	// Turn 0 on match 0 is BAN_A: a drop on B's panel is ignored.
	got := DropOnSide(st, model.SideB, "alok", ModeSnake, 0)
	assert.Equal(t, st, got)

	got = DropOnSide(st, model.SideA, "alok", ModeSnake, 0)
	assert.Equal(t, []string{"alok"}, got.BansA)
	assert.Equal(t, 1, got.TurnIndex)

	// Match 1 swaps sides: B bans first.
	got = DropOnSide(New(), model.SideB, "alok", ModeSnake, 1)
	assert.Equal(t, []string{"alok"}, got.BansB)
}

func TestParseMode(t *testing.T) {
	for _, m := range allModes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("auction")
	assert.Error(t, err)
}
