package series

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/royaleops/internal/draft"
	"github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/model"
)

func testConfig(bestOf, rounds int) Config {
	return Config{
		BestOf:       bestOf,
		RoundsFormat: rounds,
		Mode:         draft.ModeSnake,
		MapStrategy:  maps.StrategyNoRepeat,
	}
}

func newController(t *testing.T, bestOf, rounds int) *Controller {
	t.Helper()
	c, err := NewController(testConfig(bestOf, rounds), maps.Default().IDs(), rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	return c
}

func TestStart(t *testing.T) {
	c := newController(t, 5, 13)
	st := c.State()
	assert.Equal(t, 0, st.CurrentMatchIndex)
	assert.Equal(t, model.Score{}, st.MatchRoundScore)
	assert.Equal(t, model.Score{}, st.SeriesScore)
	assert.Empty(t, st.History)
	assert.Len(t, st.Maps, 5)
	assert.Equal(t, draft.New(), st.Draft)
	assert.False(t, st.Complete)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, testConfig(7, 11).Validate())
	assert.Error(t, testConfig(2, 13).Validate())
	assert.Error(t, testConfig(3, 12).Validate())

	cfg := testConfig(3, 13)
	cfg.Mode = "auction"
	assert.Error(t, cfg.Validate())
}

func TestAdjustRoundScore_ClampsAtCap(t *testing.T) {
	c := newController(t, 3, 13)
	for i := 0; i < 8; i++ {
		c.AdjustRoundScore(model.SideA, +1)
	}
	assert.Equal(t, 7, c.State().MatchRoundScore.A)

	c11 := newController(t, 3, 11)
	for i := 0; i < 10; i++ {
		c11.AdjustRoundScore(model.SideB, +1)
	}
	assert.Equal(t, 6, c11.State().MatchRoundScore.B)
}

func TestAdjustRoundScore_FloorsAtZero(t *testing.T) {
	c := newController(t, 3, 13)
	c.AdjustRoundScore(model.SideB, +2)
	c.AdjustRoundScore(model.SideB, -5)
	assert.Equal(t, 0, c.State().MatchRoundScore.B)
}

func TestAdjustRoundScore_OversizedDeltaRejected(t *testing.T) {
	c := newController(t, 3, 13)
	c.AdjustRoundScore(model.SideA, +5)
	c.AdjustRoundScore(model.SideA, +3)
	assert.Equal(t, 5, c.State().MatchRoundScore.A)
}

func TestRecordMatchWinner_EndsOnMajority(t *testing.T) {
	c := newController(t, 3, 13)
	require.NoError(t, c.RecordMatchWinner(model.SideA))
	assert.False(t, c.Complete())
	require.NoError(t, c.RecordMatchWinner(model.SideA))

	st := c.State()
	assert.True(t, st.Complete)
	assert.Equal(t, model.Score{A: 2, B: 0}, st.SeriesScore)
	assert.Len(t, st.History, 2)
	assert.Equal(t, 1, st.CurrentMatchIndex)

	w, ok := Winner(st)
	require.True(t, ok)
	assert.Equal(t, model.SideA, w)

	assert.ErrorIs(t, c.RecordMatchWinner(model.SideB), ErrSeriesComplete)
	assert.Len(t, c.State().History, 2)
}

func TestRecordMatchWinner_AdvancesAndResets(t *testing.T) {
	c := newController(t, 5, 13)
	c.Select("alok")
	c.AdjustRoundScore(model.SideA, 4)

	require.NoError(t, c.RecordMatchWinner(model.SideB))
	st := c.State()
	assert.Equal(t, 1, st.CurrentMatchIndex)
	assert.Equal(t, model.Score{}, st.MatchRoundScore)
	assert.Equal(t, 0, st.Draft.TurnIndex)
	require.Len(t, st.History, 1)
	assert.Equal(t, []string{"alok"}, st.History[0].Draft.BansA)
	assert.Equal(t, st.Maps[0], st.History[0].MapID)
	assert.Equal(t, model.SideB, st.History[0].Winner)
}

func TestRecordMatchWinner_BestOfOne(t *testing.T) {
	c := newController(t, 1, 11)
	require.NoError(t, c.RecordMatchWinner(model.SideB))
	assert.True(t, c.Complete())
	assert.Equal(t, model.Score{B: 1}, c.State().SeriesScore)
}

func TestRecordMatchWinner_ScoreMatchesHistory(t *testing.T) {
	c := newController(t, 7, 13)
	sides := []model.Side{model.SideA, model.SideB, model.SideA, model.SideB, model.SideB, model.SideA, model.SideB}
	for _, s := range sides {
		if c.Complete() {
			break
		}
		require.NoError(t, c.RecordMatchWinner(s))
		st := c.State()
		assert.Equal(t, len(st.History), st.SeriesScore.A+st.SeriesScore.B)
		assert.LessOrEqual(t, len(st.History), st.BestOf)
	}
	assert.True(t, c.Complete())
	assert.Equal(t, model.Score{A: 3, B: 4}, c.State().SeriesScore)
}

func TestResetCurrentMatch(t *testing.T) {
	c := newController(t, 3, 13)
	require.NoError(t, c.RecordMatchWinner(model.SideA))
	c.Select("alok")
	c.AdjustRoundScore(model.SideB, 3)

	c.ResetCurrentMatch()
	st := c.State()
	assert.Equal(t, draft.New(), st.Draft)
	assert.Equal(t, model.Score{}, st.MatchRoundScore)
	assert.Equal(t, model.Score{A: 1}, st.SeriesScore)
	assert.Len(t, st.History, 1)
}

func TestSelectAlternatesBanSide(t *testing.T) {
	c := newController(t, 3, 13)
	require.NoError(t, c.RecordMatchWinner(model.SideA))

	act, ok := NextAction(c.State())
	require.True(t, ok)
	assert.Equal(t, model.Action{Phase: model.PhaseBan, Side: model.SideB}, act)

	assert.False(t, c.Drop(model.SideA, "alok"))
	assert.True(t, c.Drop(model.SideB, "alok"))
	assert.Equal(t, []string{"alok"}, c.State().Draft.BansB)
}

func TestSelectFullDraftThenNoop(t *testing.T) {
	c := newController(t, 3, 13)
	for i := 0; i < draft.Length; i++ {
		assert.True(t, c.Select(fmt.Sprintf("c%d", i)))
	}
	assert.True(t, c.State().Draft.IsComplete)
	assert.False(t, c.Select("extra"))
}

func TestStartSeriesResets(t *testing.T) {
	c := newController(t, 3, 13)
	require.NoError(t, c.RecordMatchWinner(model.SideA))
	require.NoError(t, c.RecordMatchWinner(model.SideA))
	require.True(t, c.Complete())

	require.NoError(t, c.StartSeries(testConfig(5, 11)))
	st := c.State()
	assert.False(t, st.Complete)
	assert.Equal(t, 5, st.BestOf)
	assert.Empty(t, st.History)
	assert.Equal(t, model.Score{}, st.SeriesScore)
}

func TestShortRotationLeavesEmptyMap(t *testing.T) {
	c, err := NewController(testConfig(7, 13), []string{"bermuda", "kalahari"}, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.NoError(t, c.RecordMatchWinner(model.Side(i%2)))
	}
	assert.Equal(t, "", c.State().CurrentMap())
}
