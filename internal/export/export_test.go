package export

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pable/royaleops/internal/draft"
	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/series"
	"github.com/pable/royaleops/internal/session"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestLeaderboardPNG(t *testing.T) {
	rows := []model.ProcessedScore{
		{Name: "Alpha", Color: model.Palette[0], TotalPoints: 31},
		{Name: "Bravo", Color: model.Palette[1], TotalPoints: 12},
	}
	img, err := LeaderboardPNG("Day 1", rows)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestLeaderboardPNG_NoData(t *testing.T) {
	img, err := LeaderboardPNG("Day 1", []model.ProcessedScore{{Name: "Alpha"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestSeriesPNG(t *testing.T) {
	img, err := SeriesPNG(model.SeriesState{BestOf: 3, SeriesScore: model.Score{A: 1, B: 1}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestWorkbook_BattleRoyale(t *testing.T) {
	s, err := session.New("League", session.KindBattleRoyale, session.Options{
		Matches:     2,
		MapStrategy: mappool.StrategyFixed,
		Pool:        []string{"kalahari"},
	})
	require.NoError(t, err)
	s.AddTeam("Alpha", "")
	s.AddTeam("Bravo", "")
	require.NoError(t, s.SetScore(0, "Alpha", 1, 4))
	require.NoError(t, s.SetScore(0, "Bravo", 2, 1))

	data, err := Workbook(s, mappool.Default())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetLeaderboard, SheetMatches, SheetPlayers}, f.GetSheetList())

	rows, err := f.GetRows(SheetLeaderboard)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Alpha", rows[1][1])
	assert.Equal(t, "16", rows[1][6])

	matches, err := f.GetRows(SheetMatches)
	require.NoError(t, err)
	assert.Equal(t, "M1 Kalahari rank", matches[0][1])
}

func TestWorkbook_Series(t *testing.T) {
	s, err := session.New("Finals", session.KindSeries, session.Options{})
	require.NoError(t, err)
	cfg := series.Config{BestOf: 3, RoundsFormat: 13, Mode: draft.ModeSnake, MapStrategy: mappool.StrategyNoRepeat}
	c, err := s.StartSeries(cfg, mappool.Default().IDs(), rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	c.Select("alok")
	require.NoError(t, c.RecordMatchWinner(model.SideB))
	s.SetSeries(c.State())

	data, err := Workbook(s, mappool.Default())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetSeries}, f.GetSheetList())

	rows, err := f.GetRows(SheetSeries)
	require.NoError(t, err)
	// Format, score, history label, header, one finished match.
	require.Len(t, rows, 5)
	assert.Equal(t, "Side B", rows[4][2])
	assert.Equal(t, "alok", rows[4][3])
}
