package server

import (
	"bytes"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/royaleops/internal/draft"
	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/series"
	"github.com/pable/royaleops/internal/session"
	"github.com/pable/royaleops/internal/storage"
)

type fixture struct {
	srv    *httptest.Server
	br     *session.Session
	series *session.Session
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	br, err := session.New("Scrims", session.KindBattleRoyale, session.Options{Matches: 1, MapStrategy: mappool.StrategyFixed, Pool: []string{"alpine"}})
	require.NoError(t, err)
	br.AddTeam("Alpha", "")
	br.AddTeam("Bravo", "")
	require.NoError(t, br.SetScore(0, "Alpha", 1, 5))
	require.NoError(t, db.SaveOpen(br))

	sr, err := session.New("Finals", session.KindSeries, session.Options{})
	require.NoError(t, err)
	cfg := series.Config{BestOf: 3, RoundsFormat: 13, Mode: draft.ModeLinear, MapStrategy: mappool.StrategyNoRepeat}
	_, err = sr.StartSeries(cfg, mappool.Default().IDs(), rand.New(rand.NewPCG(5, 5)))
	require.NoError(t, err)
	require.NoError(t, db.SaveOpen(sr))

	s := New(db, mappool.Default(), zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return fixture{srv: ts, br: br, series: sr}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthz(t *testing.T) {
	f := setup(t)
	resp, body := get(t, f.srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListSessions(t *testing.T) {
	f := setup(t)
	resp, body := get(t, f.srv.URL+"/sessions")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list sessionList
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Open, 2)
	assert.Empty(t, list.Saved)
}

func TestLeaderboard(t *testing.T) {
	f := setup(t)
	resp, body := get(t, f.srv.URL+"/sessions/"+f.br.ID[:8]+"/leaderboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []model.ProcessedScore
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].Name)
	assert.Equal(t, 17, rows[0].TotalPoints)
}

func TestLeaderboardPNG(t *testing.T) {
	f := setup(t)
	resp, body := get(t, f.srv.URL+"/sessions/"+f.br.ID+"/leaderboard.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
}

func TestSeries(t *testing.T) {
	f := setup(t)
	resp, body := get(t, f.srv.URL+"/sessions/"+f.series.ID+"/series")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		BestOf         int           `json:"mdFormat"`
		CurrentMapName string        `json:"currentMapName"`
		NextAction     *model.Action `json:"nextAction"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, 3, view.BestOf)
	assert.NotEmpty(t, view.CurrentMapName)
	require.NotNil(t, view.NextAction)
	assert.Equal(t, "BAN_A", view.NextAction.String())

	resp, _ = get(t, f.srv.URL+"/sessions/"+f.br.ID+"/series")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	f := setup(t)
	resp, _ := get(t, f.srv.URL+"/sessions/zzzz/leaderboard")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReadOnly(t *testing.T) {
	f := setup(t)
	resp, err := http.Post(f.srv.URL+"/sessions", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	f := setup(t)
	get(t, f.srv.URL+"/healthz")
	_, body := get(t, f.srv.URL+"/metrics")
	assert.Contains(t, string(body), `royaleops_http_requests_total{code="200",route="/healthz"} 1`)
}
