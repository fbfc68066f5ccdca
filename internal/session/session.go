// Package session is the explicit context every tournament operation runs against: the
// roster, the battle-royale match sheets, player analyses and, for 4x4 sessions, the
// series state.
package session

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pable/royaleops/internal/aggregator"
	"github.com/pable/royaleops/internal/leaderboard"
	mappool "github.com/pable/royaleops/internal/maps"
	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/parser"
	"github.com/pable/royaleops/internal/scoring"
	"github.com/pable/royaleops/internal/series"
)

// MaxTeams caps the roster; registrations beyond it are ignored.
const MaxTeams = 15

// Kind distinguishes the two workflows.
type Kind string

const (
	KindBattleRoyale Kind = "battle_royale"
	KindSeries       Kind = "series"
)

// Status tells open (waiting-list) sessions from archived ones.
type Status string

const (
	StatusOpen  Status = "open"
	StatusSaved Status = "saved"
)

var (
	ErrEmptyName       = errors.New("session name is empty")
	ErrEmptyTeamName   = errors.New("team name is empty")
	ErrUnknownTeam     = errors.New("unknown team")
	ErrMatchOutOfRange = errors.New("match index out of range")
	ErrInvalidRank     = errors.New("rank must be positive")
	ErrNotSeries       = errors.New("session is not a 4x4 series")
	ErrNoSeries        = errors.New("series not started")
	ErrWrongKind       = errors.New("operation not available for this session kind")
)

// MatchSheet holds the scores of one battle-royale match.
type MatchSheet struct {
	Index      int                         `json:"index"`
	MapID      string                      `json:"mapId"`
	Scores     map[string]model.MatchScore `json:"scores"`
	ReplayHash string                      `json:"replayHash,omitempty"`
}

// Session is one training/league day or one 4x4 series.
type Session struct {
	ID        string                          `json:"id"`
	Name      string                          `json:"name"`
	Kind      Kind                            `json:"kind"`
	Status    Status                          `json:"status"`
	CreatedAt time.Time                       `json:"createdAt"`
	UpdatedAt time.Time                       `json:"updatedAt"`
	Teams     []model.Team                    `json:"teams"`
	Matches   []MatchSheet                    `json:"matches"`
	Players   map[string]model.PlayerAnalysis `json:"players"`
	Series    *model.SeriesState              `json:"series,omitempty"`
}

// Options configure a new session.
type Options struct {
	// Matches is the number of battle-royale matches scheduled.
	Matches     int
	MapStrategy mappool.Strategy
	Pool        []string
	Rand        *rand.Rand
	Now         func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// New creates an open session. Battle-royale sessions get one sheet per scheduled
// match; when the rotation runs short, trailing sheets have no map.
func New(name string, kind Kind, opts Options) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if kind != KindBattleRoyale && kind != KindSeries {
		return nil, fmt.Errorf("unknown session kind %q", kind)
	}

	now := opts.now()
	s := &Session{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
		Teams:     []model.Team{},
		Matches:   []MatchSheet{},
		Players:   map[string]model.PlayerAnalysis{},
	}

	if kind == KindBattleRoyale && opts.Matches > 0 {
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
		}
		rotation := mappool.Rotate(opts.MapStrategy, opts.Pool, opts.Matches, rng)
		s.Matches = make([]MatchSheet, opts.Matches)
		for i := range s.Matches {
			s.Matches[i] = MatchSheet{Index: i, Scores: map[string]model.MatchScore{}}
			if i < len(rotation) {
				s.Matches[i].MapID = rotation[i]
			}
		}
	}
	return s, nil
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }

// ---- Roster ----

// HasDuplicateName reports whether a team with the same name, ignoring case, is
// already registered. Such teams would share every replay tag match.
func (s *Session) HasDuplicateName(name string) bool {
	name = strings.TrimSpace(name)
	return slices.ContainsFunc(s.Teams, func(t model.Team) bool {
		return strings.EqualFold(t.Name, name)
	})
}

// AddTeam registers a team. A full roster ignores the registration and returns
// added=false without error. An empty color picks the next palette entry.
func (s *Session) AddTeam(name string, color model.Color) (model.Team, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Team{}, false, ErrEmptyTeamName
	}
	if len(s.Teams) >= MaxTeams {
		return model.Team{}, false, nil
	}
	if color == "" {
		color = model.Palette[len(s.Teams)%len(model.Palette)]
	}
	id, err := gonanoid.New(10)
	if err != nil {
		return model.Team{}, false, fmt.Errorf("generate team id: %w", err)
	}

	team := model.Team{ID: id, Name: name, Color: color}
	teams := make([]model.Team, len(s.Teams), len(s.Teams)+1)
	copy(teams, s.Teams)
	s.Teams = append(teams, team)
	s.touch()
	return team, true, nil
}

// FindTeam resolves ref as a team id, then as a case-insensitive team name.
func (s *Session) FindTeam(ref string) (model.Team, bool) {
	for _, t := range s.Teams {
		if t.ID == ref {
			return t, true
		}
	}
	for _, t := range s.Teams {
		if strings.EqualFold(t.Name, strings.TrimSpace(ref)) {
			return t, true
		}
	}
	return model.Team{}, false
}

// RemoveTeam deletes a team and its match scores.
func (s *Session) RemoveTeam(ref string) (model.Team, error) {
	team, ok := s.FindTeam(ref)
	if !ok {
		return model.Team{}, fmt.Errorf("%w: %s", ErrUnknownTeam, ref)
	}
	s.Teams = slices.DeleteFunc(slices.Clone(s.Teams), func(t model.Team) bool {
		return t.ID == team.ID
	})
	for i := range s.Matches {
		scores := maps.Clone(s.Matches[i].Scores)
		delete(scores, team.ID)
		s.Matches[i].Scores = scores
	}
	s.touch()
	return team, nil
}

// ---- Battle-royale scoring ----

func (s *Session) sheet(match int) (*MatchSheet, error) {
	if s.Kind != KindBattleRoyale {
		return nil, ErrWrongKind
	}
	if match < 0 || match >= len(s.Matches) {
		return nil, fmt.Errorf("%w: %d (session has %d matches)", ErrMatchOutOfRange, match, len(s.Matches))
	}
	return &s.Matches[match], nil
}

// SetScore records a manual placement and kill count.
func (s *Session) SetScore(match int, teamRef string, rank, kills int) error {
	sh, err := s.sheet(match)
	if err != nil {
		return err
	}
	team, ok := s.FindTeam(teamRef)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, teamRef)
	}
	if rank <= 0 {
		return ErrInvalidRank
	}
	scores := cloneScores(sh.Scores)
	scores[team.ID] = model.MatchScore{TeamID: team.ID, Rank: rank, Kills: max(kills, 0)}
	sh.Scores = scores
	s.touch()
	return nil
}

// ClearScore marks a team as not yet scored for match.
func (s *Session) ClearScore(match int, teamRef string) error {
	sh, err := s.sheet(match)
	if err != nil {
		return err
	}
	team, ok := s.FindTeam(teamRef)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, teamRef)
	}
	scores := maps.Clone(sh.Scores)
	delete(scores, team.ID)
	sh.Scores = scores
	s.touch()
	return nil
}

// ImportReplay scores match from a parsed replay. The teams and players it touches have
// their previous entries replaced, so importing the same file twice is harmless.
func (s *Session) ImportReplay(match int, replay *model.Replay, opts aggregator.Options) (scoring.Result, error) {
	sh, err := s.sheet(match)
	if err != nil {
		return scoring.Result{}, err
	}

	stats, elims := aggregator.Aggregate(replay.Events, opts)
	res := scoring.Resolve(stats, elims, s.Teams)

	scores := cloneScores(sh.Scores)
	for id, sc := range res.Scores {
		scores[id] = sc
	}
	sh.Scores = scores
	sh.ReplayHash = replay.Hash

	players := maps.Clone(s.Players)
	if players == nil {
		players = make(map[string]model.PlayerAnalysis, len(res.Players))
	}
	for name, a := range res.Players {
		a.MatchIndex = match
		players[name] = a
		res.Players[name] = a
	}
	s.Players = players
	s.touch()
	return res, nil
}

// ImportReplayData parses raw replay content and imports it. A replay object without
// an Events field is accepted as an empty upload: nothing changes and imported is
// false. Any other format error leaves the session untouched.
func (s *Session) ImportReplayData(match int, data []byte, opts aggregator.Options) (res scoring.Result, imported bool, err error) {
	replay, err := parser.Parse(data)
	if errors.Is(err, parser.ErrNoEvents) {
		return scoring.Result{}, false, nil
	}
	if err != nil {
		return scoring.Result{}, false, err
	}
	res, err = s.ImportReplay(match, replay, opts)
	if err != nil {
		return scoring.Result{}, false, err
	}
	return res, true, nil
}

func cloneScores(in map[string]model.MatchScore) map[string]model.MatchScore {
	if in == nil {
		return make(map[string]model.MatchScore)
	}
	return maps.Clone(in)
}

// ScoresByMatch returns the sheets in the shape the leaderboard consumes.
func (s *Session) ScoresByMatch() map[int]map[string]model.MatchScore {
	out := make(map[int]map[string]model.MatchScore, len(s.Matches))
	for _, m := range s.Matches {
		out[m.Index] = m.Scores
	}
	return out
}

// Leaderboard computes the current standings.
func (s *Session) Leaderboard() []model.ProcessedScore {
	return leaderboard.Compute(s.Teams, s.ScoresByMatch())
}

// MVPs returns player analyses, best first.
func (s *Session) MVPs() []model.PlayerAnalysis {
	return scoring.RankPlayers(s.Players)
}

// ---- 4x4 series ----

// StartSeries starts (or restarts) the series of a 4x4 session.
func (s *Session) StartSeries(cfg series.Config, pool []string, rng *rand.Rand) (*series.Controller, error) {
	if s.Kind != KindSeries {
		return nil, ErrNotSeries
	}
	c, err := series.NewController(cfg, pool, rng)
	if err != nil {
		return nil, err
	}
	s.SetSeries(c.State())
	return c, nil
}

// SeriesController resumes the stored series.
func (s *Session) SeriesController(pool []string, rng *rand.Rand) (*series.Controller, error) {
	if s.Kind != KindSeries {
		return nil, ErrNotSeries
	}
	if s.Series == nil {
		return nil, ErrNoSeries
	}
	return series.Resume(*s.Series, pool, rng), nil
}

// SetSeries replaces the stored series state.
func (s *Session) SetSeries(st model.SeriesState) {
	s.Series = &st
	s.touch()
}

// Summary returns the list-view record.
func (s *Session) Summary() model.SessionSummary {
	matches := len(s.Matches)
	if s.Series != nil {
		matches = s.Series.BestOf
	}
	return model.SessionSummary{
		ID:        s.ID,
		Name:      s.Name,
		Kind:      string(s.Kind),
		Status:    string(s.Status),
		Teams:     len(s.Teams),
		Matches:   matches,
		UpdatedAt: s.UpdatedAt,
	}
}
