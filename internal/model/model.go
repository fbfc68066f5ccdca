package model

import "time"

// Side identifies one of the two sides of a 4x4 series.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "?"
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// ParseSide accepts "a"/"b" in any case.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "a", "A":
		return SideA, true
	case "b", "B":
		return SideB, true
	}
	return SideA, false
}

// Phase is the kind of draft action.
type Phase int

const (
	PhaseBan Phase = iota
	PhasePick
)

func (p Phase) String() string {
	if p == PhaseBan {
		return "BAN"
	}
	return "PICK"
}

// Action is one step of a draft: which phase, which side.
type Action struct {
	Phase Phase `json:"phase"`
	Side  Side  `json:"side"`
}

// Swapped returns the same action with the side flipped.
func (a Action) Swapped() Action {
	return Action{Phase: a.Phase, Side: a.Side.Opposite()}
}

func (a Action) String() string {
	return a.Phase.String() + "_" + a.Side.String()
}

// ---- Roster ----

// Color is a palette entry used to tell teams apart on boards and exports.
type Color string

// Palette is the fixed set of team colours, assigned round-robin on registration.
var Palette = []Color{
	"#e53935", "#1e88e5", "#43a047", "#fdd835", "#8e24aa",
	"#fb8c00", "#00acc1", "#d81b60", "#6d4c41", "#546e7a",
	"#c0ca33", "#5e35b1", "#00897b", "#f4511e", "#3949ab",
}

// Team is a registered roster entry. Name doubles as the tag used for replay matching.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// MapEntry is static reference data for one map of the pool.
type MapEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Image    string   `json:"image" yaml:"image"`
	Callouts []string `json:"callouts" yaml:"callouts"`
}

// ---- Draft and series ----

// DraftEntry is one accepted selection in draft order.
type DraftEntry struct {
	Action      Action `json:"action"`
	CharacterID string `json:"characterId"`
}

// DraftState is the ban/pick board of the match in progress.
type DraftState struct {
	BansA      []string     `json:"bansA"`
	BansB      []string     `json:"bansB"`
	PicksA     []string     `json:"picksA"`
	PicksB     []string     `json:"picksB"`
	TurnIndex  int          `json:"turnIndex"`
	History    []DraftEntry `json:"history"`
	IsComplete bool         `json:"isComplete"`
}

// SeriesMatchResult is appended once per finished match and never mutated afterwards.
type SeriesMatchResult struct {
	MatchIndex int        `json:"matchIndex"`
	MapID      string     `json:"mapId"`
	Winner     Side       `json:"winner"`
	Draft      DraftState `json:"draft"`
}

// Score is a per-side counter.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Get returns the value for side.
func (s Score) Get(side Side) int {
	if side == SideA {
		return s.A
	}
	return s.B
}

// With returns a copy with side set to v.
func (s Score) With(side Side, v int) Score {
	if side == SideA {
		s.A = v
	} else {
		s.B = v
	}
	return s
}

// SeriesState is the full state of a best-of-N 4x4 series, including the draft of the
// match in progress.
type SeriesState struct {
	BestOf            int                 `json:"mdFormat"`
	RoundsFormat      int                 `json:"roundsFormat"`
	PickBanMode       string              `json:"pbMode"`
	MapStrategy       string              `json:"mapStrategy"`
	Maps              []string            `json:"maps"`
	CurrentMatchIndex int                 `json:"currentMatchIndex"`
	MatchRoundScore   Score               `json:"matchRoundScore"`
	SeriesScore       Score               `json:"seriesScore"`
	History           []SeriesMatchResult `json:"history"`
	Draft             DraftState          `json:"draft"`
	Complete          bool                `json:"complete"`
}

// CurrentMap returns the map of the match in progress, or "" when the rotation ran short.
func (s SeriesState) CurrentMap() string {
	if s.CurrentMatchIndex < len(s.Maps) {
		return s.Maps[s.CurrentMatchIndex]
	}
	return ""
}

// ---- Replays ----

// EventKind is the closed set of replay event kinds the engine understands.
type EventKind int

const (
	EventUnknown        EventKind = 0
	EventTeamEliminated EventKind = 1
	EventDamage         EventKind = 2
	EventPlayerPresence EventKind = 3
	EventKill           EventKind = 4
)

// EventKindFromCode maps a raw replay code to a kind. Unrecognised codes map to
// EventUnknown and are ignored downstream.
func EventKindFromCode(code int) EventKind {
	switch EventKind(code) {
	case EventTeamEliminated, EventDamage, EventPlayerPresence, EventKill:
		return EventKind(code)
	default:
		return EventUnknown
	}
}

func (k EventKind) String() string {
	switch k {
	case EventTeamEliminated:
		return "TEAM_ELIMINATED"
	case EventDamage:
		return "DAMAGE"
	case EventPlayerPresence:
		return "PRESENCE"
	case EventKill:
		return "KILL"
	default:
		return "UNKNOWN"
	}
}

// ReplayEvent is one canonical event of an uploaded replay.
type ReplayEvent struct {
	Time     float64
	Kind     EventKind
	Code     int // raw code as found in the file
	Subject  string
	Value    float64
	HasValue bool
}

// Replay is a parsed upload.
type Replay struct {
	Hash   string
	Events []ReplayEvent
}

// UnaffiliatedTag is the tag of players whose name carries no team prefix.
// Team names are non-empty, so it never matches a roster entry.
const UnaffiliatedTag = ""

// PlayerStat is the per-player result of aggregating one replay.
type PlayerStat struct {
	Name           string  `json:"name"`
	TeamTag        string  `json:"teamTag"`
	Kills          int     `json:"kills"`
	Damage         float64 `json:"damage"`
	FirstEventTime float64 `json:"firstEventTime"`
	LastEventTime  float64 `json:"lastEventTime"`
}

// TimeAlive is the span between the player's first and last event.
func (p PlayerStat) TimeAlive() float64 {
	return p.LastEventTime - p.FirstEventTime
}

// PlayerAnalysis is a PlayerStat resolved against the roster and scored.
type PlayerAnalysis struct {
	PlayerStat
	TeamID     string  `json:"teamId"`
	MatchIndex int     `json:"matchIndex"`
	MVPScore   float64 `json:"mvpScore"`
	TimeAlive  float64 `json:"timeAlive"`
}

// MatchScore is one team's result in one battle-royale match. Rank 0 means not scored.
type MatchScore struct {
	TeamID      string         `json:"teamId"`
	Rank        int            `json:"rank,omitempty"`
	Kills       int            `json:"kills,omitempty"`
	PlayerKills map[string]int `json:"playerKills,omitempty"`
}

// Scored reports whether the entry carries a placement.
func (m MatchScore) Scored() bool { return m.Rank > 0 }

// ProcessedScore is one leaderboard row.
type ProcessedScore struct {
	TeamID          string `json:"teamId"`
	Name            string `json:"name"`
	Color           Color  `json:"color"`
	MatchesPlayed   int    `json:"matchesPlayed"`
	PlacementPoints int    `json:"placementPoints"`
	KillPoints      int    `json:"killPoints"`
	TotalPoints     int    `json:"totalPoints"`
	Booyahs         int    `json:"booyahs"`
	TotalKills      int    `json:"totalKills"`
}

// SessionSummary is a lightweight record for list commands.
type SessionSummary struct {
	ID        string
	Name      string
	Kind      string
	Status    string
	Teams     int
	Matches   int
	UpdatedAt time.Time
}
