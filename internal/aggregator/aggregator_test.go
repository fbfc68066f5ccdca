package aggregator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pable/royaleops/internal/model"
)

// ev builds a canonical event; value < 0 means no payload.
func ev(kind model.EventKind, t float64, subject string, value float64) model.ReplayEvent {
	e := model.ReplayEvent{Time: t, Kind: kind, Code: int(kind), Subject: subject}
	if value >= 0 {
		e.Value = value
		e.HasValue = true
	}
	return e
}

func TestTeamTag(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"ABC.Sniper", "ABC"},
		{"ABC•Sniper", "ABC"},
		{"ABC.Sni.per", "ABC"},
		{"lonewolf", model.UnaffiliatedTag},
		{".nameless", ""},
	}
	for _, tt := range tests {
		if got := TeamTag(tt.name, Options{}); got != tt.want {
			t.Errorf("TeamTag(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	if got := TeamTag("ABC-Sniper", Options{Separators: "-"}); got != "ABC" {
		t.Errorf("custom separator: got %q", got)
	}
}

func TestAggregate_DamageKillsAndWindow(t *testing.T) {
	events := []model.ReplayEvent{
		ev(model.EventDamage, 100, "ABC.one", 150),
		ev(model.EventKill, 120, "ABC.one", -1),
		ev(model.EventKill, 130, "ABC.one", 999), // payload ignored on kills
		ev(model.EventDamage, 90, "ABC.one", -1), // earlier time, no payload
		ev(model.EventDamage, 400, "ABC.one", 50.5),
		ev(model.EventPlayerPresence, 10, "XYZ.two", -1),
	}

	players, elims := Aggregate(events, Options{})

	want := map[string]model.PlayerStat{
		"ABC.one": {Name: "ABC.one", TeamTag: "ABC", Kills: 2, Damage: 200.5, FirstEventTime: 90, LastEventTime: 400},
		"XYZ.two": {Name: "XYZ.two", TeamTag: "XYZ", FirstEventTime: 10, LastEventTime: 10},
	}
	if diff := cmp.Diff(want, players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
	if len(elims) != 0 {
		t.Errorf("expected no eliminations, got %v", elims)
	}
}

func TestAggregate_OnlyCreatingKindsIntroducePlayers(t *testing.T) {
	events := []model.ReplayEvent{
		ev(model.EventUnknown, 5, "ABC.ghost", 10),
		ev(model.EventTeamEliminated, 6, "ABC.ghost", -1),
		ev(model.EventKill, 50, "ABC.late", -1),
		ev(model.EventUnknown, 70, "ABC.late", -1),
	}
	players, _ := Aggregate(events, Options{})

	if _, ok := players["ABC.ghost"]; ok {
		t.Error("unknown/elimination events must not create a player record")
	}
	late, ok := players["ABC.late"]
	if !ok {
		t.Fatal("expected ABC.late to be created by its kill")
	}
	if late.LastEventTime != 70 {
		t.Errorf("unknown event for a known player should widen the window, got last=%v", late.LastEventTime)
	}
}

func TestAggregate_Eliminations(t *testing.T) {
	events := []model.ReplayEvent{
		ev(model.EventTeamEliminated, 100, "TeamX", -1),
		ev(model.EventTeamEliminated, 200, "TeamY", -1),
		ev(model.EventTeamEliminated, 250, "TeamX", -1), // last write wins
	}
	_, elims := Aggregate(events, Options{})

	want := map[string]float64{"TeamX": 250, "TeamY": 200}
	if diff := cmp.Diff(want, elims); diff != "" {
		t.Errorf("eliminations mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Unaffiliated(t *testing.T) {
	players, _ := Aggregate([]model.ReplayEvent{ev(model.EventKill, 1, "solo", -1)}, Options{})
	if players["solo"].TeamTag != model.UnaffiliatedTag {
		t.Errorf("expected unaffiliated tag, got %q", players["solo"].TeamTag)
	}
}

func TestAggregate_Empty(t *testing.T) {
	players, elims := Aggregate(nil, Options{})
	if len(players) != 0 || len(elims) != 0 {
		t.Errorf("expected empty results, got %v %v", players, elims)
	}
}
