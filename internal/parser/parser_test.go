package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pable/royaleops/internal/model"
)

func TestParseReplay(t *testing.T) {
	data := []byte(`{
		"Version": 3,
		"Events": [
			{"Event": 2, "Time": 10.5, "SParam": "ABC.one", "FParam": 120},
			{"Event": 4, "Time": 11, "SParam": "ABC.one"},
			{"Event": 1, "Time": 300, "SParam": "XYZ"},
			{"Event": 9, "Time": 301, "SParam": "whatever"}
		]
	}`)

	events, err := ParseReplay(data)
	if err != nil {
		t.Fatalf("ParseReplay: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	if events[0].Kind != model.EventDamage || events[0].Value != 120 || !events[0].HasValue {
		t.Errorf("unexpected damage event %+v", events[0])
	}
	if events[1].Kind != model.EventKill || events[1].HasValue {
		t.Errorf("unexpected kill event %+v", events[1])
	}
	if events[2].Kind != model.EventTeamEliminated || events[2].Subject != "XYZ" || events[2].Time != 300 {
		t.Errorf("unexpected elimination event %+v", events[2])
	}
	if events[3].Kind != model.EventUnknown || events[3].Code != 9 {
		t.Errorf("expected unknown kind for code 9, got %+v", events[3])
	}
}

func TestParseReplay_PreservesOrder(t *testing.T) {
	data := []byte(`{"Events":[{"Event":2,"Time":50,"SParam":"a"},{"Event":2,"Time":5,"SParam":"b"}]}`)
	events, err := ParseReplay(data)
	if err != nil {
		t.Fatalf("ParseReplay: %v", err)
	}
	if events[0].Subject != "a" || events[1].Subject != "b" {
		t.Errorf("events reordered: %+v", events)
	}
}

func TestParseReplay_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "this is not a replay"},
		{"array", `[{"Event":2}]`},
		{"truncated", `{"Events":[{"Event":2,`},
		{"wrong field type", `{"Events":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReplay([]byte(tt.data))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if errors.Is(err, ErrNoEvents) {
				t.Errorf("malformed input must not report ErrNoEvents")
			}
		})
	}
}

func TestParseReplay_MissingEvents(t *testing.T) {
	_, err := ParseReplay([]byte(`{"Version": 3}`))
	if !errors.Is(err, ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("expected ErrNoEvents to be carried by a FormatError")
	}
}

func TestParseReplay_EmptyEvents(t *testing.T) {
	events, err := ParseReplay([]byte(`{"Events": []}`))
	if err != nil {
		t.Fatalf("ParseReplay: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestParseReplayFile_Hash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match1.json")
	content := []byte(`{"Events":[{"Event":4,"Time":1,"SParam":"A.b"}]}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	r1, err := ParseReplayFile(path)
	if err != nil {
		t.Fatalf("ParseReplayFile: %v", err)
	}
	r2, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r1.Hash != r2.Hash || len(r1.Hash) != 64 {
		t.Errorf("unexpected hashes %q / %q", r1.Hash, r2.Hash)
	}

	if _, err := ParseReplayFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
