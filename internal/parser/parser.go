package parser

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/pable/royaleops/internal/model"
)

// ErrNoEvents is wrapped by the FormatError returned for a well-formed replay object
// without an Events field. Importers treat it as an empty, no-op upload.
var ErrNoEvents = errors.New("replay has no Events field")

// FormatError reports replay content that is not the expected structured data.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("replay format: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// rawReplay mirrors the uploaded file. Events is a pointer so that an absent field can
// be told apart from an empty list.
type rawReplay struct {
	Events *[]rawEvent `json:"Events"`
}

type rawEvent struct {
	Event  float64  `json:"Event"`
	Time   float64  `json:"Time"`
	SParam string   `json:"SParam"`
	FParam *float64 `json:"FParam"`
}

// ParseReplay decodes raw replay content into canonical events, preserving file order.
// Only the structure is checked: unknown event codes pass through as EventUnknown.
func ParseReplay(data []byte) ([]model.ReplayEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &FormatError{Err: errors.New("expected a JSON object")}
	}

	var raw rawReplay
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &FormatError{Err: err}
	}
	if raw.Events == nil {
		return nil, &FormatError{Err: ErrNoEvents}
	}

	out := make([]model.ReplayEvent, 0, len(*raw.Events))
	for _, e := range *raw.Events {
		code := int(e.Event)
		ev := model.ReplayEvent{
			Time:    e.Time,
			Kind:    model.EventKindFromCode(code),
			Code:    code,
			Subject: e.SParam,
		}
		if e.FParam != nil {
			ev.Value = *e.FParam
			ev.HasValue = true
		}
		out = append(out, ev)
	}
	return out, nil
}

// ParseReplayFile reads and parses the replay at path. The returned hash identifies the
// upload so a re-import of the same file can be recognised.
func ParseReplayFile(path string) (*model.Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return Parse(data)
}

// Parse hashes and parses in-memory replay content.
func Parse(data []byte) (*model.Replay, error) {
	sum := sha256.Sum256(data)
	events, err := ParseReplay(data)
	if err != nil {
		return nil, err
	}
	return &model.Replay{
		Hash:   fmt.Sprintf("%x", sum),
		Events: events,
	}, nil
}
