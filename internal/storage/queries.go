package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pable/royaleops/internal/model"
	"github.com/pable/royaleops/internal/session"
)

// Collections. Open sessions live in the waiting list until they are archived.
const (
	tableOpen  = "waiting_list"
	tableSaved = "saved_sessions"
)

// ErrNotFound is returned when no session matches the requested id or prefix.
var ErrNotFound = errors.New("session not found")

// ReplayImport records which replay file scored a match.
type ReplayImport struct {
	SessionID  string
	MatchIndex int
	Hash       string
	ImportedAt time.Time
}

// SaveOpen upserts s into the waiting list. The whole session is stored as one payload.
func (db *DB) SaveOpen(s *session.Session) error {
	if s.Status != session.StatusOpen {
		return fmt.Errorf("save session %s: status is %s", s.ID, s.Status)
	}
	return db.put(tableOpen, s)
}

// Archive moves s from the waiting list into the saved collection.
func (db *DB) Archive(s *session.Session) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s.Status = session.StatusSaved
	if err := putTx(tx, tableSaved, s); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM "+tableOpen+" WHERE id = ?", s.ID); err != nil {
		return fmt.Errorf("remove %s from waiting list: %w", s.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	db.log.Info().Str("session", s.ID).Msg("session archived")
	return nil
}

func (db *DB) put(table string, s *session.Session) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := putTx(tx, table, s); err != nil {
		return err
	}
	return tx.Commit()
}

func putTx(tx *sql.Tx, table string, s *session.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO `+table+`(id, name, kind, updated_at, payload)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, string(s.Kind), s.UpdatedAt.UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert %s into %s: %w", s.ID, table, err)
	}
	return nil
}

// GetSession finds the first session, open sessions first, whose id starts with prefix.
// Returns ErrNotFound when nothing matches.
func (db *DB) GetSession(prefix string) (*session.Session, error) {
	for _, table := range []string{tableOpen, tableSaved} {
		var payload string
		err := db.conn.QueryRow(
			"SELECT payload FROM "+table+" WHERE id LIKE ? ORDER BY updated_at DESC LIMIT 1",
			prefix+"%",
		).Scan(&payload)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		var s session.Session
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", prefix, err)
		}
		return &s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
}

// ListOpen returns summaries of the waiting list, most recently updated first.
func (db *DB) ListOpen() ([]model.SessionSummary, error) {
	return db.list(tableOpen)
}

// ListSaved returns summaries of archived sessions, most recently updated first.
func (db *DB) ListSaved() ([]model.SessionSummary, error) {
	return db.list(tableSaved)
}

func (db *DB) list(table string) ([]model.SessionSummary, error) {
	rows, err := db.conn.Query("SELECT payload FROM " + table + " ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SessionSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var s session.Session
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", table, err)
		}
		out = append(out, s.Summary())
	}
	return out, rows.Err()
}

// DeleteSession removes a session from both collections together with its import
// records. It reports whether anything was deleted.
func (db *DB) DeleteSession(id string) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var n int64
	for _, table := range []string{tableOpen, tableSaved} {
		res, err := tx.Exec("DELETE FROM "+table+" WHERE id = ?", id)
		if err != nil {
			return false, fmt.Errorf("delete %s from %s: %w", id, table, err)
		}
		affected, _ := res.RowsAffected()
		n += affected
	}
	if _, err := tx.Exec("DELETE FROM replay_imports WHERE session_id = ?", id); err != nil {
		return false, fmt.Errorf("delete imports of %s: %w", id, err)
	}
	return n > 0, tx.Commit()
}

// RecordImport remembers the replay that scored a match, replacing any earlier import.
func (db *DB) RecordImport(ri ReplayImport) error {
	if ri.ImportedAt.IsZero() {
		ri.ImportedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO replay_imports(session_id, match_index, hash, imported_at)
		VALUES (?, ?, ?, ?)`,
		ri.SessionID, ri.MatchIndex, ri.Hash, ri.ImportedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ImportFor returns the import recorded for a match, or nil if the match was scored
// by hand or not at all.
func (db *DB) ImportFor(sessionID string, match int) (*ReplayImport, error) {
	ri := ReplayImport{SessionID: sessionID, MatchIndex: match}
	var at string
	err := db.conn.QueryRow(`
		SELECT hash, imported_at FROM replay_imports
		WHERE session_id = ? AND match_index = ?`, sessionID, match).
		Scan(&ri.Hash, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ri.ImportedAt, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, fmt.Errorf("parse imported_at %q: %w", at, err)
	}
	return &ri, nil
}

// QueryRaw runs an arbitrary read query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
