/*
Package sqlite provides the SQLite-backed Store.

PURPOSE:
  Persists one JSON-encoded ChatData tree per conversation plus the
  global preferences record. The tree is small and always written whole
  after a mutation, so a single TEXT column beats a normalized schema.

KEY TABLES:
  chats: conversation id -> ChatData JSON, updated_at
  prefs: single-row global preferences JSON

WAL MODE:
  Opened with WAL for better crash recovery; the access pattern is a
  single writer per conversation.

LEGACY MIGRATION:
  Early builds persisted one global todo/schedule pair at the top level
  instead of per-conversation trees. On open, a surviving "legacy" row
  with top-level todo/schedule arrays is folded into a synthetic
  conversation and the legacy row deleted.

SEE ALSO:
  - store/store.go: interface and in-memory implementation
*/
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/life-engine/state"
	"github.com/warp/life-engine/store"
)

// LegacyConversationID is the synthetic key legacy global data moves to.
const LegacyConversationID = "legacy-import"

// legacyRowID marks the pre-multi-chat global row.
const legacyRowID = "__global__"

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) a store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		conv_id    TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS prefs (
		id   INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.migrateLegacyLayout()
}

// migrateLegacyLayout folds a pre-multi-chat global row into a synthetic
// conversation.
func (s *Store) migrateLegacyLayout() error {
	var raw string
	err := s.db.QueryRow(`SELECT data FROM chats WHERE conv_id = ?`, legacyRowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	var legacy struct {
		Todo     []state.Todo         `json:"todo"`
		Schedule []state.ScheduleItem `json:"schedule"`
	}
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		// Unreadable legacy data: drop the row rather than fail startup.
		_, err = s.db.Exec(`DELETE FROM chats WHERE conv_id = ?`, legacyRowID)
		return err
	}

	cd, err := s.Get(LegacyConversationID)
	if err != nil {
		return err
	}
	cd.Tasks.Todos = append(cd.Tasks.Todos, legacy.Todo...)
	cd.Tasks.Schedule = append(cd.Tasks.Schedule, legacy.Schedule...)
	if err := s.Put(LegacyConversationID, cd); err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM chats WHERE conv_id = ?`, legacyRowID)
	return err
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

func (s *Store) Get(convID string) (*state.ChatData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRow(`SELECT data FROM chats WHERE conv_id = ?`, convID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		cd := state.NewChatData()
		if err := s.putLocked(convID, cd); err != nil {
			return nil, err
		}
		return cd, nil
	}
	if err != nil {
		return nil, err
	}

	cd := state.NewChatData()
	if err := json.Unmarshal([]byte(raw), cd); err != nil {
		return nil, fmt.Errorf("corrupt chat data for %s: %w", convID, err)
	}
	return cd, nil
}

func (s *Store) Put(convID string, cd *state.ChatData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(convID, cd)
}

func (s *Store) putLocked(convID string, cd *state.ChatData) error {
	raw, err := json.Marshal(cd)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO chats (conv_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(conv_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		convID, string(raw), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Conversations() ([]string, error) {
	rows, err := s.db.Query(`SELECT conv_id FROM chats ORDER BY conv_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Prefs() (*state.Preferences, error) {
	var raw string
	err := s.db.QueryRow(`SELECT data FROM prefs WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &state.Preferences{}, nil
	}
	if err != nil {
		return nil, err
	}
	var p state.Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) PutPrefs(p *state.Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO prefs (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, string(raw))
	return err
}
