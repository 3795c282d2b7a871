package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/life-engine/state"
	"github.com/warp/life-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// CHATS
// =============================================================================

func TestGet_CreatesOnFirstAccess(t *testing.T) {
	s := newTestStore(t)

	cd, err := s.Get("chat-1")
	require.NoError(t, err)
	require.NotNil(t, cd)
	assert.NotEmpty(t, cd.Social.IncomeTiers, "fresh trees carry engine defaults")

	ids, err := s.Conversations()
	require.NoError(t, err)
	assert.Equal(t, []string{"chat-1"}, ids, "first access persists the row")
}

func TestPutGet_RoundTripsTheTree(t *testing.T) {
	s := newTestStore(t)

	cd, err := s.Get("chat-1")
	require.NoError(t, err)
	cd.Ledger.Living = 500_000
	cd.Social.Followers = 1200
	cd.Tasks.Todos = append(cd.Tasks.Todos, state.Todo{ID: 1, Title: "주문 케이크"})
	require.NoError(t, s.Put("chat-1", cd))

	got, err := s.Get("chat-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), got.Ledger.Living)
	assert.Equal(t, int64(1200), got.Social.Followers)
	require.Len(t, got.Tasks.Todos, 1)
	assert.Equal(t, "주문 케이크", got.Tasks.Todos[0].Title)
}

func TestConversations_SortedByID(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"zebra", "alpha", "mid"} {
		_, err := s.Get(id)
		require.NoError(t, err)
	}

	ids, err := s.Conversations()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, ids)
}

// =============================================================================
// PREFERENCES
// =============================================================================

func TestPrefs_DefaultThenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Prefs()
	require.NoError(t, err)
	assert.False(t, p.PanelOpen)

	require.NoError(t, s.PutPrefs(&state.Preferences{PanelOpen: true, OpenModules: []string{"ledger", "social"}}))
	require.NoError(t, s.PutPrefs(&state.Preferences{PanelOpen: true, OpenModules: []string{"ledger"}}))

	p, err = s.Prefs()
	require.NoError(t, err)
	assert.True(t, p.PanelOpen)
	assert.Equal(t, []string{"ledger"}, p.OpenModules, "single upserted row")
}

// =============================================================================
// LEGACY MIGRATION
// =============================================================================

func TestMigrate_FoldsLegacyGlobalRow(t *testing.T) {
	// GIVEN: a database with the pre-multi-chat "__global__" row
	// WHEN: reopening the store
	// THEN: its todo/schedule move under the synthetic conversation and
	//       the legacy row is gone

	dbPath := filepath.Join(t.TempDir(), "life.db")
	s, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	insertLegacyRow(t, dbPath, `{
		"todo": [{"id": 1, "title": "주문 케이크 만들기"}],
		"schedule": [{"id": 2, "title": "납품", "date": "2025-03-15"}]
	}`)

	s, err = sqlite.New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	cd, err := s.Get(sqlite.LegacyConversationID)
	require.NoError(t, err)
	require.Len(t, cd.Tasks.Todos, 1)
	assert.Equal(t, "주문 케이크 만들기", cd.Tasks.Todos[0].Title)
	require.Len(t, cd.Tasks.Schedule, 1)
	assert.Equal(t, "2025-03-15", cd.Tasks.Schedule[0].Date.String())

	ids, err := s.Conversations()
	require.NoError(t, err)
	assert.NotContains(t, ids, "__global__")
	assert.Contains(t, ids, sqlite.LegacyConversationID)
}

func TestMigrate_DropsUnreadableLegacyRow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "life.db")
	s, err := sqlite.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	insertLegacyRow(t, dbPath, `this was never json`)

	s, err = sqlite.New(dbPath)
	require.NoError(t, err, "startup survives corrupt legacy data")
	defer s.Close()

	ids, err := s.Conversations()
	require.NoError(t, err)
	assert.NotContains(t, ids, "__global__")
	assert.NotContains(t, ids, sqlite.LegacyConversationID, "nothing to fold")
}

func TestMigrate_IdempotentOnCleanDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "life.db")
	for i := 0; i < 2; i++ {
		s, err := sqlite.New(dbPath)
		require.NoError(t, err)
		_, err = s.Get("chat-1")
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
}

func insertLegacyRow(t *testing.T, dbPath, raw string) {
	t.Helper()
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(
		`INSERT INTO chats (conv_id, data, updated_at) VALUES (?, ?, ?)`,
		"__global__", raw, "2024-01-01T00:00:00Z")
	require.NoError(t, err)
}
