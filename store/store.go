/*
Package store persists conversation state.

PURPOSE:
  One ChatData tree per conversation id plus a single global preferences
  record. Trees are created on first access and never explicitly
  destroyed. Engines mutate an in-memory tree and a SaveFunc writes it
  back after every mutation.

IMPLEMENTATIONS:
  - Memory (this package): tests and development
  - store/sqlite: production, one JSON row per conversation
*/
package store

import (
	"sync"

	"github.com/warp/life-engine/state"
)

// Store persists per-conversation trees and global preferences.
type Store interface {
	// Get loads the tree for a conversation, creating it on first access.
	Get(convID string) (*state.ChatData, error)

	// Put writes a tree back. Called after every mutation.
	Put(convID string, cd *state.ChatData) error

	// Conversations lists every known conversation id.
	Conversations() ([]string, error)

	// Prefs loads the global preferences record.
	Prefs() (*state.Preferences, error)

	// PutPrefs writes the global preferences record.
	PutPrefs(p *state.Preferences) error

	// Close releases underlying resources.
	Close() error
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory is the in-memory Store for tests and development.
type Memory struct {
	mu    sync.RWMutex
	chats map[string]*state.ChatData
	prefs state.Preferences
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{chats: make(map[string]*state.ChatData)}
}

func (m *Memory) Get(convID string) (*state.ChatData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cd, ok := m.chats[convID]; ok {
		return cd, nil
	}
	cd := state.NewChatData()
	m.chats[convID] = cd
	return cd, nil
}

func (m *Memory) Put(convID string, cd *state.ChatData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[convID] = cd
	return nil
}

func (m *Memory) Conversations() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.chats))
	for id := range m.chats {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) Prefs() (*state.Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p := m.prefs
	return &p, nil
}

func (m *Memory) PutPrefs(p *state.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = *p
	return nil
}

func (m *Memory) Close() error { return nil }
