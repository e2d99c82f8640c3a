// Package store persists board items and chat histories in SQLite.
// Records are stored as JSON blobs keyed by id; the store does no
// interpretation of item content beyond decoding on read.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"visionboard/internal/logging"
	"visionboard/internal/types"
)

// Store wraps the SQLite database holding board state.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// New opens (or creates) the database at path and initializes the schema.
func New(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "New")
	defer timer.Stop()

	logging.Store("Opening store at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Store initialization complete")
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chat_histories (
		agent TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetAllItems loads every board item. Rows that fail to decode are
// skipped with a warning rather than failing the whole load.
func (s *Store) GetAllItems() ([]types.VisionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, data FROM items")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []types.VisionItem
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		var item types.VisionItem
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			logging.StoreWarn("Skipping undecodable item %s: %v", id, err)
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	logging.StoreDebug("Loaded %d items", len(items))
	return items, nil
}

// PutItem inserts or replaces one item.
func (s *Store) PutItem(item types.VisionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item %s: %w", item.ID, err)
	}
	if _, err := s.db.Exec("INSERT OR REPLACE INTO items (id, data) VALUES (?, ?)", item.ID, string(data)); err != nil {
		return fmt.Errorf("failed to store item %s: %w", item.ID, err)
	}
	logging.StoreDebug("Stored item %s type=%s", item.ID, item.Type)
	return nil
}

// DeleteItem removes one item. Deleting an absent id is not an error.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	logging.StoreDebug("Deleted item %s", id)
	return nil
}

// GetChatHistory loads the message history for one agent. A missing
// history is an empty one.
func (s *Store) GetChatHistory(agent string) ([]types.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow("SELECT data FROM chat_histories WHERE agent = ?", agent).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history for %s: %w", agent, err)
	}
	var messages []types.ChatMessage
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat history for %s: %w", agent, err)
	}
	return messages, nil
}

// PutChatHistory stores the full message history for one agent.
func (s *Store) PutChatHistory(agent string, messages []types.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history for %s: %w", agent, err)
	}
	if _, err := s.db.Exec("INSERT OR REPLACE INTO chat_histories (agent, data) VALUES (?, ?)", agent, string(data)); err != nil {
		return fmt.Errorf("failed to store chat history for %s: %w", agent, err)
	}
	logging.StoreDebug("Stored chat history for %s (%d messages)", agent, len(messages))
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
