// Package store owns the per-agent SQLite databases. Each agent's data
// lives in its own database file under <data-dir>/agents/<id>.db; a
// handle opened for one agent cannot reach another agent's file. The
// schema is applied with embedded goose migrations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// ErrNotFound is returned by Open when no database exists for an agent.
var ErrNotFound = errors.New("agent database not found")

// ErrExists is returned by Create when the agent database already exists.
var ErrExists = errors.New("agent database already exists")

// agentsSubdir is the directory under the data dir holding agent databases.
const agentsSubdir = "agents"

// Options configures a Manager.
type Options struct {
	Logger *slog.Logger
}

// Manager locates, creates, and removes per-agent databases under a
// single data directory. It holds no open handles itself; every Open
// returns a fresh AgentDB owned by the caller.
type Manager struct {
	dataDir string
	logger  *slog.Logger
}

// NewManager returns a Manager rooted at dataDir.
func NewManager(dataDir string, opts *Options) *Manager {
	logger := slog.New(slog.DiscardHandler)
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}
	return &Manager{dataDir: dataDir, logger: logger}
}

func (m *Manager) path(agentID string) string {
	return filepath.Join(m.dataDir, agentsSubdir, agentID+".db")
}

// dsn builds the connection string with the pragmas every handle needs:
// WAL for concurrent readers, foreign keys on, and a busy timeout so
// same-agent write contention surfaces as an error instead of hanging.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Open opens the database for agentID. It returns ErrNotFound when no
// database exists; Open never creates one.
func (m *Manager) Open(ctx context.Context, agentID string) (*AgentDB, error) {
	path := m.path(agentID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
		}
		return nil, fmt.Errorf("stat agent database: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open agent database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping agent database: %w", err)
	}
	return &AgentDB{db: db, agentID: agentID}, nil
}

// Create creates and migrates a fresh database for agentID. The new
// handle is returned open; the caller owns it.
func (m *Manager) Create(ctx context.Context, agentID string) (*AgentDB, error) {
	path := m.path(agentID)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create agents directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("create agent database: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("migrate agent database: %w", err)
	}

	m.logger.Info("created agent database", "agent", agentID, "path", path)
	return &AgentDB{db: db, agentID: agentID}, nil
}

// Remove deletes the database for agentID, including WAL sidecar files.
// Removing an unknown agent returns ErrNotFound.
func (m *Manager) Remove(agentID string) error {
	path := m.path(agentID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("agent %s: %w", agentID, ErrNotFound)
		}
		return fmt.Errorf("stat agent database: %w", err)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	m.logger.Info("removed agent database", "agent", agentID)
	return nil
}

// List returns the ids of all agents with a database, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(m.dataDir, agentsSubdir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agents directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".db") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".db"))
	}
	sort.Strings(ids)
	return ids, nil
}
