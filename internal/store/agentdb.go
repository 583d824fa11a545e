package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qrow2022/wazuh/internal/wdb"
)

// AgentDB is an open handle to one agent's database. It implements the
// dispatcher's Store interface; every query it issues runs against this
// agent's file only. A handle is owned by a single request and closed
// when the request completes.
type AgentDB struct {
	db      *sql.DB
	agentID string
}

// NewAgentDB wraps an already-open database connection. Used by tests to
// inject mock connections; production handles come from Manager.
func NewAgentDB(db *sql.DB, agentID string) *AgentDB {
	return &AgentDB{db: db, agentID: agentID}
}

// AgentID returns the id this handle is scoped to.
func (a *AgentDB) AgentID() string { return a.agentID }

// Close closes the underlying connection.
func (a *AgentDB) Close() error {
	return a.db.Close()
}

// GetOS returns the stored OS info string, or "" when none has been set.
func (a *AgentDB) GetOS(ctx context.Context) (string, error) {
	var info string
	err := a.db.QueryRowContext(ctx, `SELECT os_info FROM os_info WHERE id = 0`).Scan(&info)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get os info: %w", err)
	}
	return info, nil
}

// SetOS stores the OS info string, replacing any previous value.
func (a *AgentDB) SetOS(ctx context.Context, info string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO os_info (id, os_info, updated_at) VALUES (0, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET os_info = excluded.os_info, updated_at = excluded.updated_at`,
		info, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set os info: %w", err)
	}
	return nil
}

// GetLabels returns all labels ordered by key.
func (a *AgentDB) GetLabels(ctx context.Context) ([]wdb.Label, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT key, value FROM labels ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get labels: %w", err)
	}
	defer rows.Close()

	var labels []wdb.Label
	for rows.Next() {
		var l wdb.Label
		if err := rows.Scan(&l.Key, &l.Value); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// SetLabel upserts one label.
func (a *AgentDB) SetLabel(ctx context.Context, key, value string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO labels (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set label: %w", err)
	}
	return nil
}

// DeleteLabels removes all labels.
func (a *AgentDB) DeleteLabels(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM labels`); err != nil {
		return fmt.Errorf("delete labels: %w", err)
	}
	return nil
}

// SaveSyscheck upserts a file integrity entry.
func (a *AgentDB) SaveSyscheck(ctx context.Context, file, checksum string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO syscheck_entries (file, checksum, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(file) DO UPDATE SET checksum = excluded.checksum, updated_at = excluded.updated_at`,
		file, checksum, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save syscheck entry: %w", err)
	}
	return nil
}

// GetSyscheck returns the checksum recorded for file, with found=false
// when no entry exists.
func (a *AgentDB) GetSyscheck(ctx context.Context, file string) (string, bool, error) {
	var checksum string
	err := a.db.QueryRowContext(ctx,
		`SELECT checksum FROM syscheck_entries WHERE file = ?`, file,
	).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get syscheck entry: %w", err)
	}
	return checksum, true, nil
}

// CleanSyscheck deletes all file integrity entries and returns the count
// removed.
func (a *AgentDB) CleanSyscheck(ctx context.Context) (int64, error) {
	res, err := a.db.ExecContext(ctx, `DELETE FROM syscheck_entries`)
	if err != nil {
		return 0, fmt.Errorf("clean syscheck entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clean syscheck entries: %w", err)
	}
	return n, nil
}

// Query executes a statement and renders the result set as a JSON array
// of column-keyed objects. The caller is responsible for ensuring the
// statement is read-only.
func (a *AgentDB) Query(ctx context.Context, stmt string) (string, error) {
	rows, err := a.db.QueryContext(ctx, stmt)
	if err != nil {
		return "", fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("query columns: %w", err)
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("query rows: %w", err)
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode rows: %w", err)
	}
	return string(encoded), nil
}

// Vacuum compacts the agent database.
func (a *AgentDB) Vacuum(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// Ensure AgentDB satisfies the dispatcher's store contract.
var _ wdb.Store = (*AgentDB)(nil)
