package wdb

import (
	"context"
	"errors"
	"fmt"
)

// ErrAgentNotFound is returned by an Opener when no database exists for
// the requested agent id.
var ErrAgentNotFound = errors.New("agent not found")

// Store is the capability surface a handler may use against one agent's
// database. Every operation is scoped to the agent the Store was opened
// for; a Store must never expose another agent's data.
type Store interface {
	GetOS(ctx context.Context) (string, error)
	SetOS(ctx context.Context, info string) error

	GetLabels(ctx context.Context) ([]Label, error)
	SetLabel(ctx context.Context, key, value string) error
	DeleteLabels(ctx context.Context) error

	SaveSyscheck(ctx context.Context, file, checksum string) error
	GetSyscheck(ctx context.Context, file string) (checksum string, found bool, err error)
	CleanSyscheck(ctx context.Context) (int64, error)

	// Query executes a read-only statement and returns the rows rendered
	// as a JSON array. Callers must validate the statement is read-only.
	Query(ctx context.Context, stmt string) (string, error)

	Vacuum(ctx context.Context) error

	Close() error
}

// Label is one key/value label attached to an agent.
type Label struct {
	Key   string
	Value string
}

// Opener resolves an agent id to its Store. Implementations return an
// error wrapping ErrAgentNotFound when no database exists for the id.
type Opener interface {
	Open(ctx context.Context, agentID string) (Store, error)
}

// maxAgentIDLen bounds agent ids; ids are zero-padded decimals ("003").
const maxAgentIDLen = 8

// ValidateAgentID checks that id is a non-empty decimal string of bounded
// length. It does not check that a database exists for the id.
func ValidateAgentID(id string) error {
	if id == "" {
		return fmt.Errorf("agent id is empty")
	}
	if len(id) > maxAgentIDLen {
		return fmt.Errorf("agent id %q exceeds %d characters", id, maxAgentIDLen)
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return fmt.Errorf("agent id %q contains non-digit characters", id)
		}
	}
	return nil
}
