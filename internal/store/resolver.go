package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/qrow2022/wazuh/internal/wdb"
)

// Resolver adapts a Manager to the dispatcher's Opener interface,
// translating the package's not-found sentinel into the one the
// dispatcher matches on.
type Resolver struct {
	manager *Manager
}

// NewResolver returns a Resolver over manager.
func NewResolver(manager *Manager) *Resolver {
	return &Resolver{manager: manager}
}

// Open resolves agentID to its store handle.
func (r *Resolver) Open(ctx context.Context, agentID string) (wdb.Store, error) {
	db, err := r.manager.Open(ctx, agentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("agent %s: %w", agentID, wdb.ErrAgentNotFound)
		}
		return nil, err
	}
	return db, nil
}

var _ wdb.Opener = (*Resolver)(nil)
