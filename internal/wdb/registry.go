package wdb

import (
	"context"
	"fmt"
	"sort"
)

// Handler processes one command against an agent's store. Handlers
// validate their own argument values, surface every storage error as
// ErrStorageFailure, and never touch data outside the Store they are
// given.
type Handler func(ctx context.Context, store Store, args []string) Result

// HandlerEntry binds a verb to its handler and minimum argument count.
// The arity check runs before the handler; a handler can rely on
// len(args) >= MinArgs.
type HandlerEntry struct {
	Verb    string
	MinArgs int
	Handler Handler

	// ReadOnly marks handlers that issue no writes. Callers may retry
	// read-only commands; write commands are never retried here.
	ReadOnly bool
}

// Registry is the fixed verb table. It is built once at startup, never
// mutated afterwards, and therefore safe to share without locking.
type Registry struct {
	entries map[string]HandlerEntry
}

// NewRegistry builds a Registry from the given entries. Duplicate verbs
// and entries without a handler are rejected.
func NewRegistry(entries ...HandlerEntry) (*Registry, error) {
	r := &Registry{entries: make(map[string]HandlerEntry, len(entries))}
	for _, e := range entries {
		if e.Verb == "" {
			return nil, fmt.Errorf("registry entry with empty verb")
		}
		if e.Handler == nil {
			return nil, fmt.Errorf("registry entry %q has no handler", e.Verb)
		}
		if _, exists := r.entries[e.Verb]; exists {
			return nil, fmt.Errorf("duplicate registry entry %q", e.Verb)
		}
		r.entries[e.Verb] = e
	}
	return r, nil
}

// Lookup returns the entry for verb, if registered.
func (r *Registry) Lookup(verb string) (HandlerEntry, bool) {
	e, ok := r.entries[verb]
	return e, ok
}

// Verbs returns all registered verbs, sorted.
func (r *Registry) Verbs() []string {
	verbs := make([]string, 0, len(r.entries))
	for v := range r.entries {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return verbs
}

// DefaultRegistry returns the registry for the daemon's agent command set.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		HandlerEntry{Verb: "getos", MinArgs: 0, Handler: handleGetOS, ReadOnly: true},
		HandlerEntry{Verb: "setos", MinArgs: 1, Handler: handleSetOS},
		HandlerEntry{Verb: "getlabels", MinArgs: 0, Handler: handleGetLabels, ReadOnly: true},
		HandlerEntry{Verb: "setlabel", MinArgs: 2, Handler: handleSetLabel},
		HandlerEntry{Verb: "dellabels", MinArgs: 0, Handler: handleDelLabels},
		HandlerEntry{Verb: "syscheck", MinArgs: 1, Handler: handleSyscheck},
		HandlerEntry{Verb: "sql", MinArgs: 1, Handler: handleSQL, ReadOnly: true},
		HandlerEntry{Verb: "vacuum", MinArgs: 0, Handler: handleVacuum},
	)
	if err != nil {
		// The default table is static; an invalid entry is a programming error.
		panic(err)
	}
	return r
}
