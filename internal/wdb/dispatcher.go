package wdb

import (
	"context"
	"errors"
	"log/slog"
)

// Statuses returned by Parse alongside the response string.
const (
	StatusOK    = 0
	StatusError = -1
)

// agentNamespace is the top-level verb addressing a specific agent:
// "agent <id> <command> [args...]".
const agentNamespace = "agent"

// Options configures a Dispatcher.
type Options struct {
	// Logger receives per-request trace output. Defaults to a discard
	// logger.
	Logger *slog.Logger
}

// Dispatcher is the daemon's single public entry point. Each call runs
// one request through tokenize → resolve → lookup → arity check → invoke
// → format, short-circuiting to the formatter on the first failure.
// A Dispatcher holds no per-request state; concurrent calls are safe as
// long as the storage layer serializes access per agent.
type Dispatcher struct {
	registry *Registry
	opener   Opener
	logger   *slog.Logger
}

// NewDispatcher builds a Dispatcher over the given verb registry and
// store opener.
func NewDispatcher(registry *Registry, opener Opener, opts *Options) *Dispatcher {
	logger := slog.New(slog.DiscardHandler)
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}
	return &Dispatcher{registry: registry, opener: opener, logger: logger}
}

// Parse processes one raw request line and returns a status (StatusOK or
// StatusError) plus the wire response. The response is well-formed on
// every path; failures are never represented by a crash or an empty
// string.
func (d *Dispatcher) Parse(ctx context.Context, input string) (int, string) {
	res := d.dispatch(ctx, input)
	if res.IsOk() {
		return StatusOK, Format(res)
	}
	d.logger.Debug("request failed",
		"kind", res.Kind().String(),
		"message", res.Message(),
	)
	return StatusError, Format(res)
}

func (d *Dispatcher) dispatch(ctx context.Context, input string) Result {
	cmd, err := Tokenize(input)
	if err != nil {
		return Errf(ErrMalformedCommand, "malformed command: %v", err)
	}
	if cmd.Verb != agentNamespace {
		return Errf(ErrUnknownCommand, "unknown command %q", cmd.Verb)
	}
	if len(cmd.Args) < 2 {
		return Errf(ErrMalformedCommand, "malformed command: expected agent <id> <command>")
	}

	id, verb, args := cmd.Args[0], cmd.Args[1], cmd.Args[2:]

	if err := ValidateAgentID(id); err != nil {
		return Errf(ErrInvalidIdentifier, "invalid agent id: %v", err)
	}
	store, err := d.opener.Open(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAgentNotFound) {
			return Errf(ErrUnknownEntity, "unknown entity %s", id)
		}
		return Errf(ErrStorageFailure, "cannot open database for agent %s: %v", id, err)
	}
	// The handle belongs to this call only; release it on every exit
	// path, handler failure included.
	defer func() {
		if cerr := store.Close(); cerr != nil {
			d.logger.Warn("closing agent store failed", "agent", id, "error", cerr)
		}
	}()

	entry, ok := d.registry.Lookup(verb)
	if !ok {
		return Errf(ErrUnknownCommand, "unknown command %q", verb)
	}
	if len(args) < entry.MinArgs {
		return Errf(ErrArityMismatch, "%s expects at least %d arguments, got %d",
			verb, entry.MinArgs, len(args))
	}

	return entry.Handler(ctx, store, args)
}
