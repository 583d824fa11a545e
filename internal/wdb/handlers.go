package wdb

import (
	"context"
	"strconv"
	"strings"
)

func handleGetOS(ctx context.Context, store Store, _ []string) Result {
	info, err := store.GetOS(ctx)
	if err != nil {
		return Errf(ErrStorageFailure, "cannot read os info: %v", err)
	}
	return Ok(info)
}

// handleSetOS stores the remaining tokens re-joined with single spaces,
// so values with spaces ("Ubuntu 22.04") work; interior whitespace runs
// do not survive tokenization.
func handleSetOS(ctx context.Context, store Store, args []string) Result {
	info := strings.Join(args, " ")
	if err := store.SetOS(ctx, info); err != nil {
		return Errf(ErrStorageFailure, "cannot save os info: %v", err)
	}
	return Ok("")
}

func handleGetLabels(ctx context.Context, store Store, _ []string) Result {
	labels, err := store.GetLabels(ctx)
	if err != nil {
		return Errf(ErrStorageFailure, "cannot read labels: %v", err)
	}
	pairs := make([]string, 0, len(labels))
	for _, l := range labels {
		pairs = append(pairs, l.Key+":"+l.Value)
	}
	return Ok(strings.Join(pairs, ","))
}

func handleSetLabel(ctx context.Context, store Store, args []string) Result {
	key, value := args[0], args[1]
	if strings.ContainsAny(key, ":,") {
		return Errf(ErrHandlerValidation, "invalid label key %q", key)
	}
	if strings.Contains(value, ",") {
		return Errf(ErrHandlerValidation, "invalid label value %q", value)
	}
	if err := store.SetLabel(ctx, key, value); err != nil {
		return Errf(ErrStorageFailure, "cannot save label: %v", err)
	}
	return Ok("")
}

func handleDelLabels(ctx context.Context, store Store, _ []string) Result {
	if err := store.DeleteLabels(ctx); err != nil {
		return Errf(ErrStorageFailure, "cannot delete labels: %v", err)
	}
	return Ok("")
}

// handleSyscheck dispatches the second-level syscheck actions with their
// own arity checks: save <file> <checksum>, get <file>, clean.
func handleSyscheck(ctx context.Context, store Store, args []string) Result {
	action, rest := args[0], args[1:]
	switch action {
	case "save":
		if len(rest) < 2 {
			return Errf(ErrArityMismatch, "syscheck save expects <file> <checksum>")
		}
		if err := store.SaveSyscheck(ctx, rest[0], rest[1]); err != nil {
			return Errf(ErrStorageFailure, "cannot save syscheck entry: %v", err)
		}
		return Ok("")
	case "get":
		if len(rest) < 1 {
			return Errf(ErrArityMismatch, "syscheck get expects <file>")
		}
		checksum, found, err := store.GetSyscheck(ctx, rest[0])
		if err != nil {
			return Errf(ErrStorageFailure, "cannot read syscheck entry: %v", err)
		}
		if !found {
			return Errf(ErrHandlerValidation, "no syscheck entry for %q", rest[0])
		}
		return Ok(checksum)
	case "clean":
		n, err := store.CleanSyscheck(ctx)
		if err != nil {
			return Errf(ErrStorageFailure, "cannot clean syscheck entries: %v", err)
		}
		return Ok(strconv.FormatInt(n, 10))
	default:
		return Errf(ErrUnknownCommand, "unknown syscheck action %q", action)
	}
}

// handleSQL runs a read-only statement against the agent database. Every
// mutating operation has a dedicated verb, so anything but a read is
// rejected before it reaches the store.
func handleSQL(ctx context.Context, store Store, args []string) Result {
	stmt := strings.Join(args, " ")
	if !isReadOnlyStatement(stmt) {
		return Errf(ErrHandlerValidation, "sql only accepts read-only statements")
	}
	rows, err := store.Query(ctx, stmt)
	if err != nil {
		return Errf(ErrStorageFailure, "query failed: %v", err)
	}
	return Ok(rows)
}

func handleVacuum(ctx context.Context, store Store, _ []string) Result {
	if err := store.Vacuum(ctx); err != nil {
		return Errf(ErrStorageFailure, "vacuum failed: %v", err)
	}
	return Ok("")
}

func isReadOnlyStatement(stmt string) bool {
	first := strings.ToUpper(strings.TrimLeft(stmt, " \t("))
	for _, prefix := range []string{"SELECT", "PRAGMA", "EXPLAIN"} {
		if strings.HasPrefix(first, prefix) {
			return true
		}
	}
	return false
}
