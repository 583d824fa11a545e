package wdb

import "fmt"

// ErrorKind classifies a dispatch failure by the stage that produced it.
type ErrorKind int

const (
	// ErrMalformedCommand means the raw input could not be tokenized.
	ErrMalformedCommand ErrorKind = iota

	// ErrInvalidIdentifier means the agent id is syntactically invalid.
	ErrInvalidIdentifier

	// ErrUnknownEntity means no database exists for the agent id.
	ErrUnknownEntity

	// ErrUnknownCommand means the verb is not in the registry.
	ErrUnknownCommand

	// ErrArityMismatch means the verb received fewer arguments than it requires.
	ErrArityMismatch

	// ErrHandlerValidation means a handler rejected an argument value.
	ErrHandlerValidation

	// ErrStorageFailure means the storage collaborator reported an error.
	ErrStorageFailure
)

// String returns the kind name for logging.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedCommand:
		return "malformed_command"
	case ErrInvalidIdentifier:
		return "invalid_identifier"
	case ErrUnknownEntity:
		return "unknown_entity"
	case ErrUnknownCommand:
		return "unknown_command"
	case ErrArityMismatch:
		return "arity_mismatch"
	case ErrHandlerValidation:
		return "handler_validation"
	case ErrStorageFailure:
		return "storage_failure"
	default:
		return fmt.Sprintf("error_kind(%d)", int(k))
	}
}

// Result is the outcome of one command: a payload on success, or an error
// kind plus a diagnostic message on failure. Results are produced by the
// dispatch stages and handlers and consumed only by the response formatter.
type Result struct {
	ok      bool
	payload string
	kind    ErrorKind
	message string
}

// Ok returns a successful Result carrying payload.
func Ok(payload string) Result {
	return Result{ok: true, payload: payload}
}

// Errf returns a failed Result with the given kind and formatted message.
func Errf(kind ErrorKind, format string, args ...any) Result {
	return Result{kind: kind, message: fmt.Sprintf(format, args...)}
}

// IsOk reports whether the Result is a success.
func (r Result) IsOk() bool { return r.ok }

// Payload returns the success payload. Empty for failed Results.
func (r Result) Payload() string { return r.payload }

// Kind returns the error kind. Only meaningful when IsOk is false.
func (r Result) Kind() ErrorKind { return r.kind }

// Message returns the diagnostic message. Empty for successful Results.
func (r Result) Message() string { return r.message }
