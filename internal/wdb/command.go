// Package wdb implements the command parser and dispatcher of the agent
// database daemon. A request is a single line of text addressed to one
// agent ("agent 003 getos"); the dispatcher tokenizes it, resolves the
// agent's database, routes the command to its handler, and formats an
// "ok ..." or "err ..." response. The dispatcher holds no cross-request
// state and is safe for concurrent use.
package wdb

import (
	"errors"
	"strings"
)

// ErrEmptyCommand is returned by Tokenize for input with no verb.
var ErrEmptyCommand = errors.New("empty command")

// Command is one tokenized request: a verb and its ordered arguments.
// Argument order is positional; it maps directly to handler parameters.
type Command struct {
	Verb string
	Args []string
}

// Tokenize splits a raw request line on whitespace runs into a verb and
// its arguments. It applies no semantic knowledge of verbs. A verb with
// no arguments is valid; input with no verb at all fails.
func Tokenize(input string) (Command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	return Command{Verb: fields[0], Args: fields[1:]}, nil
}
