/*
PURPOSE:
  Splits the launcher command line
    y2start [GenericOpts] Client [ClientOpts] Server [ServerOpts...]
  into its four segments.

REQUIREMENTS:
  User-specified:
  - -h/--help before the client name stops parsing immediately.
  - -a/--arg may be repeated; each takes exactly one value.
  - Everything after the server name is passed on untouched.

  Implementation-discovered:
  - Tokens are consumed left to right through a cursor over a private copy,
    so the caller's slice is never mutated and re-parsing is idempotent.
  - pflag cannot express "stop at the first positional and hand the rest
    over verbatim" per segment, hence the hand-written loop.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Produces: internal/model.ParsedArguments

ERROR HANDLING:
  - Returns *InvalidArgumentError on the first problem found.
  - No partial result is returned alongside an error.

IMPLEMENTATION RULES:
  - No I/O in this package.
  - Do not add long-option value syntax (--opt=value) or short clustering.

USAGE:
  parsed, err := args.Parse([]string{"installation", "-a", "initial", "qt"})

SELF-HEALING INSTRUCTIONS:
  - Error texts are user visible; tests pin them.

RELATED FILES:
  - internal/args/usage.go
  - internal/model/types.go

MAINTENANCE:
  - Update Usage() whenever an option is added.
*/

package args

import (
	"errors"
	"fmt"

	"github.com/daryltucker/y2start/internal/model"
)

var (
	// ErrMissingClient is matched by errors.Is when no client name was given.
	ErrMissingClient = errors.New("missing client name")
	// ErrMissingServer is matched by errors.Is when no server name was given.
	ErrMissingServer = errors.New("missing server name")
	// ErrMissingArgValue is matched by errors.Is when -a/--arg has no value.
	ErrMissingArgValue = errors.New("missing argument value")
	// ErrUnknownOption is matched by errors.Is for unrecognised flags.
	ErrUnknownOption = errors.New("unknown option")
)

// InvalidArgumentError is returned by Parse for any malformed command line.
type InvalidArgumentError struct {
	Message string
	kind    error
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Is lets callers classify the failure with the Err* sentinels.
func (e *InvalidArgumentError) Is(target error) bool {
	return e.kind != nil && e.kind == target
}

func invalid(kind error, format string, a ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, a...), kind: kind}
}

// scanner is a read-only cursor over the command line.
type scanner struct {
	tokens []string
	pos    int
}

func newScanner(tokens []string) *scanner {
	return &scanner{tokens: append([]string(nil), tokens...)}
}

// peek returns the next token without consuming it, or "" at the end.
func (s *scanner) peek() string {
	if s.done() {
		return ""
	}
	return s.tokens[s.pos]
}

// next consumes and returns the next token, or "" at the end.
func (s *scanner) next() string {
	t := s.peek()
	if !s.done() {
		s.pos++
	}
	return t
}

// rest consumes everything left, always returning a non-nil slice.
func (s *scanner) rest() []string {
	out := make([]string, 0, len(s.tokens)-s.pos)
	out = append(out, s.tokens[s.pos:]...)
	s.pos = len(s.tokens)
	return out
}

func (s *scanner) done() bool {
	return s.pos >= len(s.tokens)
}

func (s *scanner) atOption() bool {
	return isOption(s.peek())
}

// isOption reports whether a token looks like a flag: non-empty, leading '-'.
func isOption(token string) bool {
	return token != "" && token[0] == '-'
}

// Parse splits args into generic options, client, client options, server and
// server options. The input slice is not modified.
func Parse(args []string) (*model.ParsedArguments, error) {
	s := newScanner(args)
	res := &model.ParsedArguments{}

	generic, err := parseGenericOptions(s)
	if err != nil {
		return nil, err
	}
	res.GenericOptions = generic
	// help ignores everything else
	if generic.Help {
		return res, nil
	}

	if res.ClientName = s.next(); res.ClientName == "" {
		return nil, invalid(ErrMissingClient, "Missing client name.")
	}

	client, err := parseClientOptions(s)
	if err != nil {
		return nil, err
	}
	res.ClientOptions = client

	if res.ServerName = s.next(); res.ServerName == "" {
		return nil, invalid(ErrMissingServer, "Missing server name.")
	}
	res.ServerOptions = s.rest()

	return res, nil
}

func parseGenericOptions(s *scanner) (model.GenericOptions, error) {
	var opts model.GenericOptions
	for s.atOption() {
		switch arg := s.next(); arg {
		case "-h", "--help":
			// help is terminal; whatever follows is never looked at
			opts.Help = true
			return opts, nil
		default:
			// The message names whatever now heads the input, which is the
			// rejected token only when nothing follows it.
			name := s.peek()
			if s.done() {
				name = arg
			}
			return opts, invalid(ErrUnknownOption, "Unknown option %s", name)
		}
	}
	return opts, nil
}

func parseClientOptions(s *scanner) (*model.ClientOptions, error) {
	opts := &model.ClientOptions{Params: []string{}}
	for s.atOption() {
		switch arg := s.next(); arg {
		case "-a", "--arg":
			// an empty string is still a value
			if s.done() {
				return nil, invalid(ErrMissingArgValue, "Missing argument for --arg")
			}
			opts.Params = append(opts.Params, s.next())
		default:
			return nil, invalid(ErrUnknownOption, "Unknown option %s", arg)
		}
	}
	return opts, nil
}
