/*
PURPOSE:
  Defines the data structures produced by the argument parser.
  ParsedArguments is the launch plan handed to the external launcher.

REQUIREMENTS:
  User-specified:
  - Split the command line into generic options, client, client options,
    server and server options.
  - Client params keep their order and may repeat.

  Implementation-discovered:
  - Need JSON and YAML tags so the plan can be emitted in either format.
  - Help short-circuits parsing, so every other field may be zero.

ARCHITECTURE INTEGRATION:
  - Produced by: internal/args.Parse()
  - Consumed by: internal/engine, internal/output

ERROR HANDLING:
  - N/A (plain data).

IMPLEMENTATION RULES:
  - No behaviour here beyond trivial helpers.

USAGE:
  parsed, err := args.Parse(os.Args[1:])

SELF-HEALING INSTRUCTIONS:
  - When adding a generic option, add a field to GenericOptions and a case
    in internal/args.

RELATED FILES:
  - internal/args/args.go

MAINTENANCE:
  - Keep tags in sync with the plan format documented in DESIGN.md.
*/

package model

// GenericOptions are the flags accepted before the client name.
type GenericOptions struct {
	Help bool `json:"help" yaml:"help"`
}

// ClientOptions are the flags accepted between the client and server names.
type ClientOptions struct {
	// Params holds the values of repeated -a/--arg flags, in order.
	Params []string `json:"params" yaml:"params"`
}

// ParsedArguments represents a fully split launcher command line.
type ParsedArguments struct {
	GenericOptions GenericOptions `json:"generic_options" yaml:"generic_options"`
	ClientName     string         `json:"client_name,omitempty" yaml:"client_name,omitempty"`
	ClientOptions  *ClientOptions `json:"client_options,omitempty" yaml:"client_options,omitempty"`
	ServerName     string         `json:"server_name,omitempty" yaml:"server_name,omitempty"`
	// ServerOptions are passed through verbatim; the server parses them itself.
	// Always encoded: an empty list still tells the launcher "no options".
	ServerOptions []string `json:"server_options" yaml:"server_options"`
}

// HelpRequested reports whether parsing stopped early for -h/--help.
func (p *ParsedArguments) HelpRequested() bool {
	return p != nil && p.GenericOptions.Help
}
