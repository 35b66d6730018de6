/*
PURPOSE:
  Entry point for the y2start launcher front end.
  Turns the result of the root command into an exit status.

REQUIREMENTS:
  User-specified:
  - y2start [GenericOpts] Client [ClientOpts] Server [ServerOpts...]
  - Argument errors print the message and the usage text, then exit 1.
  - Help exits 0.

  Implementation-discovered:
  - The signal guard is installed inside the root command, after config is
    loaded, so Y2START_INSTALL_SIGNALS can switch it off.
  - A handled signal never returns here: the guard re-raises it and the
    process dies by that signal.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()
  - Depends on: internal/cli, internal/args packages

ERROR HANDLING:
  - Any error exits 1, printed in red on stderr.
  - *args.InvalidArgumentError is followed by the usage text.

IMPLEMENTATION RULES:
  - Parsing, config and the guard live in internal/; main only maps errors
    to output and exit codes.

USAGE:
  go build -o y2start ./cmd/y2start
  ./y2start installation -a initial qt

RELATED FILES:
  - internal/cli/root.go
  - internal/args/usage.go

MAINTENANCE:
  - Update when the exit code contract changes.
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/daryltucker/y2start/internal/args"
	"github.com/daryltucker/y2start/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		var invalid *args.InvalidArgumentError
		if errors.As(err, &invalid) {
			fmt.Fprint(os.Stderr, "\n"+args.Usage())
		}
		os.Exit(1)
	}
}
