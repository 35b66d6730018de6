/*
PURPOSE:
  Defines the root Cobra command for the y2start CLI.
  y2start has no subcommands; the root command owns the whole command line.

REQUIREMENTS:
  User-specified:
  - y2start [GenericOpts] Client [ClientOpts] Server [ServerOpts...]
  - -h/--help prints usage and exits 0.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - pflag must not see the arguments: server options are opaque and may
    collide with any flag name, so flag parsing is disabled.
  - Cobra always adds hidden __complete/__completeNoDesc commands for shell
    completion. Those words are valid client names here, so Execute runs
    the root command directly when one of them comes first.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/y2start/main.go
  - Calls: run() in run.go

ERROR HANDLING:
  - Returns error to main.go for exit code handling.
  - Cobra's own error and usage printing is silenced; main decides.

IMPLEMENTATION RULES:
  - Keep parsing in internal/args, not in Cobra flags.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If -h starts printing Cobra's generated help, check DisableFlagParsing.

RELATED FILES:
  - cmd/y2start/main.go
  - internal/cli/run.go

MAINTENANCE:
  - Update when the launcher grows a real subcommand.
*/

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/y2start/internal/signals"
)

var rootCmd = NewRootCmd(signals.Install)

// NewRootCmd builds the root command. install is called once before parsing
// when the config enables the signal guard; nil skips it.
func NewRootCmd(install func() error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "y2start [GenericOpts] Client [ClientOpts] Server [Specific ServerOpts]",
		Short: "Start a YaST client with the given UI server",
		Long: `Splits the command line into the client, its parameters, the UI server and
the server's own options, then writes the resulting launch plan to stdout.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return run(cmd, argv, install)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

// Execute executes the root command.
func Execute() error {
	return executeArgs(rootCmd, os.Args[1:])
}

func executeArgs(cmd *cobra.Command, argv []string) error {
	if len(argv) > 0 && (argv[0] == cobra.ShellCompRequestCmd || argv[0] == cobra.ShellCompNoDescRequestCmd) {
		// cobra would route these to its completion command
		return cmd.RunE(cmd, argv)
	}
	cmd.SetArgs(argv)
	return cmd.Execute()
}
