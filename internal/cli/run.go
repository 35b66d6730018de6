/*
PURPOSE:
  Body of the root command: config, signal guard, parse, hand-off.

REQUIREMENTS:
  User-specified:
  - Help short-circuits everything after parsing.
  - Parse errors surface unchanged so main can print them with the usage.

  Implementation-discovered:
  - Need to load config first; it decides the log level and whether the
    signal guard goes in.
  - The guard is installed before parsing so a signal during startup is
    still logged.

ARCHITECTURE INTEGRATION:
  - Calls: internal/args.Parse(), internal/engine.Run(), signals install hook
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Returns error if config load, guard install, parsing or the engine fail.

IMPLEMENTATION RULES:
  - Logic: Load Config -> Logger -> Guard -> Parse -> Engine.Run.

USAGE:
  y2start installation -a initial qt

SELF-HEALING INSTRUCTIONS:
  - Check Y2START_CONFIG when an unexpected config is picked up.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new startup steps.
*/

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/y2start/internal/args"
	"github.com/daryltucker/y2start/internal/config"
	"github.com/daryltucker/y2start/internal/engine"
	"github.com/daryltucker/y2start/internal/output"
)

func run(cmd *cobra.Command, argv []string, install func() error) error {
	// 1. Load Config
	cfg, err := config.Load(os.Getenv(config.EnvFile))
	if err != nil {
		return err
	}

	// 2. Logger
	level, err := output.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	output.SetLogger(output.NewLogger(cmd.ErrOrStderr(), level))

	// 3. Signal guard
	if cfg.InstallSignals && install != nil {
		if err := install(); err != nil {
			return fmt.Errorf("failed to install signal guard: %w", err)
		}
	}

	// 4. Parse
	parsed, err := args.Parse(argv)
	if err != nil {
		output.Logger.Debug("Invalid command line", "args", argv, "error", err)
		return err
	}
	if parsed.HelpRequested() {
		fmt.Fprint(cmd.OutOrStdout(), args.Usage())
		return nil
	}

	// 5. Execution
	return engine.Run(cfg, parsed, cmd.OutOrStdout())
}
