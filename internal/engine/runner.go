/*
PURPOSE:
  High-level runner that hands a parsed command line to the external
  launcher as a launch plan.

REQUIREMENTS:
  User-specified:
  - Spawning the client and server is someone else's job; this step only
    reports what should be started.

  Implementation-discovered:
  - Needs to report progress through the shared logger.
  - Help requests never reach the runner.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/output, internal/config

ERROR HANDLING:
  - Returns wrapped errors; nothing is retried.

IMPLEMENTATION RULES:
  - Log -> encode -> close.

USAGE:
  engine.Run(cfg, parsed, os.Stdout)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/output/plan.go

MAINTENANCE:
  - Replace the plan hand-off if the launcher is ever folded into this binary.
*/

package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/daryltucker/y2start/internal/config"
	"github.com/daryltucker/y2start/internal/model"
	"github.com/daryltucker/y2start/internal/output"
)

// Run emits the launch plan for parsed to w.
func Run(cfg *config.Config, parsed *model.ParsedArguments, w io.Writer) error {
	if parsed == nil {
		return errors.New("no parsed arguments")
	}
	if parsed.HelpRequested() {
		return errors.New("help requests have no launch plan")
	}

	var params []string
	if parsed.ClientOptions != nil {
		params = parsed.ClientOptions.Params
	}
	output.Logger.Info("Launching",
		"client", parsed.ClientName,
		"client_params", params,
		"server", parsed.ServerName,
		"server_options", len(parsed.ServerOptions),
	)

	pw, err := output.NewPlanWriter(cfg.PlanFormat, w)
	if err != nil {
		return fmt.Errorf("failed to init plan writer: %w", err)
	}
	if err := pw.Write(parsed); err != nil {
		pw.Close()
		return fmt.Errorf("failed to write launch plan: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to flush launch plan: %w", err)
	}
	return nil
}
