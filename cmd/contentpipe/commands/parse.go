package commands

import (
	"fmt"

	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// ParseCmd implements the 'parse' command.
type ParseCmd struct {
	Paths []string  `arg:"" name:"path" help:"Files or directories to parse" type:"path"`
	Sinks SinkFlags `embed:""`
}

// Run parses every path once. Files that fail are logged; the command then
// fails with a parse error so scripts can detect partial runs.
func (cmd *ParseCmd) Run(g *Global, root *CLI) error {
	a, err := newApp(g, root)
	if err != nil {
		return err
	}
	defer a.close()

	out, err := a.sinks(g, cmd.Sinks)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			a.logger.Warn("Failed to close sinks", logfields.Error(err))
		}
	}()

	summary, err := a.runner(out).Run(g.context(), cmd.Paths)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return errors.ParseError(fmt.Sprintf("%d of %d files failed to parse", summary.Failed, summary.Total)).
			WithContext("run_id", summary.RunID).
			Build()
	}
	return nil
}
