package commands

import "git.home.luguber.info/inful/contentpipe/internal/logfields"

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Dirs    []string  `arg:"" name:"dir" help:"Directories to watch" type:"existingdir"`
	Initial bool      `help:"Parse every file once before watching" default:"true" negatable:""`
	Sinks   SinkFlags `embed:""`
}

// Run blocks until the process is interrupted.
func (cmd *WatchCmd) Run(g *Global, root *CLI) error {
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

	r := a.runner(out)
	w, err := r.Watch(cmd.Dirs)
	if err != nil {
		return err
	}
	if cmd.Initial {
		if _, err := r.Run(g.context(), cmd.Dirs); err != nil {
			if cerr := w.Close(); cerr != nil {
				a.logger.Warn("Failed to close file watcher", logfields.Error(cerr))
			}
			return err
		}
	}
	return w.Run(g.context())
}
