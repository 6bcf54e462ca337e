package commands

import (
	"fmt"

	"git.home.luguber.info/inful/contentpipe/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (cmd *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = DefaultConfigPath
	}
	if err := config.Init(path, cmd.Force); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Wrote configuration to %s\n", path)
	return nil
}
