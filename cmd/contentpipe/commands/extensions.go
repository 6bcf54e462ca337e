package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
)

// ExtensionsCmd implements the 'extensions' command.
type ExtensionsCmd struct {
	Format string `short:"f" help:"Output format: text or json" default:"text" enum:"text,json"`
}

func (cmd *ExtensionsCmd) Run(g *Global, root *CLI) error {
	a, err := newApp(g, root)
	if err != nil {
		return err
	}
	defer a.close()

	chains := a.components.Chains()
	if cmd.Format == "json" {
		enc := json.NewEncoder(g.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(chains)
	}

	tw := tabwriter.NewWriter(g.stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXTENSION\tPARSER\tTRANSFORMERS")
	for _, ch := range chains {
		parser := ch.Parser
		if parser == "" {
			parser = "-"
		}
		transformers := strings.Join(ch.Transformers, " -> ")
		if transformers == "" {
			transformers = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ch.Extension, parser, transformers)
	}
	return tw.Flush()
}
