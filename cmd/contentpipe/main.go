package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/contentpipe/cmd/contentpipe/commands"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("contentpipe"),
		kong.Description("Parse content files into structured records."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	global := &commands.Global{Ctx: ctx, Stdout: os.Stdout, Stderr: os.Stderr}

	err := parser.Run(global, cli)
	stop()
	if err != nil {
		adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		fmt.Fprintln(os.Stderr, adapter.FormatError(err))
		os.Exit(adapter.ExitCodeFor(err))
	}
}
