// Package commands implements the contentpipe command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/contentpipe/internal/config"
	"git.home.luguber.info/inful/contentpipe/internal/defaults"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
	"git.home.luguber.info/inful/contentpipe/internal/pipeline"
	"git.home.luguber.info/inful/contentpipe/internal/runner"
	"git.home.luguber.info/inful/contentpipe/internal/sink"
)

// DefaultConfigPath is used when --config is not given. A missing file at this
// path means built-in defaults; a missing file named explicitly is an error.
const DefaultConfigPath = "contentpipe.yaml"

// Global carries process-wide state into every command.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g == nil || g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

// CLI definition and global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path" default:"contentpipe.yaml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	MetricsAddr string           `name:"metrics-addr" help:"Serve Prometheus metrics on this address (overrides metrics.address)"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Parse      ParseCmd      `cmd:"" help:"Parse files or directories and print the records"`
	Watch      WatchCmd      `cmd:"" help:"Re-parse files whenever they change"`
	Extensions ExtensionsCmd `cmd:"" help:"List supported extensions with their parser and transformers"`
	Init       InitCmd       `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing and installs a logger until the
// configuration is loaded.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config == "" {
		return config.Default(), nil
	}
	if c.Config == DefaultConfigPath {
		if _, err := os.Stat(c.Config); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(c.Config)
}

// app is the wiring shared by commands that parse content.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	components *defaults.Components
	recorder   metrics.Recorder
	closers    []func()
}

func newApp(g *Global, root *CLI) (*app, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logging.NewLogger(g.stderr(), root.Verbose)
	slog.SetDefault(logger)

	components, err := defaults.Build(cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, components: components, recorder: metrics.NoopRecorder{}}

	addr := root.MetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Address
	}
	if addr != "" {
		if err := a.serveMetrics(addr, cfg.Metrics.Path); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *app) serveMetrics(addr, path string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.recorder = metrics.NewPrometheusRecorder(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to listen for metrics").
			WithContext("address", addr).
			Build()
	}
	mux := http.NewServeMux()
	mux.Handle(path, metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	a.logger.Info("Serving metrics", "address", ln.Addr().String(), "path", path)

	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return nil
}

func (a *app) pipeline() *pipeline.Pipeline {
	return a.components.Pipeline(a.recorder)
}

func (a *app) runner(out sink.Sink, opts ...runner.Option) *runner.Runner {
	opts = append([]runner.Option{
		runner.WithConcurrency(a.cfg.Run.Concurrency),
		runner.WithDebounce(a.cfg.Run.Debounce()),
		runner.WithLogger(a.logger),
	}, opts...)
	return runner.New(a.pipeline(), a.components.Parsers, out, opts...)
}

// SinkFlags are shared by commands that emit records.
type SinkFlags struct {
	Format      string `short:"f" help:"Output format: json, yaml or none (default from config)"`
	SQLite      string `name:"sqlite" help:"Also upsert records into this SQLite database"`
	NATSURL     string `name:"nats-url" help:"Also publish records to this NATS server"`
	NATSSubject string `name:"nats-subject" help:"Subject for published records"`
}

func (a *app) sinks(g *Global, f SinkFlags) (*sink.Multi, error) {
	var sinks []sink.Sink
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	format := f.Format
	if format == "" {
		format = string(a.cfg.Output.Format)
	}
	if format != string(config.OutputNone) {
		w, err := sink.NewWriter(g.stdout(), format)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}

	dbPath := f.SQLite
	if dbPath == "" {
		dbPath = a.cfg.Sinks.SQLite.Path
	}
	if dbPath != "" {
		db, err := sink.NewSQLite(dbPath)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, db)
	}

	url := f.NATSURL
	if url == "" {
		url = a.cfg.Sinks.NATS.URL
	}
	if url != "" {
		subject := f.NATSSubject
		if subject == "" {
			subject = a.cfg.Sinks.NATS.Subject
		}
		if subject == "" {
			subject = config.DefaultNATSSubject
		}
		pub, err := sink.NewNATS(url, subject)
		if err != nil {
			closeAll()
			return nil, err
		}
		sinks = append(sinks, pub)
	}

	return sink.NewMulti(a.recorder, a.logger, sinks...), nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
