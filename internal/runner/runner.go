// Package runner parses files from disk through a pipeline and hands the
// results to a sink, either as a one-off batch or continuously while watching
// directories.
package runner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
	"git.home.luguber.info/inful/contentpipe/internal/sink"
)

// ContentParser is the pipeline entry point the runner drives.
type ContentParser interface {
	ParseContent(ctx context.Context, id, raw string) (content.Parsed, error)
}

// ParserLookup tells the runner whether a record came from a parser or is a
// raw fallback.
type ParserLookup interface {
	Get(ext string) (content.Parser, bool)
}

// Runner reads files and feeds them through a ContentParser.
type Runner struct {
	parser      ContentParser
	lookup      ParserLookup
	sink        sink.Sink
	concurrency int
	debounce    time.Duration
	observer    func(FileResult)
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithDebounce sets the quiet period Watch waits for before re-parsing.
func WithDebounce(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// WithObserver registers fn to receive every file result from Run and Watch.
// Run calls it from several goroutines at once.
func WithObserver(fn func(FileResult)) Option {
	return func(r *Runner) { r.observer = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a runner. lookup and out may be nil: without a lookup every
// successful record counts as parsed, without a sink results are discarded.
func New(parser ContentParser, lookup ParserLookup, out sink.Sink, opts ...Option) *Runner {
	r := &Runner{
		parser:      parser,
		lookup:      lookup,
		sink:        out,
		concurrency: 4,
		debounce:    250 * time.Millisecond,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FileResult is the outcome for a single file.
type FileResult struct {
	Path    string               `json:"path"`
	ID      string               `json:"id"`
	Outcome metrics.OutcomeLabel `json:"outcome"`
	Err     error                `json:"-"`
}

// Summary reports a completed run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Total    int           `json:"total"`
	Parsed   int           `json:"parsed"`
	Fallback int           `json:"fallback"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
	Files    []FileResult  `json:"files"`
}

type source struct {
	path string
	id   string
}

// Run parses every file under paths. Directories are walked recursively,
// skipping entries whose name starts with a dot. Files given directly are
// always included. A file's id is its path relative to the directory it was
// found under, or the path itself, with forward slashes.
//
// Failures of individual files are logged and counted, not returned. The
// returned error is non-nil only when discovery fails or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(logfields.RunID(runID))

	sources, err := discover(paths)
	if err != nil {
		return nil, err
	}
	logger.Info("Run started", "files", len(sources), "concurrency", r.concurrency)

	results := make([]FileResult, len(sources))
	var parsed, fallback, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	scheduled := 0
	for i, src := range sources {
		if gctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			res := r.processFile(gctx, logger, src)
			results[i] = res
			r.observe(res)
			switch res.Outcome {
			case metrics.OutcomeParsed:
				parsed.Add(1)
			case metrics.OutcomeFallback:
				fallback.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Files never scheduled because of cancellation count as failed.
	for i := scheduled; i < len(sources); i++ {
		res := FileResult{
			Path:    sources[i].path,
			ID:      sources[i].id,
			Outcome: metrics.OutcomeFailed,
			Err:     ctx.Err(),
		}
		results[i] = res
		r.observe(res)
		failed.Add(1)
	}

	summary := &Summary{
		RunID:    runID,
		Total:    len(sources),
		Parsed:   int(parsed.Load()),
		Fallback: int(fallback.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
		Files:    results,
	}
	logger.Info("Run finished",
		"total", summary.Total, "parsed", summary.Parsed,
		"fallback", summary.Fallback, "failed", summary.Failed,
		logfields.DurationMS(float64(summary.Duration.Microseconds())/1000))

	if err := ctx.Err(); err != nil {
		return summary, errors.WrapError(err, errors.CategoryInternal, "run cancelled").
			Warning().
			WithContext("run_id", runID).
			Build()
	}
	return summary, nil
}

func (r *Runner) observe(res FileResult) {
	if r.observer != nil {
		r.observer(res)
	}
}

func (r *Runner) processFile(ctx context.Context, logger *slog.Logger, src source) FileResult {
	res := FileResult{Path: src.path, ID: src.id, Outcome: metrics.OutcomeFailed}

	data, err := os.ReadFile(src.path)
	if err != nil {
		res.Err = errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").
			WithContext("path", src.path).
			Build()
		logger.Error("File read failed", logfields.Path(src.path), logfields.Error(res.Err))
		return res
	}

	rec, err := r.parser.ParseContent(ctx, src.id, string(data))
	if err != nil {
		res.Err = err
		logger.Error("Parse failed", logfields.ID(src.id), logfields.Error(err))
		return res
	}
	if id := rec.ID(); id != "" {
		res.ID = id
	}

	if r.sink != nil {
		if err := r.sink.Write(ctx, rec); err != nil {
			res.Err = err
			logger.Error("Sink write failed", logfields.ID(res.ID), logfields.Error(err))
			return res
		}
	}

	res.Outcome = metrics.OutcomeParsed
	if r.lookup != nil {
		if _, ok := r.lookup.Get(content.Extension(res.ID)); !ok {
			res.Outcome = metrics.OutcomeFallback
		}
	}
	return res
}

func discover(paths []string) ([]source, error) {
	var sources []source
	seen := make(map[string]struct{})
	add := func(p, id string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		sources = append(sources, source{path: p, id: filepath.ToSlash(id)})
	}

	for _, root := range paths {
		root = filepath.Clean(root)
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot access input path").
				WithContext("path", root).
				Build()
		}
		if !info.IsDir() {
			add(root, root)
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			add(p, rel)
			return nil
		})
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk directory").
				WithContext("path", root).
				Build()
		}
	}

	sort.SliceStable(sources, func(i, j int) bool { return sources[i].path < sources[j].path })
	return sources, nil
}
