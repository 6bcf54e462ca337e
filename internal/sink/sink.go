// Package sink delivers parsed records to their destinations: an output
// stream, a SQLite database or a NATS subject.
package sink

import (
	"context"
	stderrors "errors"
	"log/slog"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/logfields"
	"git.home.luguber.info/inful/contentpipe/internal/metrics"
)

// Sink receives parsed records. Implementations must be safe for concurrent
// Write calls.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec content.Parsed) error
	Close() error
}

// Multi fans each record out to every sink in order.
type Multi struct {
	sinks    []Sink
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewMulti creates a fan-out sink. Nil sinks are skipped.
func NewMulti(recorder metrics.Recorder, logger *slog.Logger, sinks ...Sink) *Multi {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Multi{recorder: recorder, logger: logger}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) Name() string { return "multi" }

// Len reports how many sinks are attached.
func (m *Multi) Len() int { return len(m.sinks) }

// Write delivers rec to every sink, even after one fails, and returns the
// joined errors.
func (m *Multi) Write(ctx context.Context, rec content.Parsed) error {
	var errs []error
	for _, s := range m.sinks {
		err := s.Write(ctx, rec)
		m.recorder.IncSinkWrite(s.Name(), err == nil)
		if err != nil {
			m.logger.Warn("Sink write failed",
				logfields.Sink(s.Name()), logfields.ID(rec.ID()), logfields.Error(err))
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Close closes every sink and returns the joined errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
