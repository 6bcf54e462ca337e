// Package hooks implements named lifecycle hooks. Listeners registered under a
// name run one at a time in registration order, and CallHook returns only after
// the last one has finished.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// Hook names emitted by the pipeline.
const (
	BeforeParse = "content:file:beforeParse"
	AfterParse  = "content:file:afterParse"
)

// Listener handles one hook invocation. The payload is shared with the caller
// and with later listeners, so in-place mutations are visible to both.
type Listener func(ctx context.Context, payload any) error

// Dispatcher fans a hook call out to its listeners.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]registered
	nextID    uint64
	logger    *slog.Logger
}

type registered struct {
	id uint64
	fn Listener
}

// NewDispatcher creates a dispatcher. A nil logger means slog.Default().
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		listeners: make(map[string][]registered),
		logger:    logger,
	}
}

// Hook registers l under name and returns a function that removes it again.
func (d *Dispatcher) Hook(name string, l Listener) (unhook func()) {
	if l == nil {
		return func() {}
	}
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[name] = append(d.listeners[name], registered{id: id, fn: l})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		ls := d.listeners[name]
		for i, r := range ls {
			if r.id == id {
				d.listeners[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Count returns the number of listeners registered under name.
func (d *Dispatcher) Count(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name])
}

// CallHook invokes every listener registered under name, sequentially, and
// waits for each to finish. A failing listener is logged and does not stop the
// ones after it; the call itself still succeeds.
func (d *Dispatcher) CallHook(ctx context.Context, name string, payload any) error {
	d.mu.RLock()
	ls := append([]registered(nil), d.listeners[name]...)
	d.mu.RUnlock()

	for i, l := range ls {
		start := time.Now()
		if err := l.fn(ctx, payload); err != nil {
			d.logger.Warn("Hook listener failed",
				logfields.Hook(name),
				logfields.Listener(i),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
				logfields.Error(err))
		}
	}
	return nil
}
