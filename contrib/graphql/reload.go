package graphql

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/vertexql/compiler"
	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/compiler/load"
)

// Reloader recompiles the schema of a space and swaps it into a Holder.
// A failed reload keeps the previous schema.
type Reloader struct {
	holder   *Holder
	loader   load.Loader
	space    string
	factory  gen.ResolverFactory
	opts     []gen.Option
	log      *zap.Logger
	metrics  Metrics
	debounce time.Duration
	group    singleflight.Group
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithCompileOptions sets the compiler options of every reload.
func WithCompileOptions(opts ...gen.Option) ReloaderOption {
	return func(r *Reloader) {
		r.opts = append(r.opts, opts...)
	}
}

// WithReloadLogger sets the reloader logger.
func WithReloadLogger(l *zap.Logger) ReloaderOption {
	return func(r *Reloader) {
		if l != nil {
			r.log = l
		}
	}
}

// WithReloadMetrics sets the metrics sink of reloads.
func WithReloadMetrics(m Metrics) ReloaderOption {
	return func(r *Reloader) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithDebounce sets how long Watch waits for file events to settle.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// NewReloader returns a reloader of space into h.
func NewReloader(h *Holder, loader load.Loader, space string, factory gen.ResolverFactory, opts ...ReloaderOption) *Reloader {
	r := &Reloader{
		holder:   h,
		loader:   loader,
		space:    space,
		factory:  factory,
		log:      zap.NewNop(),
		metrics:  nopMetrics{},
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload compiles the space and swaps the result in. Concurrent calls
// share one compilation. An unchanged schema is not swapped.
func (r *Reloader) Reload(ctx context.Context) (*gen.Schema, error) {
	v, err, _ := r.group.Do(r.space, func() (any, error) {
		start := time.Now()
		s, err := compiler.Compile(ctx, r.loader, r.space, r.factory, r.opts...)
		r.metrics.ObserveReload(r.space, time.Since(start), err)
		if err != nil {
			r.log.Error("schema reload failed, keeping the active schema",
				zap.String("space", r.space),
				zap.Error(err),
			)
			return nil, err
		}
		if cur := r.holder.Schema(); cur != nil && cur.Hash() == s.Hash() {
			r.log.Debug("schema unchanged", zap.String("space", r.space), zap.String("hash", s.Hash()))
			return cur, nil
		}
		r.holder.Swap(s)
		r.metrics.SetVertexTypes(r.space, len(s.Types()))
		r.log.Info("schema reloaded",
			zap.String("space", r.space),
			zap.Int("vertex_types", len(s.Types())),
			zap.String("hash", s.Hash()),
			zap.Duration("took", time.Since(start)),
		)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*gen.Schema), nil
}

// Watch reloads whenever the file at path changes, until ctx is done.
// Editors that replace the file are handled by watching its directory.
func (r *Reloader) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("graphql: create watcher: %w", err)
	}
	defer w.Close()
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("graphql: watch %s: %w", path, err)
	}
	r.log.Info("watching metadata file", zap.String("path", abs))

	timer := time.NewTimer(r.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(r.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("metadata watcher error", zap.Error(err))
		case <-timer.C:
			// Errors are logged and counted by Reload.
			_, _ = r.Reload(ctx)
		}
	}
}
