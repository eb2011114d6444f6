// Package app assembles the vertexql service from its configuration: the
// store, the metadata loader, the compiler options and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/vertexql/compiler"
	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/compiler/load"
	"github.com/syssam/vertexql/contrib/graphql"
	"github.com/syssam/vertexql/dialect"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/dialect/sql/sqlgraph"
	"github.com/syssam/vertexql/internal/config"
	"github.com/syssam/vertexql/internal/metrics"

	// Database drivers selectable by VERTEXQL_DB_DRIVER.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// NewLogger returns a development logger for the development environment
// and a production logger otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == config.EnvDev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// App is an assembled vertexql service.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Store   *sqlgraph.Store
	Loader  load.Loader
	Metrics *metrics.Collector

	db    *sql.Driver
	cache *load.Cached
}

// New opens the database and builds the loader of cfg.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("app: open %s: %w", sql.RedactDSN(cfg.DBDriver, cfg.DBDSN), err)
	}
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("app: ping %s: %w", sql.RedactDSN(cfg.DBDriver, cfg.DBDSN), err)
	}
	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.NewCollector("vertexql"),
		db:      db,
	}
	var drv dialect.Driver = sql.NewStatsDriver(db,
		sql.WithSlowThreshold(cfg.SlowQuery),
		sql.WithSlowQueryLog(log),
	)
	if cfg.DebugSQL {
		drv = sql.NewDebugDriver(db, log)
	}
	a.Store = sqlgraph.NewStore(drv, sqlgraph.WithStoreLogger(log))

	switch cfg.Source {
	case config.SourceCatalog:
		opts := []load.CatalogOption{load.WithCatalogLogger(log), load.SkipUnsupported()}
		if cfg.DBSchema != "" {
			opts = append(opts, load.WithSpace(cfg.Space, cfg.DBSchema))
		}
		a.Loader = load.NewCatalog(db, opts...)
	default:
		a.Loader = load.NewFile(cfg.MetadataFile)
	}
	// Files are cheap to reread and are watched instead.
	if cfg.CacheTTL > 0 && cfg.Source == config.SourceCatalog {
		a.cache = load.NewCached(a.Loader, load.NewMemoryCache(),
			load.WithTTL(cfg.CacheTTL),
			load.WithSource(cfg.Source),
			load.WithCacheLogger(log),
		)
		a.Loader = a.cache
	}
	log.Debug("app assembled",
		zap.String("db", sql.RedactDSN(cfg.DBDriver, cfg.DBDSN)),
		zap.String("source", cfg.Source),
		zap.String("space", cfg.Space),
	)
	return a, nil
}

// CompileOptions returns the compiler options of the configuration.
func (a *App) CompileOptions() ([]gen.Option, error) {
	policy, err := gen.ParseCollisionPolicy(a.Config.Collisions)
	if err != nil {
		return nil, err
	}
	opts := []gen.Option{
		gen.WithQueryTypeName(a.Config.QueryType),
		gen.WithCollisionPolicy(policy),
		gen.WithLogger(a.Log),
	}
	if a.Config.NodeResolvers {
		opts = append(opts, gen.WithNodeResolvers())
	}
	if a.Config.InflectPlurals {
		opts = append(opts, gen.WithInflectPlurals())
	}
	return opts, nil
}

// Factory returns the resolver factory backed by the store.
func (a *App) Factory() *sqlgraph.ResolverFactory {
	opts := []sqlgraph.ResolverOption{sqlgraph.WithDefaultLimit(a.Config.DefaultLimit)}
	names := make([]string, 0, len(a.Config.SessionVars))
	for name := range a.Config.SessionVars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, sqlgraph.WithSessionVar(name, a.Config.SessionVars[name]))
	}
	return sqlgraph.NewResolverFactory(a.Store, opts...)
}

// Compile compiles the configured space once.
func (a *App) Compile(ctx context.Context) (*gen.Schema, error) {
	opts, err := a.CompileOptions()
	if err != nil {
		return nil, err
	}
	return compiler.Compile(ctx, a.Loader, a.Config.Space, a.Factory(), opts...)
}

// Handler returns the HTTP handler of the service along with the reloader
// feeding it. The initial schema is compiled before returning.
func (a *App) Handler(ctx context.Context) (http.Handler, *graphql.Reloader, error) {
	opts, err := a.CompileOptions()
	if err != nil {
		return nil, nil, err
	}
	holder := graphql.NewHolder(
		graphql.WithExecOptions(graphql.WithExecLogger(a.Log), graphql.WithMetrics(a.Metrics)),
		graphql.WithComplexityLimit(a.Config.ComplexityLimit),
	)
	reloader := graphql.NewReloader(holder, a.Loader, a.Config.Space, a.Factory(),
		graphql.WithCompileOptions(opts...),
		graphql.WithReloadLogger(a.Log),
		graphql.WithReloadMetrics(a.Metrics),
	)
	if _, err := reloader.Reload(ctx); err != nil {
		return nil, nil, err
	}
	ropts := []graphql.RouterOption{
		graphql.WithRouterLogger(a.Log),
		graphql.WithPlayground(a.Config.Playground),
		graphql.WithHealthCheck(a.db.Ping),
	}
	if a.Config.Metrics {
		ropts = append(ropts, graphql.WithMetricsHandler(a.Metrics.Handler()))
	}
	return graphql.NewRouter(holder, ropts...), reloader, nil
}

// Serve runs the HTTP server until ctx is done, then shuts it down
// gracefully. File metadata is watched for changes; catalog metadata is
// polled every cache TTL.
func (a *App) Serve(ctx context.Context) error {
	h, reloader, err := a.Handler(ctx)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("serving graphql", zap.String("addr", a.Config.Addr), zap.String("space", a.Config.Space))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		a.Log.Info("shutting down")
		return srv.Shutdown(shutdown)
	})
	switch {
	case a.Config.Watch && a.Config.Source == config.SourceFile:
		g.Go(func() error { return reloader.Watch(ctx, a.Config.MetadataFile) })
	case a.Config.Watch && a.cache != nil:
		g.Go(func() error { return a.poll(ctx, reloader) })
	}
	return g.Wait()
}

// poll drops the cached metadata and reloads every cache TTL.
func (a *App) poll(ctx context.Context, r *graphql.Reloader) error {
	t := time.NewTicker(a.Config.CacheTTL)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := a.cache.Invalidate(ctx, a.Config.Space); err != nil {
				a.Log.Warn("metadata cache invalidation failed", zap.Error(err))
			}
			// Failures are logged by the reloader and keep the active schema.
			_, _ = r.Reload(ctx)
		}
	}
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	err := a.db.Close()
	// Sync of a terminal-backed logger fails with EINVAL or ENOTTY.
	_ = a.Log.Sync()
	return err
}
