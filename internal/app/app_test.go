package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/contrib/graphql"
	"github.com/syssam/vertexql/dialect/sql/sqlgraph"
	"github.com/syssam/vertexql/graph"
	"github.com/syssam/vertexql/internal/config"
)

const metadata = `spaces:
  social:
    vertices:
      - name: Person
        properties:
          - name: age
            type: INT64
          - name: bio
            type: STRING
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(metadata), 0o644))
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Space = "social"
	cfg.MetadataFile = path
	cfg.DBDSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	cfg.Watch = false
	require.NoError(t, cfg.Validate())
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func seed(t *testing.T, a *App) {
	t.Helper()
	ctx := context.Background()
	vts, err := loadSpace(ctx, a)
	require.NoError(t, err)
	_, err = a.Store.Provision(ctx, vts)
	require.NoError(t, err)
	_, err = a.Store.Insert(ctx, vts[0],
		sqlgraph.Vertex{ID: "p1", Properties: map[string]any{"age": 42, "bio": "hoops"}},
		sqlgraph.Vertex{ID: "p2", Properties: map[string]any{"age": 7}},
	)
	require.NoError(t, err)
}

func loadSpace(ctx context.Context, a *App) ([]graph.VertexType, error) {
	return a.Loader.Load(ctx, a.Config.Space)
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{config.EnvDev, config.EnvProd} {
		l, err := NewLogger(env)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestAppCompile(t *testing.T) {
	a := newApp(t, testConfig(t))
	seed(t, a)

	s, err := a.Compile(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Types(), 1)
	node, ok := s.Resolver("Query", "Person")
	require.True(t, ok, "node resolvers are on by default")
	v, err := node.Resolve(context.Background(), map[string]any{"ID": "p1"})
	require.NoError(t, err)
	assert.EqualValues(t, 42, v.(gen.Record)["age"])
}

func TestAppCompileOptions(t *testing.T) {
	cfg := testConfig(t)
	a := newApp(t, cfg)
	cfg.Collisions = "merge"
	_, err := a.CompileOptions()
	assert.Error(t, err)
}

func TestAppHandler(t *testing.T) {
	a := newApp(t, testConfig(t))
	seed(t, a)
	h, reloader, err := a.Handler(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reloader)

	body, _ := json.Marshal(map[string]any{"query": `{ Persons(age: 42) { age bio } }`})
	req := httptest.NewRequest(http.MethodPost, graphql.PathQuery, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"Persons":[{"age":42,"bio":"hoops"}]}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, graphql.PathHealth, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, graphql.PathMetric, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vertexql_resolver_calls_total{field="Query.Persons",status="ok"} 1`)
}

func TestAppHandlerMissingSpace(t *testing.T) {
	cfg := testConfig(t)
	cfg.Space = "nope"
	a := newApp(t, cfg)
	_, _, err := a.Handler(context.Background())
	assert.Error(t, err)
}

func TestAppCatalog(t *testing.T) {
	cfg := testConfig(t)
	a := newApp(t, cfg)
	seed(t, a)

	catalog := *cfg
	catalog.Source = config.SourceCatalog
	catalog.CacheTTL = time.Minute
	c := newApp(t, &catalog)
	// Both apps share the in-memory database.
	s, err := c.Compile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s.Type("Person"))
	require.NotNil(t, c.cache)
}

func TestAppServe(t *testing.T) {
	cfg := testConfig(t)
	cfg.Addr = "127.0.0.1:0"
	cfg.Watch = true
	a := newApp(t, cfg)
	seed(t, a)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestNewBadDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "oracle"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
