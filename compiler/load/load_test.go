package load

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	_ "modernc.org/sqlite"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/dialect"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/dialect/sql/schema"
	"github.com/syssam/vertexql/graph"
)

func person() graph.VertexType {
	return graph.VertexType{
		Name: "Person",
		Properties: []graph.Property{
			{Name: "age", Type: graph.TypeInt64},
			{Name: "bio", Type: graph.TypeString, Description: "Short biography"},
		},
	}
}

const metadataYAML = `spaces:
  social:
    vertices:
      - name: Person
        properties:
          - name: age
            type: int64
          - name: bio
            type: STRING
            description: Short biography
  empty:
    vertices: []
`

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestStatic(t *testing.T) {
	s := Static{"social": {person()}}
	vts, err := s.Load(context.Background(), "social")
	require.NoError(t, err)
	assert.Equal(t, []graph.VertexType{person()}, vts)

	vts[0].Properties[0].Name = "changed"
	again, err := s.Load(context.Background(), "social")
	require.NoError(t, err)
	assert.Equal(t, "age", again[0].Properties[0].Name)

	_, err = s.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, vertexql.IsMetadataUnavailable(err))
}

func TestLoaderFunc(t *testing.T) {
	var l Loader = LoaderFunc(func(_ context.Context, space string) ([]graph.VertexType, error) {
		return []graph.VertexType{{Name: space}}, nil
	})
	vts, err := l.Load(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", vts[0].Name)
}

func TestFile(t *testing.T) {
	f := NewFile(writeFile(t, metadataYAML))
	assert.NotEmpty(t, f.Path())

	vts, err := f.Load(context.Background(), "social")
	require.NoError(t, err)
	assert.Equal(t, []graph.VertexType{person()}, vts)

	vts, err = f.Load(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, vts)

	_, err = f.Load(context.Background(), "unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, vertexql.ErrMetadataUnavailable)

	m, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "social"}, m.SpaceNames())
}

func TestFileErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
		},
		{
			name: "malformed",
			path: func(t *testing.T) string { return writeFile(t, "spaces: [") },
		},
		{
			name: "unknown key",
			path: func(t *testing.T) string { return writeFile(t, "spaces:\n  s:\n    edges: []\n") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(tt.path(t)).Load(context.Background(), "s")
			require.Error(t, err)
			var me *vertexql.MetadataError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, "read", me.Op)
		})
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	m := &Metadata{Spaces: map[string]Space{
		"social": {Vertices: []graph.VertexType{
			person(),
			{Name: "Robot", Properties: []graph.Property{{Name: "x", Type: "BLOB"}}},
		}},
	}}
	data, err := MarshalMetadata(m)
	require.NoError(t, err)
	got, err := ParseMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	empty, err := ParseMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Spaces)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	drv, err := sql.Open(dialect.SQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })

	p, err := schema.NewProvisioner(drv)
	require.NoError(t, err)
	_, err = p.Provision(ctx, []graph.VertexType{person()})
	require.NoError(t, err)
	for _, stmt := range []string{
		"CREATE TABLE `Doc` (`vid` text NOT NULL PRIMARY KEY, `body` blob NULL, `title` text NULL)",
		"CREATE TABLE `audit` (`id` integer PRIMARY KEY, `msg` text)",
	} {
		_, err := drv.DB().ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	t.Run("all tables", func(t *testing.T) {
		vts, err := NewCatalog(drv, WithCatalogLogger(zaptest.NewLogger(t))).Load(ctx, "any")
		require.NoError(t, err)
		require.Len(t, vts, 2)
		byName := map[string]graph.VertexType{}
		for _, vt := range vts {
			byName[vt.Name] = vt
		}
		assert.Equal(t, []graph.Property{
			{Name: "age", Type: graph.TypeInt64},
			{Name: "bio", Type: graph.TypeString},
		}, byName["Person"].Properties)
		assert.Equal(t, []graph.Property{
			{Name: "body", Type: graph.TypeUnknown},
			{Name: "title", Type: graph.TypeString},
		}, byName["Doc"].Properties)
	})

	t.Run("skip unsupported", func(t *testing.T) {
		vts, err := NewCatalog(drv, WithTables("Doc"), SkipUnsupported()).Load(ctx, "any")
		require.NoError(t, err)
		require.Len(t, vts, 1)
		assert.Equal(t, []graph.Property{{Name: "title", Type: graph.TypeString}}, vts[0].Properties)
	})

	t.Run("mapped spaces", func(t *testing.T) {
		c := NewCatalog(drv, WithSpace("social", "main"), WithTables("Person"))
		vts, err := c.Load(ctx, "social")
		require.NoError(t, err)
		require.Len(t, vts, 1)
		assert.Equal(t, "Person", vts[0].Name)

		_, err = c.Load(ctx, "other")
		require.Error(t, err)
		assert.True(t, vertexql.IsMetadataUnavailable(err))
	})
}

func TestCatalogUnavailable(t *testing.T) {
	_, err := NewCatalog(sql.OpenDB("oracle", nil)).Load(context.Background(), "social")
	require.Error(t, err)
	assert.True(t, vertexql.IsMetadataUnavailable(err))
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	inner := LoaderFunc(func(_ context.Context, space string) ([]graph.VertexType, error) {
		calls.Add(1)
		if space == "broken" {
			return nil, vertexql.NewMetadataError(space, "read", errors.New("down"))
		}
		return []graph.VertexType{person(), {Name: "Robot", Properties: []graph.Property{{Name: "x", Type: "BLOB"}}}}, nil
	})
	cache := NewMemoryCache()
	c := NewCached(inner, cache, WithSource("file"), WithCacheLogger(zaptest.NewLogger(t)))

	first, err := c.Load(ctx, "social")
	require.NoError(t, err)
	second, err := c.Load(ctx, "social")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, graph.PropertyType("BLOB"), second[1].Properties[0].Type)
	assert.Equal(t, int32(1), calls.Load())

	data, err := cache.Get(ctx, vertexql.CacheKey{Source: "file", Space: "social"}.String())
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	require.NoError(t, c.Invalidate(ctx, "social"))
	_, err = c.Load(ctx, "social")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	require.NoError(t, c.InvalidateAll(ctx))
	_, err = c.Load(ctx, "social")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	_, err = c.Load(ctx, "broken")
	require.Error(t, err)
	assert.True(t, vertexql.IsMetadataUnavailable(err))
	data, err = cache.Get(ctx, vertexql.CacheKey{Source: "file", Space: "broken"}.String())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCachedCorruptEntry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(ctx, vertexql.CacheKey{Source: "default", Space: "social"}.String(), []byte{0xc1}, 0))
	c := NewCached(Static{"social": {person()}}, cache)
	vts, err := c.Load(ctx, "social")
	require.NoError(t, err)
	assert.Equal(t, []graph.VertexType{person()}, vts)
}

func TestCachedConcurrent(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	inner := LoaderFunc(func(context.Context, string) ([]graph.VertexType, error) {
		calls.Add(1)
		<-release
		return []graph.VertexType{person()}, nil
	})
	c := NewCached(inner, NewMemoryCache())
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vts, err := c.Load(context.Background(), "social")
			assert.NoError(t, err)
			assert.Len(t, vts, 1)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a:1", []byte("x"), time.Minute))
	require.NoError(t, m.Set(ctx, "a:2", []byte("y"), 0))
	require.NoError(t, m.Set(ctx, "b:1", []byte("z"), 0))

	v, err := m.Get(ctx, "a:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), v)

	now = now.Add(time.Minute)
	v, err = m.Get(ctx, "a:1")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, m.DeletePrefix(ctx, "a:"))
	v, _ = m.Get(ctx, "a:2")
	assert.Nil(t, v)
	v, _ = m.Get(ctx, "b:1")
	assert.Equal(t, []byte("z"), v)

	require.NoError(t, m.Delete(ctx, "b:1"))
	v, _ = m.Get(ctx, "b:1")
	assert.Nil(t, v)

	require.NoError(t, m.Set(ctx, "c", []byte("w"), 0))
	require.NoError(t, m.Clear(ctx))
	v, _ = m.Get(ctx, "c")
	assert.Nil(t, v)
}
