package graphql

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/compiler/load"
	"github.com/syssam/vertexql/graph"
)

// swappable serves whatever vertex types it currently holds.
type swappable struct {
	vts   atomic.Pointer[[]graph.VertexType]
	err   atomic.Pointer[error]
	calls atomic.Int32
}

func (s *swappable) set(vts ...graph.VertexType) { s.vts.Store(&vts) }

func (s *swappable) fail(err error) { s.err.Store(&err) }

func (s *swappable) Load(context.Context, string) ([]graph.VertexType, error) {
	s.calls.Add(1)
	if err := s.err.Load(); err != nil && *err != nil {
		return nil, *err
	}
	return *s.vts.Load(), nil
}

func TestReloader(t *testing.T) {
	ctx := context.Background()
	src := &swappable{}
	src.set(person())
	core, logs := observer.New(zap.InfoLevel)
	m := newFakeMetrics()
	h := NewHolder()
	r := NewReloader(h, src, "social", &fakeFactory{},
		WithCompileOptions(gen.WithNodeResolvers()),
		WithReloadLogger(zap.New(core)),
		WithReloadMetrics(m),
	)

	first, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Same(t, first, h.Schema())
	assert.Equal(t, 1, m.vertices["social"])
	assert.Equal(t, 1, logs.FilterMessage("schema reloaded").Len())

	again, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.Same(t, first, again, "unchanged schema is not swapped")

	src.set(person(), team())
	second, err := r.Reload(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Hash(), second.Hash())
	assert.Same(t, second, h.Schema())
	assert.Equal(t, 2, m.vertices["social"])

	src.fail(vertexql.NewMetadataError("social", "connect", errors.New("refused")))
	_, err = r.Reload(ctx)
	require.Error(t, err)
	assert.True(t, vertexql.IsMetadataUnavailable(err))
	assert.Same(t, second, h.Schema(), "failed reload keeps the active schema")
	assert.Equal(t, 1, logs.FilterMessage("schema reload failed, keeping the active schema").Len())
	assert.Len(t, m.reloads, 4)
	assert.Error(t, m.reloads[3])
}

func TestReloaderCompileError(t *testing.T) {
	src := &swappable{}
	src.set(graph.VertexType{Name: "Empty"})
	h := NewHolder()
	_, err := NewReloader(h, src, "social", &fakeFactory{}).Reload(context.Background())
	require.Error(t, err)
	assert.True(t, vertexql.IsCompilationError(err))
	assert.Nil(t, h.Schema())
}

const metadataV1 = `spaces:
  social:
    vertices:
      - name: Person
        properties:
          - name: age
            type: INT64
`

const metadataV2 = `spaces:
  social:
    vertices:
      - name: Person
        properties:
          - name: age
            type: INT64
      - name: Team
        properties:
          - name: name
            type: STRING
`

func TestReloaderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(metadataV1), 0o644))

	h := NewHolder()
	r := NewReloader(h, load.NewFile(path), "social", &fakeFactory{}, WithDebounce(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := r.Reload(ctx)
	require.NoError(t, err)
	require.Len(t, h.Schema().Types(), 1)

	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, path) }()

	// Keep rewriting until the watcher has picked the change up, in case the
	// first write lands before the watch is registered.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(metadataV2), 0o644)
		return len(h.Schema().Types()) == 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestReloaderWatchMissingDir(t *testing.T) {
	r := NewReloader(NewHolder(), load.Static{}, "social", &fakeFactory{})
	err := r.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "metadata.yaml"))
	assert.Error(t, err)
}
