package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/vertexql/compiler/load"
	"github.com/syssam/vertexql/dialect/sql/sqlgraph"
)

func TestProvision(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(t))

	report, err := a.Provision(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Person"}, report.Created)
	assert.False(t, report.Applied)

	report, err = a.Provision(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.Applied)

	report, err = a.Provision(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(t))
	_, err := a.Provision(ctx, false)
	require.NoError(t, err)

	n, err := a.Seed(ctx, strings.NewReader(`vertices:
  Person:
    - id: p1
      properties:
        age: 42
        bio: hoops
    - properties:
        age: 7
`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	vts, err := loadSpace(ctx, a)
	require.NoError(t, err)
	recs, err := a.Store.Find(ctx, vts[0], sqlgraph.Query{Filter: map[string]any{"age": 42}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "hoops", recs[0]["bio"])

	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown vertex type", doc: "vertices:\n  Team:\n    - id: t1\n"},
		{name: "unknown key", doc: "edges: []\n"},
		{name: "unknown property", doc: "vertices:\n  Person:\n    - properties: {height: 2}\n"},
		{name: "duplicate id", doc: "vertices:\n  Person:\n    - id: p1\n      properties: {age: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Seed(ctx, strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestExport(t *testing.T) {
	a := newApp(t, testConfig(t))
	data, err := a.Export(context.Background())
	require.NoError(t, err)
	m, err := load.ParseMetadata(data)
	require.NoError(t, err)
	require.Equal(t, []string{"social"}, m.SpaceNames())
	require.Len(t, m.Spaces["social"].Vertices, 1)
	assert.Equal(t, "Person", m.Spaces["social"].Vertices[0].Name)
}
