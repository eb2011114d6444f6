package schema

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	_ "modernc.org/sqlite"

	"github.com/syssam/vertexql/dialect"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/graph"
)

func openSQLite(t *testing.T) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })
	return drv
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	p, err := NewProvisioner(drv, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, dialect.SQLite, p.Dialect())

	report, err := p.Provision(ctx, []graph.VertexType{person()})
	require.NoError(t, err)
	assert.True(t, report.Applied)
	assert.Equal(t, []string{"Person"}, report.Created)
	require.NotEmpty(t, report.Statements)
	assert.Contains(t, report.Statements[0], "CREATE TABLE")
	assert.NotContains(t, report.Statements[0], "IF NOT EXISTS")

	tables, err := p.Inspect(ctx, "Person")
	require.NoError(t, err)
	require.Len(t, tables, 1)
	vt := VertexType(tables[0])
	assert.Equal(t, "Person", vt.Name)
	require.Len(t, vt.Properties, 2)
	assert.Equal(t, graph.Property{Name: "age", Type: graph.TypeInt64}, vt.Properties[0])
	assert.Equal(t, graph.Property{Name: "bio", Type: graph.TypeString}, vt.Properties[1])

	// Nothing to do the second time.
	report, err = p.Provision(ctx, []graph.VertexType{person()})
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.False(t, report.Applied)
	assert.Empty(t, report.Statements)

	// New properties become new columns.
	extended := person()
	extended.Properties = append(extended.Properties, graph.Property{Name: "email", Type: graph.TypeString})
	report, err = p.Provision(ctx, []graph.VertexType{extended})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"Person": {"email"}}, report.Added)
	tables, err = p.Inspect(ctx, "Person")
	require.NoError(t, err)
	_, ok := tables[0].Column("email")
	assert.True(t, ok)
}

func TestProvisionDryRun(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	p, err := NewProvisioner(drv, WithDryRun())
	require.NoError(t, err)

	company := graph.VertexType{Name: "Company", Properties: []graph.Property{{Name: "name", Type: graph.TypeString}}}
	report, err := p.Provision(ctx, []graph.VertexType{company})
	require.NoError(t, err)
	assert.False(t, report.Applied)
	assert.Equal(t, []string{"Company"}, report.Created)
	assert.NotEmpty(t, report.Statements)

	tables, err := p.Inspect(ctx, "Company")
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestProvisionIncompatible(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	_, err := drv.DB().ExecContext(ctx, "CREATE TABLE `Robot` (`vid` text NOT NULL PRIMARY KEY, `age` text NULL)")
	require.NoError(t, err)

	p, err := NewProvisioner(drv)
	require.NoError(t, err)
	robot := graph.VertexType{Name: "Robot", Properties: []graph.Property{{Name: "age", Type: graph.TypeInt64}}}
	report, err := p.Provision(ctx, []graph.VertexType{robot})
	require.ErrorIs(t, err, ErrIncompatible)
	require.NotNil(t, report)
	assert.True(t, report.Drift.HasErrors())
	assert.False(t, report.Applied)
}

func TestProvisionStrictColumns(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t)
	_, err := drv.DB().ExecContext(ctx, "CREATE TABLE `Robot` (`vid` text NOT NULL PRIMARY KEY, `age` bigint NULL, `legacy` text NULL)")
	require.NoError(t, err)
	robot := graph.VertexType{Name: "Robot", Properties: []graph.Property{{Name: "age", Type: graph.TypeInt64}}}

	p, err := NewProvisioner(drv)
	require.NoError(t, err)
	report, err := p.Provision(ctx, []graph.VertexType{robot})
	require.NoError(t, err)
	assert.True(t, report.Drift.HasWarnings())

	p, err = NewProvisioner(drv, WithValidateOptions(StrictColumns()))
	require.NoError(t, err)
	_, err = p.Provision(ctx, []graph.VertexType{robot})
	require.ErrorIs(t, err, ErrIncompatible)
}

func TestNewProvisionerUnsupported(t *testing.T) {
	_, err := NewProvisioner(sql.OpenDB("oracle", nil))
	require.Error(t, err)
}

func TestProvisionUnsupportedType(t *testing.T) {
	p, err := NewProvisioner(openSQLite(t))
	require.NoError(t, err)
	_, err = p.Provision(context.Background(), []graph.VertexType{{
		Name:       "Robot",
		Properties: []graph.Property{{Name: "x", Type: "BLOB"}},
	}})
	require.Error(t, err)
}
