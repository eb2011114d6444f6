package schema

import (
	"context"
	"errors"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"go.uber.org/zap"

	"github.com/syssam/vertexql/dialect"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/graph"
)

// ErrIncompatible is returned when existing tables cannot store the
// vertex types they are provisioned for.
var ErrIncompatible = errors.New("dialect/sql/schema: incompatible vertex tables")

// Provisioner creates and extends vertex tables. It only ever adds tables
// and columns; it never drops or alters existing ones.
type Provisioner struct {
	drv     migrate.Driver
	dialect string
	log     *zap.Logger
	dryRun  bool
	opts    []ValidateOption
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the logger used to report planned changes.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provisioner) {
		if l != nil {
			p.log = l
		}
	}
}

// WithDryRun plans the changes without applying them.
func WithDryRun() Option {
	return func(p *Provisioner) {
		p.dryRun = true
	}
}

// WithValidateOptions sets the options used for the drift check that
// precedes every provisioning run.
func WithValidateOptions(opts ...ValidateOption) Option {
	return func(p *Provisioner) {
		p.opts = append(p.opts, opts...)
	}
}

// NewProvisioner opens the atlas driver matching the dialect of drv.
func NewProvisioner(drv *sql.Driver, opts ...Option) (*Provisioner, error) {
	var open func(schema.ExecQuerier) (migrate.Driver, error)
	switch name := drv.Dialect(); name {
	case dialect.SQLite:
		open = sqlite.Open
	case dialect.MySQL:
		open = mysql.Open
	case dialect.Postgres:
		open = postgres.Open
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", name)
	}
	ad, err := open(drv.DB())
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: open atlas driver: %w", err)
	}
	p := &Provisioner{drv: ad, dialect: drv.Dialect(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dialect returns the dialect of the provisioned database.
func (p *Provisioner) Dialect() string {
	return p.dialect
}

// Inspect returns the tables of the connected schema. If names are given,
// only those tables are inspected.
func (p *Provisioner) Inspect(ctx context.Context, names ...string) ([]*schema.Table, error) {
	return p.InspectSchema(ctx, "", names...)
}

// InspectSchema is like Inspect but reads the named schema (database on
// MySQL, attached database on SQLite). An empty name is the connected one.
func (p *Provisioner) InspectSchema(ctx context.Context, name string, names ...string) ([]*schema.Table, error) {
	s, err := p.drv.InspectSchema(ctx, name, &schema.InspectOptions{
		Mode:   schema.InspectTables,
		Tables: names,
	})
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: inspect: %w", err)
	}
	return s.Tables, nil
}

// Report describes a provisioning run.
type Report struct {
	// Created lists the tables that were (or would be) created.
	Created []string
	// Added maps tables to the columns that were (or would be) added.
	Added map[string][]string
	// Statements holds the planned SQL statements.
	Statements []string
	// Drift is the result of comparing existing tables with the vertex types.
	Drift *ValidationResult
	// Applied reports whether the statements were executed.
	Applied bool
}

// Empty reports whether nothing had to change.
func (r *Report) Empty() bool {
	return len(r.Created) == 0 && len(r.Added) == 0
}

// Provision makes sure every vertex type has a table with a column per
// property. Existing tables whose columns cannot store the vertex type fail
// with an error wrapping ErrIncompatible, and nothing is applied.
func (p *Provisioner) Provision(ctx context.Context, vts []graph.VertexType) (*Report, error) {
	desired, err := Tables(p.dialect, vts)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(desired))
	for i, t := range desired {
		names[i] = t.Name
	}
	current, err := p.Inspect(ctx, names...)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Added: make(map[string][]string),
		Drift: ValidateDiff(current, desired, p.opts...),
	}
	for _, w := range report.Drift.Warnings {
		p.log.Warn("vertex table drift", zap.String("table", w.Table), zap.String("column", w.Column), zap.String("message", w.Message))
	}
	if report.Drift.HasErrors() {
		return report, fmt.Errorf("%w:\n%s", ErrIncompatible, report.Drift)
	}
	changes := p.changes(current, desired, report)
	if len(changes) == 0 {
		p.log.Debug("vertex tables up to date", zap.Int("tables", len(desired)))
		return report, nil
	}
	plan, err := p.drv.PlanChanges(ctx, "provision", changes)
	if err != nil {
		return report, fmt.Errorf("dialect/sql/schema: plan: %w", err)
	}
	for _, c := range plan.Changes {
		report.Statements = append(report.Statements, c.Cmd)
	}
	if p.dryRun {
		p.log.Info("vertex table changes planned", zap.Strings("statements", report.Statements))
		return report, nil
	}
	if err := p.drv.ApplyChanges(ctx, changes); err != nil {
		return report, fmt.Errorf("dialect/sql/schema: apply: %w", err)
	}
	report.Applied = true
	p.log.Info("vertex tables provisioned",
		zap.Strings("created", report.Created),
		zap.Int("altered", len(report.Added)),
	)
	return report, nil
}

func (p *Provisioner) changes(current, desired []*schema.Table, report *Report) []schema.Change {
	have := make(map[string]*schema.Table, len(current))
	for _, t := range current {
		have[t.Name] = t
	}
	var changes []schema.Change
	for _, want := range desired {
		t, ok := have[want.Name]
		if !ok {
			changes = append(changes, &schema.AddTable{T: want})
			report.Created = append(report.Created, want.Name)
			continue
		}
		var adds []schema.Change
		for _, c := range want.Columns {
			if _, ok := t.Column(c.Name); ok {
				continue
			}
			adds = append(adds, &schema.AddColumn{C: c})
			report.Added[t.Name] = append(report.Added[t.Name], c.Name)
		}
		if len(adds) > 0 {
			changes = append(changes, &schema.ModifyTable{T: t, Changes: adds})
		}
	}
	return changes
}
