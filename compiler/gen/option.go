package gen

import (
	"errors"

	"github.com/go-openapi/inflect"
	"go.uber.org/zap"
)

// CollisionPolicy decides what happens when two compiled definitions share
// a name: two vertex types with the same name, or a derived root field that
// clashes with another root field.
type CollisionPolicy uint8

const (
	// Overwrite lets the later definition in input order replace the earlier
	// one. A replaced root field keeps the position of the first definition.
	Overwrite CollisionPolicy = iota
	// Reject fails the compilation with vertexql.ErrNameCollision.
	Reject
)

// String returns the policy name.
func (p CollisionPolicy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseCollisionPolicy parses "overwrite" or "reject".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch s {
	case "", "overwrite":
		return Overwrite, nil
	case "reject":
		return Reject, nil
	default:
		return 0, NewConfigError("CollisionPolicy", s, "unsupported policy; use overwrite or reject")
	}
}

// DefaultQueryType is the default name of the root query type.
const DefaultQueryType = "Query"

// Config holds the compiler configuration.
type Config struct {
	// QueryType is the name of the root query type. Defaults to "Query".
	QueryType string
	// Collisions selects the collision policy. Defaults to Overwrite.
	Collisions CollisionPolicy
	// NodeResolvers binds the singular by-identifier field when the factory
	// implements NodeResolverFactory.
	NodeResolvers bool
	// Plural derives the bulk lookup field name from a vertex type name.
	// Defaults to appending "s".
	Plural func(string) string
	// Logger receives debug output. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Option configures the compiler.
type Option func(*Config) error

// WithQueryTypeName sets the root query type name.
func WithQueryTypeName(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("QueryType", nil, "query type name cannot be empty")
		}
		c.QueryType = name
		return nil
	}
}

// WithCollisionPolicy sets the name collision policy.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(c *Config) error {
		if p != Overwrite && p != Reject {
			return NewConfigError("CollisionPolicy", p, "unsupported policy")
		}
		c.Collisions = p
		return nil
	}
}

// WithNodeResolvers binds the singular by-identifier root field of every
// vertex type to a resolver from the factory. The factory must implement
// NodeResolverFactory.
func WithNodeResolvers() Option {
	return func(c *Config) error {
		c.NodeResolvers = true
		return nil
	}
}

// WithPluralizer sets the function deriving bulk lookup field names.
func WithPluralizer(fn func(string) string) Option {
	return func(c *Config) error {
		if fn == nil {
			return NewConfigError("Plural", nil, "pluralizer cannot be nil")
		}
		c.Plural = fn
		return nil
	}
}

// WithInflectPlurals derives bulk lookup field names with English
// inflection rules ("person" becomes "people", "Company" becomes
// "Companies") instead of appending "s".
func WithInflectPlurals() Option {
	return WithPluralizer(inflect.Pluralize)
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		QueryType:  DefaultQueryType,
		Collisions: Overwrite,
		Plural:     defaultPlural,
		Logger:     zap.NewNop(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func defaultPlural(name string) string {
	return name + "s"
}
