// Package config loads the process configuration of the vertexql command
// from .env files and VERTEXQL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of the environment variables read by Load.
const Prefix = "VERTEXQL"

// Environments.
const (
	EnvDev  = "development"
	EnvProd = "production"
)

// Metadata sources.
const (
	SourceFile    = "file"
	SourceCatalog = "catalog"
)

// Config is the process configuration.
type Config struct {
	Environment string `envconfig:"ENV" default:"development" validate:"oneof=development production"`

	// Metadata.
	Space        string        `envconfig:"SPACE" default:"default" validate:"required"`
	Source       string        `envconfig:"SOURCE" default:"file" validate:"oneof=file catalog"`
	MetadataFile string        `envconfig:"METADATA_FILE" default:"metadata.yaml" validate:"required_if=Source file"`
	DBSchema     string        `envconfig:"DB_SCHEMA"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gte=0"`
	Watch        bool          `envconfig:"WATCH" default:"true"`

	// Store.
	DBDriver     string            `envconfig:"DB_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres mysql"`
	DBDSN        string            `envconfig:"DB_DSN" default:"file:vertexql.db?cache=shared" validate:"required"`
	SlowQuery    time.Duration     `envconfig:"SLOW_QUERY" default:"200ms" validate:"gte=0"`
	DebugSQL     bool              `envconfig:"DEBUG_SQL"`
	DefaultLimit int               `envconfig:"DEFAULT_LIMIT" default:"100" validate:"gte=0"`
	SessionVars  map[string]string `envconfig:"SESSION_VARS"`

	// Compiler.
	Collisions     string `envconfig:"COLLISIONS" default:"overwrite" validate:"oneof=overwrite reject"`
	NodeResolvers  bool   `envconfig:"NODE_RESOLVERS" default:"true"`
	InflectPlurals bool   `envconfig:"INFLECT_PLURALS"`
	QueryType      string `envconfig:"QUERY_TYPE" default:"Query" validate:"required"`

	// Server.
	Addr            string        `envconfig:"ADDR" default:":8080" validate:"required"`
	Playground      bool          `envconfig:"PLAYGROUND" default:"true"`
	Metrics         bool          `envconfig:"METRICS" default:"true"`
	ComplexityLimit int           `envconfig:"COMPLEXITY_LIMIT" validate:"gte=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`
}

// Load reads the given .env files, then the environment. Missing .env
// files are skipped; variables already set in the environment win over the
// files. The result is not validated, so flags can still override it.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, ", "))
}

// Dev reports whether the development environment is configured.
func (c *Config) Dev() bool {
	return c.Environment == EnvDev
}
