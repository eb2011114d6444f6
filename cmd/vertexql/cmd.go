package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/vertexql/contrib/graphql"
	"github.com/syssam/vertexql/dialect/sql/schema"
	"github.com/syssam/vertexql/internal/app"
	"github.com/syssam/vertexql/internal/config"
)

// cli carries the state shared by the commands.
type cli struct {
	envFiles []string
	cfg      *config.Config
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "vertexql",
		Short:         "Compile graph space metadata into a GraphQL query API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	f := root.PersistentFlags()
	f.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv files to load")
	f.String("space", "", "graph space to compile")
	f.String("source", "", "metadata source: file or catalog")
	f.String("metadata", "", "metadata file of the file source")
	f.String("db-driver", "", "database driver: sqlite, postgres or mysql")
	f.String("db-dsn", "", "database data source name")
	f.String("env", "", "environment: development or production")

	root.AddCommand(
		c.serveCmd(),
		c.schemaCmd(),
		c.genCmd(),
		c.provisionCmd(),
		c.seedCmd(),
		c.exportCmd(),
	)
	return root
}

// overrides maps flags to the configuration fields they set.
func overrides(cfg *config.Config) map[string]any {
	return map[string]any{
		"space":      &cfg.Space,
		"source":     &cfg.Source,
		"metadata":   &cfg.MetadataFile,
		"db-driver":  &cfg.DBDriver,
		"db-dsn":     &cfg.DBDSN,
		"env":        &cfg.Environment,
		"addr":       &cfg.Addr,
		"watch":      &cfg.Watch,
		"playground": &cfg.Playground,
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFiles...)
	if err != nil {
		return err
	}
	for name, dst := range overrides(cfg) {
		fl := cmd.Flags().Lookup(name)
		if fl == nil || !fl.Changed {
			continue
		}
		switch dst := dst.(type) {
		case *string:
			*dst = fl.Value.String()
		case *bool:
			*dst = fl.Value.String() == "true"
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := app.NewLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	c.cfg, c.log = cfg, log
	return nil
}

// run assembles the app, runs fn and releases the app.
func (c *cli) run(cmd *cobra.Command, fn func(*app.App) error) (err error) {
	a, err := app.New(cmd.Context(), c.cfg, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API and reload it on metadata changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(a *app.App) error {
				return a.Serve(cmd.Context())
			})
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().Bool("watch", true, "reload on metadata changes")
	cmd.Flags().Bool("playground", true, "serve the GraphQL playground on /")
	return cmd
}

func (c *cli) schemaCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the compiled schema in SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(a *app.App) error {
				s, err := a.Compile(cmd.Context())
				if err != nil {
					return err
				}
				if out != "" {
					return graphql.WriteSDL(s, out)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), s.SDL())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the SDL to a file instead of stdout")
	return cmd
}

func (c *cli) genCmd() *cobra.Command {
	var (
		dir, pkg, gqlgen, modelPackage string
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the SDL, Go models and gqlgen bindings of the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(a *app.App) error {
				s, err := a.Compile(cmd.Context())
				if err != nil {
					return err
				}
				sdl := filepath.Join(dir, "schema.graphql")
				if err := graphql.WriteSDL(s, sdl); err != nil {
					return err
				}
				if err := graphql.WriteModels(s, pkg, filepath.Join(dir, "models.go")); err != nil {
					return err
				}
				if gqlgen == "" {
					return nil
				}
				if modelPackage == "" {
					return fmt.Errorf("--model-package is required with --gqlgen")
				}
				gcfg, err := graphql.LoadGQLGenConfig(gqlgen)
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(filepath.Dir(gqlgen), sdl)
				if err != nil {
					rel = sdl
				}
				if err := gcfg.BindVertexModels(s, modelPackage, filepath.ToSlash(rel)); err != nil {
					return err
				}
				return graphql.SaveGQLGenConfig(gqlgen, gcfg)
			})
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&pkg, "pkg", "models", "package name of the generated models")
	cmd.Flags().StringVar(&gqlgen, "gqlgen", "", "gqlgen.yml to bind the models in")
	cmd.Flags().StringVar(&modelPackage, "model-package", "", "import path of the generated models")
	return cmd
}

func (c *cli) provisionCmd() *cobra.Command {
	var dryRun, strict bool
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create or extend the vertex tables of the space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(a *app.App) error {
				var opts []schema.Option
				if strict {
					opts = append(opts, schema.WithValidateOptions(schema.StrictColumns()))
				}
				report, err := a.Provision(cmd.Context(), dryRun, opts...)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if report.Empty() {
					_, err := fmt.Fprintln(w, "vertex tables are up to date")
					return err
				}
				for _, stmt := range report.Statements {
					if _, err := fmt.Fprintln(w, strings.TrimSpace(stmt)+";"); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements without applying them")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on table columns no vertex property maps to")
	return cmd
}

func (c *cli) seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the vertices of a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			return c.run(cmd, func(a *app.App) error {
				n, err := a.Seed(cmd.Context(), f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d vertices\n", n)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the metadata of the space as a metadata file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(a *app.App) error {
				data, err := a.Export(cmd.Context())
				if err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				return os.WriteFile(out, data, 0o644)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, stdout when empty")
	return cmd
}
