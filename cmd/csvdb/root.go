package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leengari/csvdb/internal/catalog"
	"github.com/leengari/csvdb/internal/config"
	"github.com/leengari/csvdb/internal/engine"
	"github.com/leengari/csvdb/internal/logging"
)

// session is the state shared by every subcommand of one invocation
type session struct {
	cfg      config.Config
	registry catalog.Registry
	engine   *engine.Engine
	cleanup  []func()
}

var current session

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "csvdb",
	Short:         "Query and mutate CSV files as indexed tables.",
	Long:          "csvdb loads CSV files declared in a catalog into memory, indexes them and answers equality queries, joins and mutations against them.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return current.open(cmd)
	},
}

// execute runs the root command and releases the session afterwards.
// PersistentPostRun is skipped when a command fails, so cleanup lives here.
func execute() error {
	defer current.close()
	return rootCmd.Execute()
}

func init() {
	defaults := config.FromEnv(config.Default())
	flags := rootCmd.PersistentFlags()
	flags.String("catalog", defaults.Catalog, "catalog directory, or sqlite DSN with --catalog-driver=sqlite")
	flags.String("catalog-driver", defaults.CatalogDriver, "catalog backend: file or sqlite")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.String("seq-url", defaults.SeqURL, "ship logs to this Seq server")
}

func (s *session) open(cmd *cobra.Command) error {
	flags := cmd.Flags()
	s.cfg = config.Config{
		Catalog:       getString(flags, "catalog"),
		CatalogDriver: getString(flags, "catalog-driver"),
		LogLevel:      getString(flags, "log-level"),
		SeqURL:        getString(flags, "seq-url"),
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(s.cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, closeFn := logging.SetupLogger(logging.Options{Level: level, SeqURL: s.cfg.SeqURL})
	slog.SetDefault(logger)
	s.cleanup = append(s.cleanup, closeFn)

	switch s.cfg.CatalogDriver {
	case config.DriverSQLite:
		cat, err := catalog.OpenSQL(cmd.Context(), s.cfg.Catalog)
		if err != nil {
			return err
		}
		s.registry = cat
		s.cleanup = append(s.cleanup, func() { cat.Close() })
	default:
		s.registry = catalog.NewFileCatalog(s.cfg.Catalog)
	}

	s.engine = engine.New(s.registry, engine.WithObserver(engine.NewLoggingObserver()))
	return nil
}

func (s *session) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
	s.cleanup = nil
}

func (s *session) table(ctx context.Context, name string) (*engine.Table, error) {
	return s.engine.Open(ctx, name)
}
