package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/cmd/cli/commands"
	"github.com/ayuuto/ayuuto-cli/internal/config"
	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/loadguard"
	"github.com/ayuuto/ayuuto-cli/pkg/core/locale"
	"github.com/ayuuto/ayuuto-cli/pkg/db"
	"github.com/ayuuto/ayuuto-cli/pkg/postgres"
	"github.com/ayuuto/ayuuto-cli/pkg/session"
	"github.com/ayuuto/ayuuto-cli/pkg/sqlite"
	"github.com/ayuuto/ayuuto-cli/pkg/utils/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var env string
	app := &commands.AppContext{Ctx: ctx, In: bufio.NewReader(os.Stdin)}

	rootCmd := &cobra.Command{
		Use:           "ayuuto",
		Short:         "Ayuuto - run your rotating savings group",
		Long:          `A command line client for Ayuuto savings groups: create groups, spin the payout order, track contributions each round and share progress.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.Env = env
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Database != nil {
				if err := app.Database.Close(); err != nil {
					app.Logger.Warn("Failed to close cache", zap.Error(err))
				}
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment name; selects ayuuto_config.<env>.yaml and the session file")

	rootCmd.AddCommand(commands.All(app)...)

	if err := rootCmd.Execute(); err != nil {
		commands.HandleError(app, os.Stderr, err)
		os.Exit(1)
	}
}

// initApp sets up config, logger, session, API client and snapshot cache
func initApp(app *commands.AppContext) error {
	var err error

	app.Cfg, err = config.LoadWithEnv(app.Env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger, err = logging.InitLogger(app.Env, app.Cfg.SessionDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Debug("Configuration loaded", zap.String("path", app.Cfg.Path), zap.String("api", app.Cfg.APIBaseURL))

	app.Sessions = session.NewStore(app.Cfg.SessionDir, app.Env)
	app.Locale = locale.New(app.Cfg.Locale)
	app.Guard = loadguard.New()

	app.API, err = ayuutoclient.NewClient(app.Cfg.APIBaseURL, app.Sessions, app.Logger,
		ayuutoclient.WithTimeout(app.Cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	app.Database, err = openCache(app.Ctx, app.Cfg.Cache, app.Logger)
	if err != nil {
		return err
	}

	return nil
}

// openCache connects the snapshot cache selected by cache.driver
func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Database, error) {
	switch cfg.Driver {
	case config.CacheNone:
		logger.Debug("Snapshot cache disabled, using memory")
		return db.NewMemoryDB(), nil

	case config.CachePostgres:
		logger.Debug("Connecting to postgres cache")
		pg, err := postgres.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres cache: %w", err)
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to migrate postgres cache: %w", err)
		}
		return pg, nil

	default:
		logger.Debug("Opening sqlite cache", zap.String("path", cfg.SQLitePath))
		lite, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return lite, nil
	}
}
