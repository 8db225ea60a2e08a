package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/davidzaratecamp/paginacarebackend/api"
	"github.com/davidzaratecamp/paginacarebackend/config"
	"github.com/davidzaratecamp/paginacarebackend/database"
	"github.com/davidzaratecamp/paginacarebackend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg := config.Load(config.New())
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// run owns every resource it opens; errors come back here so deferred
// cleanup runs before main exits.
func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log.Info().Str("env", cfg.Env).Msg("Initializing app...")

	gormDB, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	db := database.New(gormDB)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reportOnly, err := prepareDatabase(ctx, cfg.Database, db)
	if err != nil || reportOnly {
		return err
	}

	created, err := services.SeedAdmin(ctx, db.AdminRepo(), cfg.Seed)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info().Str("username", cfg.Seed.Username).Msg("seeded initial admin")
	}

	mailer, err := services.NewMailer(cfg.Mail)
	if err != nil {
		return fmt.Errorf("configure mail transport: %w", err)
	}
	notifier := services.NewNotifier(mailer, cfg.Mail)
	if !cfg.Mail.Enabled() {
		log.Warn().Msg("mail transport not configured, notifications disabled")
	}

	authenticator := services.NewAuthenticator(db.AdminRepo(), cfg.Auth)

	errChannel := make(chan error, 2)

	server := api.NewServer(cfg, db, authenticator, notifier)
	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(cfg.Server.ShutdownTimeout)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer drainCancel()
	if err := notifier.Wait(drainCtx); err != nil {
		log.Warn().Err(err).Msg("notifications still in flight at shutdown")
	}
	return nil
}

type schemaStore interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	ColumnReport(ctx context.Context) (map[string][]string, error)
}

// prepareDatabase checks the connection and applies the schema. When a column
// report is requested it logs the report and tells the caller to stop.
func prepareDatabase(ctx context.Context, cfg config.DatabaseConfig, db schemaStore) (reportOnly bool, err error) {
	if err := db.Ping(ctx); err != nil {
		return false, fmt.Errorf("test database connection: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return false, fmt.Errorf("migrate schema: %w", err)
		}
	}

	if !cfg.SchemaReport {
		return false, nil
	}
	report, err := db.ColumnReport(ctx)
	if err != nil {
		return false, fmt.Errorf("generate column report: %w", err)
	}
	for table, mismatches := range report {
		log.Warn().Str("table", table).Strs("mismatches", mismatches).Msg("column mismatch")
	}
	log.Info().Int("tables", len(report)).Msg("column report finished")
	return true, nil
}

// setupLogger configures the global zerolog logger: human readable in
// development, JSON lines in production.
func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
