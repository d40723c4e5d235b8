package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "github.com/rpupo63/project-showcase/api"
	"github.com/rpupo63/project-showcase/config"
	"github.com/rpupo63/project-showcase/database"
	"github.com/rpupo63/project-showcase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	errChannel := make(chan error, 2)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	if err := run(cfg, errChannel); err != nil {
		log.Error().Err(err).Msg("Exiting")
		os.Exit(1)
	}
}

// run owns the database for the life of the server. It returns instead of
// exiting so the deferred Close always runs. The server stops on the first
// value sent to errChannel.
func run(cfg config.Config, errChannel chan error) error {
	log.Info().Str("dbType", cfg.DBType).Str("env", cfg.Env).Msg("Initializing app...")

	currentDB, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() {
		if err := currentDB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	// If generating column mismatch report, run report and exit
	if cfg.GenerateColumnReport {
		if err := currentDB.WriteColumnReport(os.Stdout); err != nil {
			log.Error().Err(err).Msg("Error generating column report")
		}
		return nil
	}

	if err := currentDB.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	var serverOpts []api.ServerOption
	if cfg.NotificationsEnabled() {
		notifier, err := services.NewResendNotifier(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.NotifyEmails)
		if err != nil {
			return fmt.Errorf("configuring comment notifications: %w", err)
		}
		serverOpts = append(serverOpts, api.WithNotifier(notifier))
		log.Info().Strs("recipients", cfg.NotifyEmails).Msg("Comment notifications enabled")
	}

	server, err := api.NewServer(cfg, currentDB, serverOpts...)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	go server.Start(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
