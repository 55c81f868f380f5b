package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/server"
)

var (
	servePort        int
	serveDatabaseURL string
	serveMigrate     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the candidates REST API server",
	Long: `Start an HTTP server exposing the candidates API used by the tracker.
Write routes require a Bearer token when JWT_SECRET is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 3000)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "PostgreSQL URL, sqlite://<path> or memory:// (default from DATABASE_URL)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply the schema on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	srvCfg, err := serverConfig(cfg, servePort, serveDatabaseURL)
	if err != nil {
		return err
	}
	srvCfg.AutoMigrate = serveMigrate

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			slog.Warn("failed to close repository", "error", err)
		}
	}()

	return srv.Start(ctx)
}

// serverConfig resolves the server settings; flag values win over c.
func serverConfig(c config.Config, port int, databaseURL string) (server.Config, error) {
	if port == 0 {
		port = c.Port
	}
	if databaseURL == "" {
		databaseURL = c.DatabaseURL
	}

	jwtCfg, err := config.NewJWTConfig()
	switch {
	case errors.Is(err, config.ErrJWTSecretMissing):
		slog.Warn("JWT_SECRET not set, write routes are unauthenticated")
		jwtCfg = nil
	case err != nil:
		return server.Config{}, err
	}
	if databaseURL == "" {
		slog.Warn("DATABASE_URL not set, candidates are kept in memory")
	}

	return server.Config{
		Port:        port,
		DatabaseURL: databaseURL,
		JWT:         jwtCfg,
		Logger:      slog.Default(),
	}, nil
}
