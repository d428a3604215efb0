package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"instaview/pkg/auth"
	"instaview/pkg/config"
	"instaview/pkg/logger"
	"instaview/pkg/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

Endpoints:
  GET /api/scrape?username=<name>&offset=<n>&limit=<n>
  GET /api/profile_extras?username=<name>
  GET /api/hashtag?tags=<tag1,tag2>&offset=<n>&limit=<n>
  GET /proxy?u=<encoded media url>
  GET /health
  GET /debug/session`,
	Example: `  # Serve on the configured address
  instaview serve

  # Serve on a specific address
  instaview serve --addr :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	// Env and config take precedence; the credential store fills the gap.
	if cfg.Instagram.BotUsername == "" || cfg.Instagram.BotPassword == "" {
		if manager, merr := auth.NewManager(); merr == nil {
			if creds, cerr := manager.Retrieve(); cerr == nil {
				cfg.Instagram.BotUsername = creds.Username
				cfg.Instagram.BotPassword = creds.Password
			}
		}
	}

	if err := logger.Initialize(logger.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	if err := os.MkdirAll(cfg.Instagram.DataDir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, log)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
