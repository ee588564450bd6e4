// Package main is the entry point for the sendcard HTTP server.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shineum/sendcard/internal/app"
	"github.com/shineum/sendcard/internal/config"
	"github.com/shineum/sendcard/internal/httpapi"
	cardtls "github.com/shineum/sendcard/internal/tls"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	envFile := flag.String("env-file", ".env", "path to a dotenv file loaded before configuration (optional)")
	flag.Parse()

	// A missing .env is normal outside local development
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.SetupLogger(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	handler, err := app.NewSendHandler(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build send handler", "error", err)
		os.Exit(1)
	}

	tlsConfig, tlsMode, err := serverTLS(cfg)
	if err != nil {
		logger.Error("failed to setup TLS", "error", err)
		os.Exit(1)
	}

	server, err := httpapi.NewServer(httpapi.Config{
		ListenAddr:     cfg.HTTP.Listen,
		SendHandler:    handler,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		TLSConfig:      tlsConfig,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to create http server", "error", err)
		os.Exit(1)
	}

	logger.Info("starting sendcard",
		"listen", cfg.HTTP.Listen,
		"path", httpapi.SendPath,
		"tls_mode", tlsMode,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("received signal, initiating shutdown")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", "error", err)
			os.Exit(1)
		}
		if err := <-serveErr; err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("sendcard stopped")
}

// serverTLS returns the TLS configuration for the listener, or nil when the
// server should speak plain HTTP.
func serverTLS(cfg *config.Config) (*tls.Config, string, error) {
	if !cfg.TLSEnabled() {
		return nil, "off", nil
	}
	tlsConfig, err := cardtls.ServerConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, "", err
	}
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		return tlsConfig, "file", nil
	}
	return tlsConfig, "self-signed", nil
}
