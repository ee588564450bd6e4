// Package app holds the startup wiring shared by the sendcard binaries:
// configuration loading, logging, and provider selection.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shineum/sendcard/internal/config"
	"github.com/shineum/sendcard/internal/provider"
	"github.com/shineum/sendcard/internal/provider/graph"
	"github.com/shineum/sendcard/internal/provider/resend"
	"github.com/shineum/sendcard/internal/provider/ses"
	"github.com/shineum/sendcard/internal/provider/stdout"
	"github.com/shineum/sendcard/internal/send"
)

// LoadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// ParseLevel maps a configured level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a JSON slog logger writing to w at the given level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// SetupLogger installs a JSON stdout logger as the slog default and returns it.
func SetupLogger(level string) *slog.Logger {
	logger := NewLogger(os.Stdout, level)
	slog.SetDefault(logger)
	return logger
}

// BuildProvider chooses the email delivery backend based on configuration.
// An explicit cfg.Provider wins; otherwise the first configured backend in
// the order resend, graph, ses is used, falling back to stdout.
func BuildProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderResend:
		if !cfg.ResendConfigured() {
			return nil, errors.New("resend provider selected but RESEND_API_KEY is required")
		}
		return newResend(cfg, logger), nil

	case config.ProviderGraph:
		if !cfg.GraphConfigured() {
			return nil, errors.New("graph provider selected but GRAPH_TENANT_ID, GRAPH_CLIENT_ID, GRAPH_CLIENT_SECRET, and GRAPH_SENDER are required")
		}
		return newGraph(cfg, logger), nil

	case config.ProviderSES:
		if !cfg.SESConfigured() {
			return nil, errors.New("ses provider selected but SES_REGION and SES_SENDER are required")
		}
		return newSES(ctx, cfg, logger)

	case config.ProviderStdout:
		logger.Info("using stdout provider")
		return stdout.New(), nil

	case "":
		if cfg.ResendConfigured() {
			return newResend(cfg, logger.With("auto_detected", true)), nil
		}
		if cfg.GraphConfigured() {
			return newGraph(cfg, logger.With("auto_detected", true)), nil
		}
		if cfg.SESConfigured() {
			return newSES(ctx, cfg, logger.With("auto_detected", true))
		}
		logger.Info("no provider configured, using stdout provider")
		return stdout.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// HandlerDefaults converts the card settings into send handler defaults.
func HandlerDefaults(cfg *config.Config) send.Defaults {
	return send.Defaults{
		Subject:       cfg.Card.DefaultSubject,
		FromName:      cfg.Card.DefaultFromName,
		SenderAddress: cfg.Card.SenderAddress,
	}
}

// NewSendHandler builds the provider selected by cfg and the send handler
// around it.
func NewSendHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*send.Handler, error) {
	prov, err := BuildProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return send.NewHandler(send.Config{
		Provider: prov,
		Defaults: HandlerDefaults(cfg),
		Logger:   logger,
	})
}

func newResend(cfg *config.Config, logger *slog.Logger) provider.Provider {
	logger.Info("using Resend provider",
		"endpoint", cfg.Resend.Endpoint,
		"sender", cfg.Card.SenderAddress,
	)
	return resend.New(resend.ResendProviderConfig{
		APIKey:   cfg.Resend.APIKey,
		Endpoint: cfg.Resend.Endpoint,
	})
}

func newGraph(cfg *config.Config, logger *slog.Logger) provider.Provider {
	logger.Info("using Microsoft Graph provider",
		"sender", cfg.Graph.Sender,
	)
	return graph.New(graph.GraphProviderConfig{
		TenantID:     cfg.Graph.TenantID,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		Sender:       cfg.Graph.Sender,
	})
}

func newSES(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Provider, error) {
	logger.Info("using AWS SES provider",
		"region", cfg.SES.Region,
		"sender", cfg.SES.Sender,
	)
	p, err := ses.New(ctx, ses.SESProviderConfig{
		Region:          cfg.SES.Region,
		AccessKeyID:     cfg.SES.AccessKeyID,
		SecretAccessKey: cfg.SES.SecretAccessKey,
		Sender:          cfg.SES.Sender,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SES provider: %w", err)
	}
	return p, nil
}
