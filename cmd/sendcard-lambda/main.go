// Package main is the AWS Lambda entry point for the send endpoint. It serves
// API Gateway HTTP API and Lambda function URL events.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/shineum/sendcard/internal/app"
)

func main() {
	cfg, err := app.LoadConfig(os.Getenv("SENDCARD_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := app.SetupLogger(cfg.Logging.Level)

	handler, err := app.NewSendHandler(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build send handler", "error", err)
		os.Exit(1)
	}

	lambda.Start(handler.HandleLambda)
}
