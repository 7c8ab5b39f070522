// Command notam-mcp serves NOTAM lookup, briefing and parsing tools over the
// Model Context Protocol on stdio.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/couchcryptid/notam-briefing-service/internal/app"
	"github.com/couchcryptid/notam-briefing-service/internal/config"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	// stdout carries protocol frames, so logs go to stderr.
	logger := observability.NewConsoleLogger(os.Stderr, os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	svc, err := app.New(cfg, logger, observability.NewMetrics())
	if err != nil {
		logger.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}

	s := server.NewMCPServer("notam-briefing", version, server.WithToolCapabilities(false))
	registerTools(s, &tools{fetcher: svc.Fetcher, briefer: svc.Briefer})

	if err := server.ServeStdio(s); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
