package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/orggate/orggate/internal/auth"
	"github.com/orggate/orggate/internal/auth/github"
	"github.com/orggate/orggate/internal/auth/oidc"
	"github.com/orggate/orggate/internal/authz"
	"github.com/orggate/orggate/internal/cache"
	"github.com/orggate/orggate/internal/config"
	"github.com/orggate/orggate/internal/metrics"
	"github.com/orggate/orggate/internal/server"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "/etc/orggate/config.yaml", "path to configuration file")
	configPathShort := flag.String("c", "/etc/orggate/config.yaml", "path to configuration file (short)")
	showVersion := flag.Bool("version", false, "show version and exit")
	showHelp := flag.Bool("help", false, "show help and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("orggate v%s\n", version)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Println("orggate - organization-gated SSO gateway")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfgPath := *configPath
	if *configPathShort != "/etc/orggate/config.yaml" {
		cfgPath = *configPathShort
	}

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	logger.Info("starting orggate", "version", version)

	cacheInstance, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	logger.Info("cache initialized", "type", cfg.Cache.Type)

	ctx := context.Background()

	var provider auth.Provider
	switch cfg.Provider.Type {
	case "github":
		provider, err = github.NewProvider(cfg.Provider, cacheInstance)
		if err != nil {
			return fmt.Errorf("failed to create GitHub provider: %w", err)
		}

	case "oidc":
		provider, err = oidc.NewProvider(ctx, cfg.Provider, cacheInstance)
		if err != nil {
			return fmt.Errorf("failed to create OIDC provider: %w", err)
		}

	default:
		return fmt.Errorf("unsupported provider type: %s", cfg.Provider.Type)
	}

	logger.Info("provider initialized",
		"name", cfg.Provider.Name,
		"type", cfg.Provider.Type,
	)

	evaluator, err := authz.New(cfg.Authz, logger)
	if err != nil {
		return fmt.Errorf("failed to create membership evaluator: %w", err)
	}
	logger.Info("membership rule initialized", "rule", cfg.Authz.Rule)

	srv, err := server.New(*cfg, cacheInstance, provider, evaluator, metrics.New(), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
