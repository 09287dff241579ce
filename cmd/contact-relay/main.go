// Package main is the entry point for the contact form relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shineum/contact-relay/internal/api"
	"github.com/shineum/contact-relay/internal/config"
	"github.com/shineum/contact-relay/internal/metrics"
	"github.com/shineum/contact-relay/internal/provider"
	"github.com/shineum/contact-relay/internal/provider/graph"
	"github.com/shineum/contact-relay/internal/provider/resend"
	"github.com/shineum/contact-relay/internal/provider/ses"
	"github.com/shineum/contact-relay/internal/provider/smtp"
	"github.com/shineum/contact-relay/internal/provider/stdout"
	"github.com/shineum/contact-relay/internal/server"
	relaytls "github.com/shineum/contact-relay/internal/tls"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging.Level)

	prov, err := selectProvider(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to create provider", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}
	if prov == nil {
		logger.Warn("email provider not configured, /send-email will answer 500",
			"provider", cfg.Provider,
			"missing", cfg.MissingSettings(),
		)
	}

	srvCfg := server.ServerConfig{
		ListenAddr: cfg.HTTP.Listen,
		Handler:    api.NewRouter(api.NewHandler(cfg, prov, logger)),
	}

	tlsMode := "off"
	if cfg.TLS.Enabled {
		tlsConfig, err := relaytls.LoadOrGenerateTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile, tlsHosts()...)
		if err != nil {
			logger.Error("failed to setup TLS", "error", err)
			os.Exit(1)
		}
		srvCfg.TLSConfig = tlsConfig

		tlsMode = "self-signed"
		if cfg.TLS.CertFile != "" {
			tlsMode = "file"
		}
	}

	metrics.RegisterDefault()

	logger.Info("starting contact-relay",
		"listen", cfg.HTTP.Listen,
		"provider", cfg.Provider,
		"ready", cfg.Ready(),
		"allowed_origins", len(cfg.HTTP.AllowedOrigins),
		"tls_mode", tlsMode,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	if err := server.New(srvCfg).ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("contact-relay stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger installs a JSON slog logger at the given level as the default
// and returns it.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// selectProvider builds the delivery backend named by cfg.Provider. It
// returns a nil provider without error when that backend lacks credentials,
// so the service still starts and reports itself as not configured.
func selectProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	if !cfg.Ready() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderResend:
		return resend.New(cfg.Resend.APIKey), nil

	case config.ProviderSES:
		p, err := ses.New(ctx, ses.SESProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case config.ProviderGraph:
		return graph.New(graph.GraphProviderConfig{
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
		}), nil

	case config.ProviderSMTP:
		p, err := smtp.New(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			UseSSL:   cfg.SMTP.SSL,
		})
		if err != nil {
			return nil, err
		}
		return p, nil

	case config.ProviderStdout:
		return stdout.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// tlsHosts lists the names a generated certificate is issued for.
func tlsHosts() []string {
	hosts := []string{"localhost", "127.0.0.1"}
	if h, err := os.Hostname(); err == nil && h != "" && h != "localhost" {
		hosts = append(hosts, h)
	}
	return hosts
}
