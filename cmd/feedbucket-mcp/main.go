package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/adapters/feedbucket"
	"feedbucket-mcp/internal/adapters/tools"
	"feedbucket-mcp/internal/infra/config"
	httpinfra "feedbucket-mcp/internal/infra/http"
	applog "feedbucket-mcp/internal/infra/log"
	"feedbucket-mcp/internal/infra/metrics"
	feedbackusecase "feedbucket-mcp/internal/usecase/feedback"
)

// version задаётся при сборке через -ldflags.
var version = "dev"

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv, cfg.LogLevel)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := feedbucket.New(feedbucket.Config{
		BaseURL:    cfg.Feedbucket.BaseURL,
		ProjectID:  cfg.Feedbucket.ProjectID,
		PrivateKey: cfg.Feedbucket.PrivateKey,
		APIKey:     cfg.Feedbucket.APIKey,
		Timeout:    cfg.Feedbucket.Timeout,
	}, feedbucket.WithLogger(logger.With().Str("component", "feedbucket").Logger()))
	if err != nil {
		logger.Fatal().Err(err).Msg("mcp: не удалось создать клиент Feedbucket")
	}

	svc := feedbackusecase.NewService(client, logger.With().Str("component", "feedback").Logger())
	handler := tools.NewHandler(svc, tools.ConnectionInfo{
		BaseURL:              client.BaseURL(),
		PublicKeyConfigured:  client.HasAPIKey(),
		PrivateKeyConfigured: client.HasPrivateKey(),
	}, logger.With().Str("component", "tools").Logger())
	mcpServer := tools.NewServer(handler, version)

	if cfg.Metrics.Enabled {
		metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.Metrics.Addr, prometheus.DefaultGatherer)
	}

	logger.Info().
		Str("transport", cfg.MCP.Transport).
		Str("base_url", client.BaseURL()).
		Str("version", version).
		Msg("mcp: старт")

	switch cfg.MCP.Transport {
	case config.TransportHTTP:
		err = serveHTTP(ctx, logger, mcpServer, cfg.MCP.HTTPAddr)
	default:
		err = serveStdio(ctx, logger, mcpServer)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("mcp: сервер остановлен с ошибкой")
	}
	logger.Info().Msg("mcp: остановка")
}

func serveStdio(ctx context.Context, logger zerolog.Logger, mcpServer *server.MCPServer) error {
	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(stdlog.New(logger.With().Str("component", "stdio").Logger(), "", 0))
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, logger zerolog.Logger, mcpServer *server.MCPServer, addr string) error {
	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger(), server.NewStreamableHTTPServer(mcpServer))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
