package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mugloar/tui/internal/app"
	"github.com/mugloar/tui/internal/client"
	"github.com/mugloar/tui/internal/config"
	"github.com/mugloar/tui/internal/logging"
	"github.com/mugloar/tui/internal/mock"
	"github.com/mugloar/tui/internal/schedule"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is main without the exit, so deferred cleanup runs on every path.
func run(args []string) error {
	fs := flag.NewFlagSet("mugloar-tui", flag.ContinueOnError)
	configPath := fs.String("config", "mugloar.yaml", "Path to config file")
	baseURL := fs.String("url", "", "Base URL of the Mugloar game server (overrides config)")
	token := fs.String("token", "", "Auth token (if the server requires it)")
	mockMode := fs.Bool("mock", false, "Run against an in-process mock game server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Server.Token = *token
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logger.Sync()

	if *mockMode {
		stop, url, err := startMock(cfg, logger.Named("mock"))
		if err != nil {
			logger.Error("mock server", zap.Error(err))
			return fmt.Errorf("start mock server: %w", err)
		}
		defer stop()
		cfg.Server.BaseURL = url
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", zap.Error(err))
		return fmt.Errorf("invalid config: %w", err)
	}
	logger.Info("starting", zap.String("base_url", cfg.HTTPBase()), zap.String("ws_url", cfg.WebSocketURL()))

	httpClient := client.NewHTTPClient(cfg.HTTPBase(), cfg.Server.Token, cfg.Client.HTTPTimeout, logger.Named("http"))
	channel := client.NewChannel(cfg.WebSocketURL(), cfg.Server.Token, client.ChannelOptions{
		HandshakeTimeout: cfg.Client.HandshakeTimeout,
		WriteTimeout:     cfg.Client.WriteTimeout,
	}, logger.Named("channel"))

	m := app.New(httpClient, channel, schedule.Real{}, cfg.History.PageSize, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		return err
	}
	return nil
}

// startMock serves the mock game server on a loopback port and returns its
// base URL.
func startMock(cfg *config.Config, log *zap.Logger) (func(), string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", err
	}

	srv := mock.NewServer(mock.Options{Interval: cfg.Mock.EventInterval, Log: log})
	hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("mock server", zap.Error(err))
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Close(); err != nil {
			log.Warn("close mock connections", zap.Error(err))
		}
		_ = hs.Shutdown(ctx)
	}
	log.Info("mock server listening", zap.String("addr", ln.Addr().String()))
	return stop, "http://" + ln.Addr().String(), nil
}
