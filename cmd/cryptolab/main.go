// Command cryptolab serves the curve, Elgamal and RSA API over HTTP.
//
// # Usage
//
//	go run ./cmd/cryptolab
//	go run ./cmd/cryptolab --config=cryptolab.yaml
//	go run ./cmd/cryptolab --addr=:8080 --log-level=debug
//
// See package internal/config for the YAML layout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/smallyu/go-cryptolab/internal/api"
	"github.com/smallyu/go-cryptolab/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP listen address")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error")
	)
	flag.Parse()

	cfg, err := loadConfiguration(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *addr, *logLevel)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfiguration(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.Default(), nil
}

func applyFlagOverrides(cfg *config.Config, addr, logLevel string) {
	if addr != "" {
		cfg.Server.ListenAddr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
}

func run(cfg *config.Config) error {
	log, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	svc, err := api.NewService(cfg, nil)
	if err != nil {
		return err
	}
	srv := api.NewServer(&api.ServerConfig{
		ListenAddr:   cfg.Server.ListenAddr,
		Log:          log,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, api.NewHandler(svc, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
