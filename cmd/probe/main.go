package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"heroprobe/internal/config"
	"heroprobe/internal/probe"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "optional config file (yaml, toml or env); environment variables override it")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), config.Usage())
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %s\n", err)
		return 1
	}

	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %s\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := probe.NewApplication(cfg, logger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	err = app.Run(ctx)
	if err != nil && !errors.Is(err, probe.ErrInterrupted) {
		logger.Error("probe failed", zap.Error(err))
	}
	return exitCode(err, os.Stdout, os.Stderr)
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.LoadAppConfigFile(path)
	}
	return config.LoadAppConfig()
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// exitCode prints the final message for err and returns the process status.
func exitCode(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, probe.ErrInterrupted):
		fmt.Fprintln(stdout, "\nTest client stopped by user")
		return 0
	case errors.Is(err, probe.ErrConnectionRefused):
		fmt.Fprintln(stderr, "Error: Could not connect to the server. Make sure the server is running.")
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
}
