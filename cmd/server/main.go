package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"safetasks/internal/config"
	"safetasks/internal/serverapp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "safetasks:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "safetasks_config.yml", "path to the YAML config file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := serverapp.New(ctx, serverapp.Options{
		Config:        cfg,
		UseDiskStatic: serverapp.UseDiskStaticByEnv(),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	logger.Info("starting", "storage", cfg.Storage.Driver, "data_dir", cfg.Storage.DataDir)
	return app.Run(ctx)
}
