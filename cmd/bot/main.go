package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rmansurov/infinity-bot/internal/bot"
	"github.com/rmansurov/infinity-bot/internal/config"
	"github.com/rmansurov/infinity-bot/internal/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting infinity bot",
		zap.String("chain_id", cfg.ChainID),
		zap.String("pool_contract", cfg.PoolContract))

	runner, err := bot.NewRunner(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize bot", zap.Error(err))
	}

	if err := runner.Run(context.Background()); err != nil {
		log.Fatal("bot execution error", zap.Error(err))
	}
}
