package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/app"
	"github.com/Sakethsreeram7/food-tracker/internal/config"
	"github.com/Sakethsreeram7/food-tracker/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("init failed", zap.Error(err))
	}

	if err := a.Run(context.Background()); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}
