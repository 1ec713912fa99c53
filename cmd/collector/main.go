package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quotecollector/config"
	"quotecollector/internal/collector"
	"quotecollector/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// viper config
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.Version {
		fmt.Printf("%s %s\n", config.AppName, version)
		return
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run collector until a single cycle completes or a signal arrives
	if err := collector.StartCollector(ctx, cfg, log); err != nil {
		log.Fatal("collector failed", zap.Error(err))
	}
}
