package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wichananm65/laundry-pos/internal/apiclient"
	"github.com/wichananm65/laundry-pos/internal/cart"
	"github.com/wichananm65/laundry-pos/internal/checkout"
	"github.com/wichananm65/laundry-pos/internal/config"
	"github.com/wichananm65/laundry-pos/internal/connectivity"
	"github.com/wichananm65/laundry-pos/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, cfgErr := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("using defaults for invalid settings", zap.Error(cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.NewClient(cfg.APIBaseURL, nil, logger)
	store := cart.NewStore()
	submitter := checkout.NewSubmitter(store, client, logger)

	con := newConsole(client, store, submitter, nil, os.Stdout, logger)
	con.monitor = connectivity.NewMonitor(connectivity.ClientProber(client), connectivity.Options{
		Interval: cfg.PollInterval,
		Timeout:  cfg.ProbeTimeout,
		OnChange: con.onState,
		Logger:   logger,
	})
	unsubscribe := store.Subscribe(con.onPreview)
	defer unsubscribe()

	con.monitor.Start(ctx)
	defer con.monitor.Stop()

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	con.loadServices(loadCtx)
	cancel()
	con.showServices()

	done := make(chan error, 1)
	go func() { done <- con.run(ctx, os.Stdin) }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("console stopped", zap.Error(err))
		}
	case <-ctx.Done():
	}
}
