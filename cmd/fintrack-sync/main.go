package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Mirror configuration invalid", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting fintrack-sync")

	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid source backend", applog.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)

	source, err := factory.CreateBackend(context.Background(), sourceCfg)
	if err != nil {
		logger.Error("Failed to initialize source backend", applog.FieldError, err, applog.FieldBackend, sourceCfg.Type)
		os.Exit(1)
	}
	defer source.Close()

	target, err := factory.CreateBackend(context.Background(), sourceCfg.WithType(backend.SheetsBackend))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	defer target.Close()

	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		consumer = amqpClient
	} else {
		logger.Info("AMQP disabled, mirroring on interval only", "interval", cfg.SyncInterval)
	}

	mirror := worker.NewMirrorWorker(source.Persister, target.Persister, logger)

	done := make(chan error, 1)
	ctx, stopped := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		<-done
	})

	go func() {
		err := mirror.Run(ctx, consumer, cfg.SyncInterval)
		done <- err
		close(done)
	}()

	// Run only returns early on a consumer failure; shutdown waits for it otherwise.
	select {
	case err := <-done:
		if err != nil {
			logger.Error("Mirror worker stopped", applog.FieldError, err)
			os.Exit(1)
		}
	case <-stopped:
	}
	logger.Info("Worker shutdown complete")
}
