package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/app"
	"github.com/nidrosoft/rizzer-sub001/internal/config"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
	"github.com/nidrosoft/rizzer-sub001/internal/queue"
	"github.com/nidrosoft/rizzer-sub001/internal/workers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dlqGCInterval  = time.Hour
	dlqGCRetention = 24 * time.Hour
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for prompt and response logging")
	noSweep := flag.Bool("no-sweep", false, "Consume jobs only, without scheduling sweeps or collecting dead letters")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("worker", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_required")
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.Duration("sweep_interval", cfg.SweepInterval),
		zap.Bool("sweep_enabled", !*noSweep),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_app", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	processor := workers.NewJobProcessor(a.Generator, a.Batch, zapLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Consume(gctx, msgChan)
		// a closed delivery channel means the broker went away
		stop()
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case err, ok := <-errChan:
				if !ok {
					return nil
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	})
	if !*noSweep {
		scheduler := workers.NewSweepScheduler(jobQueue, cfg.SweepInterval, zapLogger)
		g.Go(func() error { return ignoreCanceled(scheduler.Start(gctx)) })

		gc := queue.NewGarbageCollector(jobQueue, dlqGCInterval, dlqGCRetention, zapLogger)
		g.Go(func() error { return ignoreCanceled(gc.Start(gctx)) })
	}

	zapLogger.Info("worker_started")

	if err := g.Wait(); err != nil {
		zapLogger.Error("worker_failed", zap.Error(err))
	}
	zapLogger.Info("worker_stopped")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
