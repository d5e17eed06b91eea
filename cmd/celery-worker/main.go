// Celery Worker — выполняет задачи celery из очереди RabbitMQ.
//
// Worker:
//   - Получает сообщения протокола 2 из очереди (default: celery)
//   - Находит операцию по имени key#operation и вызывает её
//   - Отправляет результат через backend (rpc, postgres или none)
//   - Подтверждает или отклоняет сообщение по исходу
//
// Конфигурация берётся из окружения (CELERY_*), флаги её переопределяют.
//
// Использование:
//
//	celery-worker [--queue celery] [--concurrency 2] [--backend rpc]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/celery-worker/internal/api"
	"github.com/shaiso/celery-worker/internal/backend"
	"github.com/shaiso/celery-worker/internal/config"
	"github.com/shaiso/celery-worker/internal/mq"
	"github.com/shaiso/celery-worker/internal/registry"
	"github.com/shaiso/celery-worker/internal/tasks"
	"github.com/shaiso/celery-worker/internal/telemetry"
	"github.com/shaiso/celery-worker/internal/worker"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "celery-worker",
		Short:         "Celery-compatible task worker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&cfg.BrokerURL, "broker", cfg.BrokerURL, "Broker URL")
	flags.StringVarP(&cfg.Queue, "queue", "Q", cfg.Queue, "Task queue")
	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "Number of slots")
	flags.IntVar(&cfg.Prefetch, "prefetch", cfg.Prefetch, "Prefetch per slot")
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "Result backend: rpc, postgres or none")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "HTTP port for /healthz, /metrics and /tasks")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cfg config.Worker) error {
	logger := telemetry.SetupLogger()
	logger.Info("starting celery-worker", "version", version)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RabbitMQ
	conn, err := mq.NewConnection(cfg.BrokerURL, logger)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer conn.Close()

	topology := mq.Topology{Queue: cfg.Queue, ResultExchange: cfg.ResultExchange}
	if err := mq.SetupTopology(ctx, conn, topology); err != nil {
		return fmt.Errorf("setup topology: %w", err)
	}
	logger.Info("RabbitMQ connected", "topology", mq.TopologyInfo(topology))

	// Backend
	results, err := backend.New(ctx, backend.Options{
		Kind:      cfg.Backend,
		Publisher: mq.NewPublisher(conn, logger),
		Exchange:  cfg.ResultExchange,
		DSN:       cfg.DatabaseURL,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	logger.Info("result backend ready", "backend", cfg.Backend)

	// Задачи
	reg := registry.New()
	if err := tasks.Register(reg); err != nil {
		return fmt.Errorf("register tasks: %w", err)
	}

	w, err := worker.New(worker.Config{
		Conn:        conn,
		Queue:       cfg.Queue,
		Concurrency: cfg.Concurrency,
		Prefetch:    cfg.Prefetch,
		Registry:    reg,
		Backend:     results,
		Logger:      logger,
	})
	if err != nil {
		results.Close()
		return err
	}

	if err := w.Start(ctx); err != nil {
		results.Close()
		return fmt.Errorf("start worker: %w", err)
	}
	defer w.Stop()

	// HTTP: /healthz, /metrics, /tasks, /results/{taskID}
	handlerCfg := api.Config{
		Registry: reg,
		Healthy:  conn.IsConnected,
		Logger:   logger,
	}
	if store, ok := results.(api.ResultStore); ok {
		handlerCfg.Results = store
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           api.NewHandler(handlerCfg).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", "error", err)
	}

	w.Stop()
	logger.Info("celery-worker stopped")
	return nil
}
