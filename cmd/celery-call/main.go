// Celery Call — отправляет задачи воркеру и показывает результаты.
//
// Использование:
//
//	celery-call [--broker URL] [--queue celery] [--json] call TASK [ARG...]
//	celery-call [--worker-url URL] [--json] tasks
//	celery-call [--worker-url URL] [--json] result TASK_ID
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/celery-worker/internal/cli"
	"github.com/shaiso/celery-worker/internal/client"
	"github.com/shaiso/celery-worker/internal/config"
	"github.com/shaiso/celery-worker/internal/mq"
	"github.com/shaiso/celery-worker/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var workerURL string
	var jsonOutput bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "celery-call",
		Short:         "Send tasks to a celery worker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.BrokerURL, "broker", cfg.BrokerURL, "Broker URL")
	flags.StringVarP(&cfg.Queue, "queue", "Q", cfg.Queue, "Task queue")
	flags.StringVar(&cfg.ResultExchange, "result-exchange", cfg.ResultExchange, "Result exchange of the worker (default exchange if empty)")
	flags.StringVar(&workerURL, "worker-url", "http://localhost:8082", "Worker HTTP URL")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log broker activity to stderr")

	callerFn := func() (cli.Caller, func(), error) {
		if err := config.Validate(cfg); err != nil {
			return nil, nil, err
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if verbose {
			logger = telemetry.NewLogger(os.Stderr, slog.LevelDebug, "text")
		}

		conn, err := mq.NewConnection(cfg.BrokerURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to broker: %w", err)
		}
		return client.New(conn, cfg.Queue, cfg.ResultExchange, logger), func() { conn.Close() }, nil
	}
	clientFn := func() *cli.Client { return cli.NewClient(workerURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewCallCmd(callerFn, outputFn),
		cli.NewTasksCmd(clientFn, outputFn),
		cli.NewResultCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
