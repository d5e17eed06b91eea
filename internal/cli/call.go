package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/celery-worker/internal/backend"
	"github.com/shaiso/celery-worker/internal/client"
)

// Caller отправляет задачи в брокер. Реализуется *client.Client.
type Caller interface {
	Send(ctx context.Context, task client.Task) (string, error)
	Call(ctx context.Context, task client.Task) (*backend.ResultMeta, error)
}

// CallerFunc лениво создаёт Caller после парсинга флагов.
// Возвращаемая функция освобождает соединение.
type CallerFunc func() (Caller, func(), error)

// NewCallCmd создаёт команду call.
func NewCallCmd(callerFn CallerFunc, outputFn func() *Output) *cobra.Command {
	var noWait bool
	var timeout time.Duration
	var taskID string

	cmd := &cobra.Command{
		Use:   "call TASK [ARG...]",
		Short: "Publish a task and wait for its result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			task := client.Task{
				ID:   taskID,
				Name: args[0],
				Args: ParseArgs(args[1:]),
			}

			caller, closeFn, err := callerFn()
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if noWait {
				id, err := caller.Send(ctx, task)
				if err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Task sent: %s", id))
				out.Print([]string{"TASK_ID", "TASK"}, [][]string{{id, task.Name}}, map[string]string{"task_id": id})
				return nil
			}

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			meta, err := caller.Call(ctx, task)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("no result within %s", timeout)
				}
				return err
			}

			out.Print(
				[]string{"TASK_ID", "STATUS", "RESULT"},
				[][]string{{meta.TaskID, string(meta.Status), string(meta.Result)}},
				meta,
			)
			return meta.Err()
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Publish without waiting for the result")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "How long to wait for the result")
	cmd.Flags().StringVar(&taskID, "id", "", "Task id (generated if empty)")

	return cmd
}

// ParseArgs разбирает аргументы командной строки: валидный JSON —
// как JSON, остальное — как строку.
func ParseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			v = s
		}
		args[i] = v
	}
	return args
}
