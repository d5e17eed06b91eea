package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewTasksCmd создаёт команду tasks.
func NewTasksCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks registered in the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := clientFn().ListTasks()
			if err != nil {
				return err
			}

			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{t.Key, strings.Join(t.Operations, ", ")}
			}

			outputFn().Print([]string{"KEY", "OPERATIONS"}, rows, tasks)
			return nil
		},
	}
}

// NewResultCmd создаёт команду result.
func NewResultCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "result TASK_ID",
		Short: "Show a stored task result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := clientFn().GetResult(args[0])
			if err != nil {
				return err
			}

			outputFn().Print(
				[]string{"TASK_ID", "STATUS", "RESULT", "DONE"},
				[][]string{{r.TaskID, r.Status, string(r.Result), r.DateDone}},
				r,
			)
			return nil
		},
	}
}
