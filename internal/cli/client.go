package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seantiz/tasksolver/internal/client"
	"github.com/seantiz/tasksolver/internal/config"
	"github.com/seantiz/tasksolver/internal/model"
)

var createTaskCmd = &cobra.Command{
	Use:   "create-task",
	Short: "Submit a script or binary to a running server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		taskType, _ := cmd.Flags().GetString("type")
		file, _ := cmd.Flags().GetString("file")
		args, _ := cmd.Flags().GetString("args")

		kind, err := model.ParseKind(taskType)
		if err != nil {
			return err
		}
		id, err := newClient().CreateTaskFromFile(cmd.Context(), kind, file, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var getStatusCmd = &cobra.Command{
	Use:   "get-status",
	Short: "Print the status document of a task",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetString("id")
		st, err := newClient().Status(cmd.Context(), id)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var getTaskCountCmd = &cobra.Command{
	Use:   "get-task-count",
	Short: "Print the number of tasks waiting in the server's queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := newClient().TaskCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	createTaskCmd.Flags().StringP("type", "t", "", "task type: python | bin")
	createTaskCmd.Flags().StringP("file", "f", "", "path of the script or executable")
	createTaskCmd.Flags().String("args", "", "argument passed to the task")
	_ = createTaskCmd.MarkFlagRequired("type")
	_ = createTaskCmd.MarkFlagRequired("file")

	getStatusCmd.Flags().StringP("id", "i", "", "task id")
	_ = getStatusCmd.MarkFlagRequired("id")
}

func newClient() *client.Client {
	addr := net.JoinHostPort(viper.GetString(config.KeyAddress), strconv.Itoa(viper.GetInt(config.KeyPort)))
	return client.New("http://" + addr)
}
