package main

import (
	"github.com/spf13/cobra"

	"devbot/internal/api"
	"devbot/internal/config"
)

func newRemoteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query a running devbot through its status API",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", "http://"+cfg.HTTP.Addr, "status API base URL")

	client := func() *api.Client { return api.NewClient(baseURL) }

	var guild, status, assignee string
	tasks := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks of a guild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().ListTasks(cmd.Context(), guild, status, assignee)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(resp)
			}
			return writeRemoteTaskList(resp.Tasks)
		},
	}
	addGuildFlag(tasks, &guild)
	tasks.Flags().StringVar(&status, "status", "", "filter by status")
	tasks.Flags().StringVar(&assignee, "assignee", "", "filter by assignee id or mention")

	var showGuild string
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			resp, err := client().GetTask(cmd.Context(), showGuild, id)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(resp)
			}
			return writeRemoteTaskList([]api.TaskResponse{resp})
		},
	}
	addGuildFlag(show, &showGuild)

	var boardGuild string
	board := &cobra.Command{
		Use:   "board",
		Short: "Show the board of a guild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().Board(cmd.Context(), boardGuild)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(resp)
			}
			if err := writeRemoteTaskList(resp.Active); err != nil {
				return err
			}
			return writePlain("open/in progress: %d | completed: %d\n", resp.ActiveTotal, resp.CompletedTotal)
		},
	}
	addGuildFlag(board, &boardGuild)

	cmd.AddCommand(tasks, show, board)
	return cmd
}
