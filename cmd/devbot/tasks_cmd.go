package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devbot/internal/apperr"
	"devbot/internal/config"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
	"devbot/internal/taskfile"
)

func newTasksCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and import tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(cfg, jsonOutput),
		newTasksShowCmd(cfg, jsonOutput),
		newTasksImportCmd(cfg, jsonOutput),
	)
	return cmd
}

func newTasksListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var guild, status, assignee string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a guild's tasks from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseGuild(guild)
			if err != nil {
				return err
			}
			filter, err := buildFilter(status, assignee)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, appOptions{}, func(app *application) error {
				tasks, err := app.engine.List(cmd.Context(), guildID, filter)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(tasks)
				}
				return writeTaskList(tasks)
			})
		},
	}

	addGuildFlag(cmd, &guild)
	cmd.Flags().StringVar(&status, "status", "", "filter by status (Open, In Progress, Completed)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "filter by assignee id or mention")
	return cmd
}

func newTasksShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var guild string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseGuild(guild)
			if err != nil {
				return err
			}
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, appOptions{}, func(app *application) error {
				task, err := app.engine.Get(cmd.Context(), guildID, taskID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writeTaskDetail(task)
			})
		},
	}

	addGuildFlag(cmd, &guild)
	return cmd
}

type importResult struct {
	Line     int    `json:"line"`
	TaskID   int    `json:"task_id,omitempty"`
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
	Error    string `json:"error,omitempty"`
}

func newTasksImportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		guild   string
		creator string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.md>",
		Short: "Create a task for each list item of a markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseGuild(guild)
			if err != nil {
				return err
			}
			creatorID, err := models.ParseUserReference(creator)
			if err != nil {
				return fmt.Errorf("--creator: %w", err)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			file, err := taskfile.Parse(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if len(file.Items) == 0 {
				return fmt.Errorf("%s: no list items found", args[0])
			}

			if dryRun {
				results := make([]importResult, 0, len(file.Items))
				for _, item := range file.Items {
					results = append(results, importResult{Line: item.Line, Title: item.Draft.Title, Assignee: item.AssigneeID.String()})
				}
				return writeImportResults(results, *jsonOutput, true)
			}

			// The operator acts as an administrator on behalf of creator.
			actor := models.Actor{UserID: creatorID, Admin: true}
			return withApp(cmd.Context(), cfg, appOptions{discord: true}, func(app *application) error {
				results, failed := importItems(cmd.Context(), app.engine, actor, guildID, file.Items)
				if err := writeImportResults(results, *jsonOutput, false); err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d tasks failed to import", failed, len(results))
				}
				return nil
			})
		},
	}

	addGuildFlag(cmd, &guild)
	cmd.Flags().StringVar(&creator, "creator", "", "user id recorded as the creator")
	_ = cmd.MarkFlagRequired("creator")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print without creating tasks")
	return cmd
}

// importItems creates tasks in file order. A configuration failure on create
// aborts the remaining items.
func importItems(ctx context.Context, engine *lifecycle.Engine, actor models.Actor, guildID models.Snowflake, items []taskfile.Item) ([]importResult, int) {
	results := make([]importResult, 0, len(items))
	failed := 0
	for _, item := range items {
		result := importResult{Line: item.Line, Title: item.Draft.Title}
		task, err := engine.Create(ctx, actor, guildID, item.Draft)
		result.TaskID = task.ID
		if err == nil && !item.AssigneeID.IsZero() {
			task, err = engine.Assign(ctx, actor, guildID, task.ID, item.AssigneeID)
			if err == nil {
				result.Assignee = task.AssigneeID.String()
			}
		}
		if err != nil {
			failed++
			result.Error = apperr.UserMessage(err)
			results = append(results, result)
			if result.TaskID == 0 && apperr.Is(err, apperr.KindConfigurationMissing) {
				break
			}
			continue
		}
		results = append(results, result)
	}
	return results, failed
}

func buildFilter(status, assignee string) (lifecycle.Filter, error) {
	var filter lifecycle.Filter
	if status != "" {
		parsed, err := models.ParseTaskStatus(status)
		if err != nil {
			return filter, fmt.Errorf("--status: %w", err)
		}
		filter.Status = parsed
	}
	if assignee != "" {
		parsed, err := models.ParseUserReference(assignee)
		if err != nil {
			return filter, fmt.Errorf("--assignee: %w", err)
		}
		filter.AssigneeID = parsed
	}
	return filter, nil
}
