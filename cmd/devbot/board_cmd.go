package main

import (
	"github.com/spf13/cobra"

	"devbot/internal/apperr"
	"devbot/internal/config"
)

func newBoardCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show or refresh the task board",
	}
	cmd.AddCommand(newBoardShowCmd(cfg, jsonOutput), newBoardRefreshCmd(cfg))
	return cmd
}

func newBoardShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var guild string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board computed from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseGuild(guild)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, appOptions{}, func(app *application) error {
				board, err := app.engine.Board(cmd.Context(), guildID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(board)
				}
				return writeBoard(board)
			})
		},
	}
	addGuildFlag(cmd, &guild)
	return cmd
}

func newBoardRefreshCmd(cfg *config.Config) *cobra.Command {
	var guild string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-render the guild's board message through Discord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseGuild(guild)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, appOptions{discord: true}, func(app *application) error {
				guildCfg, err := app.backend.GetConfig(cmd.Context(), guildID)
				if err != nil {
					return err
				}
				if guildCfg.Board().IsZero() {
					return apperr.ConfigMissing(apperr.ErrCodeBoardMissing, "No task board configured. Run `/tasksboard` in a channel first.")
				}
				if err := app.engine.RefreshBoard(cmd.Context(), guildID); err != nil {
					return err
				}
				return writePlain("board refreshed for guild %s\n", guildID)
			})
		},
	}
	addGuildFlag(cmd, &guild)
	return cmd
}
