package main

import (
	"github.com/spf13/cobra"

	"devbot/internal/config"
	"devbot/internal/settings"
)

func newGuildCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guild",
		Short: "Inspect stored guild settings",
	}

	var guild string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored configuration of a guild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseGuild(guild)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, appOptions{}, func(app *application) error {
				guildCfg, err := app.backend.GetConfig(cmd.Context(), guildID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(guildCfg)
				}
				return writePlain("%s\n", settings.Describe(guildCfg))
			})
		},
	}
	addGuildFlag(show, &guild)
	cmd.AddCommand(show)
	return cmd
}
