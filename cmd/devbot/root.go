package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devbot/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "devbot",
		Short:         "Devbot runs a Discord task board bot for development teams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRunCmd(cfg),
		newConfigCmd(cfg),
		newTokenCmd(),
		newTasksCmd(cfg, &jsonOutput),
		newBoardCmd(cfg, &jsonOutput),
		newGuildCmd(cfg, &jsonOutput),
		newRemoteCmd(cfg, &jsonOutput),
	)

	return cmd
}
