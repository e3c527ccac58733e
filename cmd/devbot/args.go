package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"devbot/internal/models"
)

func addGuildFlag(cmd *cobra.Command, guild *string) {
	cmd.Flags().StringVar(guild, "guild", "", "Discord guild (server) id")
	_ = cmd.MarkFlagRequired("guild")
}

func parseGuild(raw string) (models.Snowflake, error) {
	id, err := models.ParseSnowflake(raw)
	if err != nil {
		return 0, fmt.Errorf("--guild: %w", err)
	}
	return id, nil
}

func parseTaskID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
