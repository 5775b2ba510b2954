package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/pkg/config"
	"github.com/tathya/tathya-cli/pkg/output"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage CLI settings",
	Long:  "Show and change the CLI configuration",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Default().Record("Settings", map[string]interface{}{
			"api.base_url":     config.GetString("api.base_url"),
			"api.timeout":      config.GetInt("api.timeout"),
			"api.media_url":    config.MediaBaseURL(),
			"feed.page_size":   config.PageSize(),
			"realtime.enabled": config.GetBool("realtime.enabled"),
			"realtime.url":     config.GetString("realtime.url"),
			"output.format":    config.GetString("output.format"),
			"log.level":        config.GetString("log.level"),
			"config_file":      config.GetConfigFilePath(),
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set and save a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return err
		}
		output.Default().Success("✓ %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
