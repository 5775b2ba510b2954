package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tathya/tathya-cli/pkg/config"
	cliErrors "github.com/tathya/tathya-cli/pkg/errors"
	"github.com/tathya/tathya-cli/pkg/logger"
	"github.com/tathya/tathya-cli/pkg/output"
	"github.com/tathya/tathya-cli/pkg/service"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "tathya",
	Short: "TATHYA CLI - Campus social feed",
	Long: `TATHYA CLI is a command-line client for the TATHYA campus social
feed. Read recent and community posts, like and comment, and manage
your posts directly from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("error initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return cliErrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Set("output.format", outputFmt)
		}
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprint(os.Stderr, cliErrors.FormatError(err))
		os.Exit(1)
	}
}

// newApp builds the client stack for one command run
func newApp() (*service.App, error) {
	return service.FromConfig()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/tathya/cli/config.toml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "output", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}
