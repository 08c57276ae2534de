package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/config"
	"github.com/zfogg/murmur/internal/cli/logger"
	"github.com/zfogg/murmur/internal/cli/output"
)

const version = "0.1.0"

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "murmur",
	Short: "Murmur CLI - short posts from the terminal",
	Long: `Murmur CLI gives command-line access to a murmur server.
Log in, read your feed, post, follow people and manage notifications.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidFormat(outputFmt) {
				return fmt.Errorf("invalid output format %q (json, table or text)", outputFmt)
			}
			config.Set("output.format", outputFmt)
		}
		if apiURL != "" {
			config.Set("api.base_url", apiURL)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Murmur CLI v" + version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/murmur/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API server URL (overrides api.base_url)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}
