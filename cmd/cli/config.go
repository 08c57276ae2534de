package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/config"
	"github.com/zfogg/murmur/internal/cli/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write CLI settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting, e.g. api.base_url",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetString(args[0]))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(args[0], args[1]); err != nil {
			return err
		}
		output.Success("%s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
