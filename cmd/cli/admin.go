package main

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/service"
)

var reactivate bool

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation commands (admin accounts only)",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show site totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAdminService().Stats()
	},
}

var adminDeactivateCmd = &cobra.Command{
	Use:   "deactivate <user-id>",
	Short: "Deactivate a user (--undo to reactivate)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAdminService().SetActive(args[0], reactivate)
	},
}

var adminDeletePostCmd = &cobra.Command{
	Use:   "delete-post <post-id>",
	Short: "Delete any post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAdminService().DeletePost(args[0])
	},
}

func init() {
	adminDeactivateCmd.Flags().BoolVar(&reactivate, "undo", false, "Reactivate instead")

	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminDeactivateCmd)
	adminCmd.AddCommand(adminDeletePostCmd)
}
