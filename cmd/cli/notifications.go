package main

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/service"
)

var (
	notificationsPage     int
	notificationsPageSize int
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().List(notificationsPage, notificationsPageSize)
	},
}

var notificationsUnreadCmd = &cobra.Command{
	Use:   "unread",
	Short: "Show the unread count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().Unread()
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification read",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewNotificationService().MarkAllRead()
	},
}

func init() {
	notificationsCmd.Flags().IntVar(&notificationsPage, "page", 1, "Page number")
	notificationsCmd.Flags().IntVar(&notificationsPageSize, "page-size", 20, "Notifications per page")

	notificationsCmd.AddCommand(notificationsUnreadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
}
