package service

import (
	"github.com/zfogg/murmur/internal/cli/output"
)

type NotificationService struct{}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// List prints one page of notifications, newest first
func (s *NotificationService) List(page, pageSize int) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	list, err := client.Notifications(page, pageSize)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(list)
	}
	if len(list.Notifications) == 0 {
		output.Info("No notifications")
		return nil
	}

	rows := make([][]string, 0, len(list.Notifications))
	for _, n := range list.Notifications {
		read := "*"
		if n.IsRead {
			read = ""
		}
		actor := n.Actor
		if n.ActorProfile != nil {
			actor = "@" + n.ActorProfile.Username
		}
		rows = append(rows, []string{read, n.Type, actor, oneLine(n.Message, 50), humanTime(n.CreatedAt)})
	}
	output.Table([]string{"", "TYPE", "FROM", "MESSAGE", "WHEN"}, rows)
	return nil
}

// Unread prints the unread count
func (s *NotificationService) Unread() error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	count, err := client.UnreadCount()
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(map[string]int64{"unread_count": count})
	}
	output.Info("%d unread", count)
	return nil
}

// MarkAllRead marks every notification read
func (s *NotificationService) MarkAllRead() error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.MarkAllRead(); err != nil {
		return explain(err)
	}
	output.Success("All notifications marked read")
	return nil
}
