package service

import (
	"fmt"

	"github.com/zfogg/murmur/internal/cli/output"
)

type AdminService struct{}

// NewAdminService creates a new admin service
func NewAdminService() *AdminService {
	return &AdminService{}
}

func (s *AdminService) requireAdmin() error {
	_, creds, err := authedClient()
	if err != nil {
		return err
	}
	if !creds.IsAdmin {
		return fmt.Errorf("admin commands need an admin account")
	}
	return nil
}

// Stats prints site totals
func (s *AdminService) Stats() error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	stats, err := newClient().AdminStats()
	if err != nil {
		return explain(err)
	}
	return output.Record("Site", map[string]interface{}{
		"Users":        stats.TotalUsers,
		"Posts":        stats.TotalPosts,
		"Active today": stats.ActiveToday,
	})
}

// SetActive deactivates or reactivates a user
func (s *AdminService) SetActive(id string, active bool) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	flags, err := newClient().AdminSetActive(id, active)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(flags)
	}
	if flags.Active {
		output.Success("Reactivated %s", flags.ID)
	} else {
		output.Success("Deactivated %s", flags.ID)
	}
	return nil
}

// DeletePost removes any post
func (s *AdminService) DeletePost(id string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := newClient().AdminDeletePost(id); err != nil {
		return explain(err)
	}
	output.Success("Deleted %s", id)
	return nil
}
