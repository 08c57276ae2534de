package service

import (
	"fmt"

	"github.com/zfogg/murmur/internal/cli/output"
)

type ProfileService struct{}

// NewProfileService creates a new profile service
func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// Show prints a user's profile
func (s *ProfileService) Show(id string) error {
	profile, err := newClient().User(id)
	if err != nil {
		return err
	}
	return printProfile(profile)
}

// Update changes the fields of your own profile that were given
func (s *ProfileService) Update(fields map[string]string) error {
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update, pass at least one flag")
	}
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	profile, err := client.UpdateMe(fields)
	if err != nil {
		return explain(err)
	}
	output.Success("Profile updated")
	return printProfile(profile)
}

// Follow follows or unfollows a user
func (s *ProfileService) Follow(id string, undo bool) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}

	follow := client.Follow
	if undo {
		follow = client.Unfollow
	}
	result, err := follow(id)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(result)
	}
	output.Success("%s (you follow %d)", result.Status, result.FollowingCount)
	return nil
}
