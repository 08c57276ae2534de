package main

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/service"
)

var (
	profileBio      string
	profileWebsite  string
	profileLocation string
	profilePrivacy  string
	unfollow        bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewProfileService().Show(args[0])
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	Example: `  murmur profile update --bio "gopher" --privacy followers_only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := map[string]string{}
		for flag, key := range map[string]string{
			"bio":      "bio",
			"website":  "website",
			"location": "location",
			"privacy":  "privacy",
		} {
			if cmd.Flags().Changed(flag) {
				value, _ := cmd.Flags().GetString(flag)
				fields[key] = value
			}
		}
		return service.NewProfileService().Update(fields)
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow a user (--undo to unfollow)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewProfileService().Follow(args[0], unfollow)
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileBio, "bio", "", "Bio, up to 160 characters")
	profileUpdateCmd.Flags().StringVar(&profileWebsite, "website", "", "Website starting with http:// or https://")
	profileUpdateCmd.Flags().StringVar(&profileLocation, "location", "", "Location")
	profileUpdateCmd.Flags().StringVar(&profilePrivacy, "privacy", "", "public, followers_only or private")
	followCmd.Flags().BoolVar(&unfollow, "undo", false, "Unfollow instead")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(followCmd)
}
