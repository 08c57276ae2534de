package main

import (
	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/service"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Register()
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with your username or email",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Login()
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Logout()
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Me()
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().Refresh()
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService().ChangePassword()
	},
}

func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(meCmd)
	authCmd.AddCommand(refreshCmd)
	authCmd.AddCommand(changePasswordCmd)
}
