package main

import (
	"fmt"

	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/spf13/cobra"
)

var (
	flagName     string
	flagEmail    string
	flagPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to CarePoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := app.auth.Login(cmd.Context(), domain.LoginInput{
			Email:    flagEmail,
			Password: flagPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Welcome back, %s!\n", session.UserName)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a CarePoint account",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := app.auth.Signup(cmd.Context(), domain.SignupInput{
			Name:     flagName,
			Email:    flagEmail,
			Password: flagPassword,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s! You are now logged in.\n", session.UserName)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := app.auth.CurrentSession()
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s <%s> (id %d)\n", session.UserName, session.Email, session.UserID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVarP(&flagName, "name", "n", "", "Display name")
	signupCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Account email")
	signupCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Account password")
	signupCmd.MarkFlagRequired("name")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}
