package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func registerCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register [name] [email]",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Register(cmd.Context(), args[0], args[1], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", a.auth.User().Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", a.auth.User().Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			u := a.auth.User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", u.Name, u.Email, u.ID.Hex())
			return nil
		},
	}
}
