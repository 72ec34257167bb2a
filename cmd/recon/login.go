package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vrtravel/reconcli/internal/session"
)

func newLoginCmd() *cobra.Command {
	var (
		configPath string
		username   string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the reconstruction server",
		Long:  "Authenticates against the server and persists the session token locally. The password is prompted unless --password is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, configPath, username, password)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted if omitted)")
	cmd.MarkFlagRequired("username")
	return cmd
}

func runLogin(cmd *cobra.Command, configPath, username, password string) error {
	out := cmd.OutOrStdout()

	if password == "" {
		fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimSpace(string(raw))
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	a, err := buildApp(configPath, out)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.client.Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := session.Save(a.db, result.Token, result.User); err != nil {
		return err
	}

	fmt.Fprintf(out, "Logged in as %s\n", result.User.Username)
	return nil
}

func newLogoutCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.close()

			if err := session.Clear(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := buildApp(configPath, out)
			if err != nil {
				return err
			}
			defer a.close()

			sess, err := session.Load(a.db)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					fmt.Fprintln(out, "Not logged in")
					return nil
				}
				return err
			}

			// Prefer the server's view when reachable.
			if user, err := a.client.CurrentUser(cmd.Context()); err == nil {
				fmt.Fprintf(out, "%s (%s)\n", user.Username, user.Email)
				return nil
			}
			fmt.Fprintf(out, "%s (%s) [cached]\n", sess.User.Username, sess.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
