package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"taskboard/client"

	"github.com/spf13/cobra"
)

var Version = "dev"

// app holds the client state shared by every command.
type app struct {
	apiURL    string
	tokenFile string

	api      *client.APIClient
	auth     *client.AuthStore
	projects *client.ProjectStore
	tasks    *client.TaskStore
}

func main() {
	if err := newRootCmd(&app{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - command line client for the taskboard API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setup()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", getEnv("TASKBOARD_API", "http://localhost:4000"), "taskboard API base URL")
	rootCmd.PersistentFlags().StringVar(&a.tokenFile, "token-file", defaultTokenFile(), "where the session token is kept")

	rootCmd.AddCommand(registerCmd(a))
	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(whoamiCmd(a))
	rootCmd.AddCommand(projectsCmd(a))
	rootCmd.AddCommand(tasksCmd(a))
	rootCmd.AddCommand(boardCmd(a))
	rootCmd.AddCommand(moveCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	return rootCmd
}

func (a *app) setup() {
	a.api = client.NewAPIClient(a.apiURL)
	a.auth = client.NewAuthStore(a.api, client.FileTokenStore{Path: a.tokenFile})
	a.projects = client.NewProjectStore(a.api)
	a.tasks = client.NewTaskStore(a.api)
}

// loggedIn is the pre-run hook of commands that need a session. Cobra only
// runs the nearest persistent hook, so it repeats the root setup.
func (a *app) loggedIn(cmd *cobra.Command, args []string) error {
	a.setup()
	return a.requireLogin(cmd.Context())
}

// requireLogin restores the saved session or fails with a hint.
func (a *app) requireLogin(ctx context.Context) error {
	if err := a.auth.Restore(ctx, ""); err != nil {
		return fmt.Errorf("session expired, run `taskctl login`: %w", err)
	}
	if !a.auth.IsAuthenticated() {
		return fmt.Errorf("not logged in, run `taskctl login` first")
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskboard-token"
	}
	return filepath.Join(home, ".taskboard", "token")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
