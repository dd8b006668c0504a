package main

import (
	"errors"
	"fmt"
	"io"

	"taskboard/client"
	"taskboard/models"

	"github.com/spf13/cobra"
)

func boardCmd(a *app) *cobra.Command {
	var filter client.TaskFilter
	cmd := &cobra.Command{
		Use:               "board [projectId]",
		Short:             "Show a project's tasks as a kanban board",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: a.loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tasks.Fetch(cmd.Context(), args[0]); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), client.NewBoard(a.tasks).Columns(filter))
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func moveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move [projectId] [taskId] [status|taskId]",
		Short: "Drop a task onto a column or onto another task",
		Long: `Move a task on the board. The target is either a column
(pending, in-progress, completed) or another task, whose column is used.`,
		Args:              cobra.ExactArgs(3),
		PersistentPreRunE: a.loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tasks.Fetch(cmd.Context(), args[0]); err != nil {
				return err
			}
			board := client.NewBoard(a.tasks)
			moved, err := board.Drop(cmd.Context(), args[1], args[2])
			if err != nil {
				if errors.Is(a.tasks.Snapshot().Err, client.ErrStatusResync) {
					fmt.Fprintln(cmd.ErrOrStderr(), client.ErrStatusResync)
				}
				return err
			}
			if !moved {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to move")
				return nil
			}
			printBoard(cmd.OutOrStdout(), board.Columns(client.TaskFilter{}))
			return nil
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "stats",
		Short:             "Show dashboard statistics",
		PersistentPreRunE: a.loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Projects: %d\nTasks:    %d\n", stats.TotalProjects, stats.TotalTasks)
			for _, status := range models.Statuses {
				fmt.Fprintf(out, "  %-12s %d\n", status, stats.TasksByStatus[status])
			}
			return nil
		},
	}
}

func printBoard(out io.Writer, columns []client.Column) {
	for _, col := range columns {
		fmt.Fprintf(out, "== %s (%d)\n", col.Status, len(col.Tasks))
		for _, t := range col.Tasks {
			fmt.Fprintf(out, "   [%s] %s  %s  @%s\n", t.Priority, t.Name, t.ID.Hex(), assigneeName(t))
		}
	}
}
