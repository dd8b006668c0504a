package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"taskboard/client"
	"taskboard/models"

	"github.com/spf13/cobra"
)

func addFilterFlags(cmd *cobra.Command, f *client.TaskFilter) {
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "match name or description")
	cmd.Flags().StringVar((*string)(&f.Priority), "priority", "", "only tasks with this priority (low, medium, high)")
	cmd.Flags().StringVar(&f.AssignedTo, "assignee", "", "only tasks assigned to this user id, or \"none\"")
}

func tasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "tasks",
		Aliases:           []string{"task", "t"},
		Short:             "Manage the tasks of a project",
		PersistentPreRunE: a.loggedIn,
	}

	var filter client.TaskFilter
	list := &cobra.Command{
		Use:   "list [projectId]",
		Short: "List the tasks of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tasks.Fetch(cmd.Context(), args[0]); err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), a.tasks.Filter(filter))
			return nil
		},
	}
	addFilterFlags(list, &filter)

	var input models.TaskInput
	var priority string
	add := &cobra.Command{
		Use:   "add [projectId] [name]",
		Short: "Create a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.ProjectID = args[0]
			input.Name = args[1]
			input.Priority = models.TaskPriority(priority)
			task, err := a.tasks.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", task.Name, task.ID.Hex())
			return nil
		},
	}
	add.Flags().StringVarP(&input.Description, "description", "d", "", "task description")
	add.Flags().StringVar(&priority, "priority", "", "low, medium or high (default medium)")
	add.Flags().StringVar(&input.AssignedTo, "assign", "", "user id of a project member")

	var name, description, status, prio, assign string
	var unassign bool
	update := &cobra.Command{
		Use:   "update [taskId]",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = models.Some(name)
			}
			if flags.Changed("description") {
				patch.Description = models.Some(description)
			}
			if flags.Changed("status") {
				patch.Status = models.Some(models.TaskStatus(status))
			}
			if flags.Changed("priority") {
				patch.Priority = models.Some(models.TaskPriority(prio))
			}
			if flags.Changed("assign") {
				patch.AssignedTo = models.Some(assign)
			}
			if unassign {
				patch.AssignedTo = models.Null[string]()
			}
			task, err := a.tasks.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), []models.TaskView{*task})
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "new name")
	update.Flags().StringVar(&description, "description", "", "new description, empty to clear")
	update.Flags().StringVar(&status, "status", "", "pending, in-progress or completed")
	update.Flags().StringVar(&prio, "priority", "", "low, medium or high")
	update.Flags().StringVar(&assign, "assign", "", "user id of a project member")
	update.Flags().BoolVar(&unassign, "unassign", false, "remove the assignee")
	update.MarkFlagsMutuallyExclusive("assign", "unassign")

	del := &cobra.Command{
		Use:   "delete [taskId]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}

func printTasks(out io.Writer, tasks []models.TaskView) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPRIORITY\tASSIGNEE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID.Hex(), t.Name, t.Status, t.Priority, assigneeName(t))
	}
	_ = w.Flush()
}

func assigneeName(t models.TaskView) string {
	if t.AssignedTo == nil {
		return "-"
	}
	return t.AssignedTo.Name
}
