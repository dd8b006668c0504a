package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"taskboard/models"

	"github.com/spf13/cobra"
)

func projectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "projects",
		Aliases:           []string{"project", "p"},
		Short:             "Manage projects and collaborators",
		PersistentPreRunE: a.loggedIn,
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects you own or collaborate on",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.projects.Fetch(cmd.Context()); err != nil {
				return err
			}
			printProjects(cmd.OutOrStdout(), a.projects.Search(search))
			return nil
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")

	var description string
	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.projects.Create(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, p.ID.Hex())
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "project description")

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a project with its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.projects.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProject(cmd.OutOrStdout(), p)
			return nil
		},
	}

	var newName, newDescription string
	update := &cobra.Command{
		Use:   "update [id]",
		Short: "Rename a project or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.ProjectPatch
			if cmd.Flags().Changed("name") {
				patch.Name = models.Some(newName)
			}
			if cmd.Flags().Changed("description") {
				patch.Description = models.Some(newDescription)
			}
			p, err := a.projects.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			printProject(cmd.OutOrStdout(), p)
			return nil
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new name")
	update.Flags().StringVar(&newDescription, "description", "", "new description, empty to clear")

	del := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a project and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.projects.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project deleted")
			return nil
		},
	}

	invite := &cobra.Command{
		Use:   "invite [id] [email]",
		Short: "Add a collaborator by email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.projects.AddCollaborator(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove [id] [userId]",
		Short: "Remove a collaborator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.projects.RemoveCollaborator(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Collaborator removed")
			return nil
		},
	}

	cmd.AddCommand(list, create, show, update, del, invite, remove)
	return cmd
}

func printProjects(out io.Writer, projects []models.ProjectView) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tCOLLABORATORS\tTASKS")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", p.ID.Hex(), p.Name, p.Owner.Name, len(p.Collaborators), len(p.Tasks))
	}
	_ = w.Flush()
}

func printProject(out io.Writer, p *models.ProjectView) {
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.ID.Hex())
	if p.Description != "" {
		fmt.Fprintf(out, "  %s\n", p.Description)
	}
	fmt.Fprintf(out, "Owner: %s <%s>\n", p.Owner.Name, p.Owner.Email)
	if len(p.Collaborators) == 0 {
		fmt.Fprintln(out, "Collaborators: none")
		return
	}
	names := make([]string, 0, len(p.Collaborators))
	for _, c := range p.Collaborators {
		names = append(names, fmt.Sprintf("%s <%s> (%s)", c.Name, c.Email, c.ID.Hex()))
	}
	fmt.Fprintf(out, "Collaborators:\n  %s\n", strings.Join(names, "\n  "))
}
