package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage questionnaire projects",
	Long:  `Create, inspect, list, and rename questionnaire projects.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project",
	Long: `Create a project and select it for later commands.

Scope controls which documents the answers draw on:
  ALL_DOCS      - every indexed document (default)
  SELECTED_DOCS - only documents indexed with the selected scope`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectCreate,
}

var projectInfoCmd = &cobra.Command{
	Use:   "info [project-id]",
	Short: "Show project details",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectInfo,
}

var projectStatusCmd = &cobra.Command{
	Use:   "status [project-id]",
	Short: "Show project status",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectStatus,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update [project-id]",
	Short: "Rename a project",
	Long:  `Rename a project. The backend marks the project OUTDATED until its answers are regenerated.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectUpdate,
}

var (
	projectScope   string
	projectNewName string
)

func init() {
	projectCreateCmd.Flags().StringVar(&projectScope, "scope", string(domain.ScopeAllDocs), "Document scope (ALL_DOCS or SELECTED_DOCS)")
	projectUpdateCmd.Flags().StringVar(&projectNewName, "name", "", "New project name")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectInfoCmd)
	projectCmd.AddCommand(projectStatusCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	in := domain.CreateProjectInput{
		Name:  args[0],
		Scope: domain.DocumentScope(strings.ToUpper(projectScope)),
	}
	status, err := projectService.Create(commandContext(cmd), in)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	cmd.Printf("Project created: %s\n", status.ProjectID)
	cmd.Printf("  Status: %s\n", status.Status)
	return nil
}

func runProjectInfo(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	info, err := projectService.Get(commandContext(cmd), projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	cmd.Printf("Project: %s\n\n", info.ID)
	cmd.Printf("  Name:     %s\n", info.Name)
	cmd.Printf("  Status:   %s\n", info.Status)
	cmd.Printf("  Scope:    %s\n", info.Scope.Description())
	if !info.CreatedAt.IsZero() {
		cmd.Printf("  Created:  %s\n", info.CreatedAt.Format(timeLayout))
	}
	if !info.UpdatedAt.IsZero() {
		cmd.Printf("  Updated:  %s\n", info.UpdatedAt.Format(timeLayout))
	}
	if info.ReadyAt != nil {
		cmd.Printf("  Ready:    %s\n", info.ReadyAt.Format(timeLayout))
	}

	cmd.Printf("\n  Documents: %d\n", len(info.Documents))
	for i := range info.Documents {
		d := &info.Documents[i]
		cmd.Printf("    %-12s %s\n", d.Status, d.Name)
	}

	questions := info.Questions()
	cmd.Printf("\n  Questions: %d in %d sections\n", len(questions), len(info.Sections))
	return nil
}

func runProjectStatus(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	status, err := projectService.Status(commandContext(cmd), projectID)
	if err != nil {
		return fmt.Errorf("failed to get project status: %w", err)
	}

	cmd.Printf("%s: %s\n", status.ProjectID, status.Status)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projects, err := projectService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		cmd.Println("No projects found.")
		return nil
	}

	for i := range projects {
		cmd.Printf("  %s  %-10s %s\n", projects[i].ID, projects[i].Status, projects[i].Name)
	}
	cmd.Printf("\nTotal: %d projects\n", len(projects))
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	status, err := projectService.Update(commandContext(cmd), projectID, domain.UpdateProjectInput{Name: projectNewName})
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	cmd.Printf("Project %s renamed to %q\n", status.ProjectID, projectNewName)
	cmd.Printf("  Status: %s\n", status.Status)
	return nil
}
