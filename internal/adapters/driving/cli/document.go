package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/adapters/driving/watch"
	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage project documents",
	Long:  `Index documents into a project, list them, or watch a folder for new files.`,
}

var documentIndexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Upload documents for indexing",
	Long: `Upload one or more files to the selected project. Indexing runs on the
backend; use --wait to follow each job until it finishes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentIndex,
}

var documentListCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List documents of a project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocumentList,
}

var documentWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index files as they appear in a folder",
	Long: `Watch a folder and upload every new or rewritten file to the selected
project. Hidden files are ignored. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentWatch,
}

var documentWait bool

func init() {
	documentIndexCmd.Flags().BoolVarP(&documentWait, "wait", "w", false, "Wait for indexing to finish")

	documentCmd.AddCommand(documentIndexCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentWatchCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentIndex(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	projectID, err := resolveProject(nil)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var failed int
	for _, path := range args {
		handle, err := indexFile(cmd, projectID, path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("%s: queued as %s\n", filepath.Base(path), handle.ID)

		if !documentWait {
			continue
		}
		final, err := waitForJob(cmd, handle)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("%s: %s\n", filepath.Base(path), final.Status)
	}

	if documentWait && projectService != nil && failed < len(args) {
		if status, err := projectService.Status(ctx, projectID); err == nil {
			cmd.Printf("Project %s: %s\n", projectID, status.Status)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to index %d of %d documents", failed, len(args))
	}
	return nil
}

func indexFile(cmd *cobra.Command, projectID, path string) (domain.RequestHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RequestHandle{}, err
	}
	defer f.Close()

	return documentService.Index(commandContext(cmd), projectID, domain.Upload{
		Filename: filepath.Base(path),
		Content:  f,
	})
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	docs, err := documentService.List(commandContext(cmd), projectID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for project: %s\n", projectID)
		return nil
	}

	cmd.Printf("Documents for project %s:\n\n", projectID)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:   %s\n", docs[i].Name)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		if docs[i].Error != "" {
			cmd.Printf("    Error:  %s\n", docs[i].Error)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	projectID, err := resolveProject(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	w := watch.New(documentService, projectID, args[0])
	results, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch folder: %w", err)
	}
	defer w.Close()

	cmd.Printf("Watching %s for project %s (Ctrl-C to stop)\n", args[0], projectID)
	for res := range results {
		if res.Err != nil {
			cmd.PrintErrf("%s: %v\n", filepath.Base(res.Path), res.Err)
			continue
		}
		cmd.Printf("%s: queued as %s\n", filepath.Base(res.Path), res.Handle.ID)
	}
	return nil
}
