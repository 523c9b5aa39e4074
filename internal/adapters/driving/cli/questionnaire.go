package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

var questionnaireCmd = &cobra.Command{
	Use:   "questionnaire",
	Short: "Parse and show questionnaires",
}

var questionnaireParseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract sections and questions from a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionnaireParse,
}

var questionnaireShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show a project's questionnaire",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runQuestionnaireShow,
}

func init() {
	questionnaireCmd.AddCommand(questionnaireParseCmd)
	questionnaireCmd.AddCommand(questionnaireShowCmd)
	rootCmd.AddCommand(questionnaireCmd)
}

func runQuestionnaireParse(cmd *cobra.Command, args []string) error {
	if questionnaireService == nil {
		return errors.New("questionnaire service not configured")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open questionnaire: %w", err)
	}
	defer f.Close()

	parsed, err := questionnaireService.Parse(commandContext(cmd), domain.Upload{
		Filename: filepath.Base(args[0]),
		Content:  f,
	})
	if err != nil {
		return fmt.Errorf("failed to parse questionnaire: %w", err)
	}

	cmd.Printf("%s: %d questions in %d sections\n\n", parsed.Filename, parsed.QuestionCount(), len(parsed.Sections))
	printSections(cmd, parsed.Sections)
	return nil
}

func runQuestionnaireShow(cmd *cobra.Command, args []string) error {
	if questionnaireService == nil {
		return errors.New("questionnaire service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	sections, err := questionnaireService.Get(commandContext(cmd), projectID)
	if err != nil {
		return fmt.Errorf("failed to get questionnaire: %w", err)
	}

	if len(sections) == 0 {
		cmd.Printf("Project %s has no questionnaire.\n", projectID)
		return nil
	}
	printSections(cmd, sections)
	return nil
}

func printSections(cmd *cobra.Command, sections []domain.Section) {
	for _, s := range sections {
		cmd.Printf("%s\n", s.Title)
		for _, q := range s.Questions {
			marker := " "
			if q.Answer != nil {
				marker = "*"
			}
			cmd.Printf("  %s %-10s %s\n", marker, q.ID, q.Text)
		}
		cmd.Println()
	}
}
