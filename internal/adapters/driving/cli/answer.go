package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Generate and review answers",
	Long:  `Generate answers with citations and record reviewer decisions.`,
}

var answerGenerateCmd = &cobra.Command{
	Use:   "generate [question]",
	Short: "Answer one question",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerGenerate,
}

var answerGenerateAllCmd = &cobra.Command{
	Use:   "generate-all [question...]",
	Short: "Answer many questions",
	Long: `Answer the given questions, or every question of the project's
questionnaire when none are given. A question that cannot be answered is
reported as missing data instead of failing the batch.`,
	RunE: runAnswerGenerateAll,
}

var answerReviewCmd = &cobra.Command{
	Use:   "review [answer-id]",
	Short: "Record a review decision",
	Long: `Record a review decision for an answer.

Statuses:
  CONFIRMED      - the answer is correct
  REJECTED       - the answer is wrong
  MANUAL_UPDATED - replace the answer with --text
  PENDING        - send the answer back for review`,
	Args: cobra.ExactArgs(1),
	RunE: runAnswerReview,
}

var answerShowCmd = &cobra.Command{
	Use:   "show [question-id]",
	Short: "Show the answer of record for a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnswerShow,
}

var (
	reviewStatus string
	reviewText   string
)

func init() {
	answerReviewCmd.Flags().StringVarP(&reviewStatus, "status", "s", "", "Review status")
	answerReviewCmd.Flags().StringVarP(&reviewText, "text", "t", "", "Manual answer text (MANUAL_UPDATED)")
	_ = answerReviewCmd.MarkFlagRequired("status")

	answerCmd.AddCommand(answerGenerateCmd)
	answerCmd.AddCommand(answerGenerateAllCmd)
	answerCmd.AddCommand(answerReviewCmd)
	answerCmd.AddCommand(answerShowCmd)
	rootCmd.AddCommand(answerCmd)
}

func runAnswerGenerate(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	projectID, err := resolveProject(nil)
	if err != nil {
		return err
	}

	a, err := answerService.Generate(commandContext(cmd), projectID, args[0])
	if err != nil {
		return fmt.Errorf("failed to generate answer: %w", err)
	}

	printAnswer(cmd, a)
	return nil
}

func runAnswerGenerateAll(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	projectID, err := resolveProject(nil)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	questions := args
	if len(questions) == 0 {
		if projectService == nil {
			return errors.New("project service not configured")
		}
		info, err := projectService.Get(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to load questionnaire: %w", err)
		}
		for _, q := range info.Questions() {
			questions = append(questions, q.Text)
		}
		if len(questions) == 0 {
			return fmt.Errorf("project %s has no questionnaire; pass questions explicitly", projectID)
		}
	}

	answers, err := answerService.GenerateAll(ctx, projectID, questions)
	if err != nil {
		return fmt.Errorf("failed to generate answers: %w", err)
	}

	var missing int
	for i := range answers {
		printAnswer(cmd, &answers[i])
		cmd.Println()
		if answers[i].Status == domain.AnswerStatusMissingData {
			missing++
		}
	}
	cmd.Printf("Generated %d answers (%d missing data)\n", len(answers), missing)
	return nil
}

func runAnswerReview(cmd *cobra.Command, args []string) error {
	if reviewController == nil {
		return errors.New("review controller not configured")
	}

	in := driving.ReviewInput{
		AnswerID:   args[0],
		Status:     domain.AnswerStatus(strings.ToUpper(reviewStatus)),
		ManualText: reviewText,
	}
	a, err := reviewController.Review(commandContext(cmd), in)
	if err != nil {
		return fmt.Errorf("failed to review answer: %w", err)
	}

	cmd.Printf("Answer %s: %s\n", a.ID, a.Status.Description())
	if a.Status == domain.AnswerStatusManualUpdated {
		cmd.Printf("  Text: %s\n", a.DisplayText())
	}
	return nil
}

func runAnswerShow(cmd *cobra.Command, args []string) error {
	projectID, err := resolveProject(nil)
	if err != nil {
		return err
	}
	questionID := args[0]

	if reviewController != nil {
		if a, ok := reviewController.Current(projectID, questionID); ok {
			printAnswer(cmd, &a)
			return nil
		}
	}

	if projectService == nil {
		return errors.New("project service not configured")
	}
	info, err := projectService.Get(commandContext(cmd), projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	q, ok := info.Question(questionID)
	if !ok {
		return fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}
	if q.Answer == nil {
		cmd.Printf("%s\n  (no answer yet)\n", q.Text)
		return nil
	}
	printAnswer(cmd, q.Answer)
	return nil
}

// printAnswer writes an answer with its citations.
func printAnswer(cmd *cobra.Command, a *domain.Answer) {
	if a.Question != "" {
		cmd.Printf("Q: %s\n", a.Question)
	}
	cmd.Printf("A: %s\n", a.DisplayText())
	cmd.Printf("  ID:         %s\n", a.ID)
	cmd.Printf("  Status:     %s\n", a.Status.Description())
	if a.Answerable {
		cmd.Printf("  Confidence: %.0f%%\n", a.Confidence*100)
	}
	for i, c := range a.Citations {
		name := c.DocumentName
		if name == "" {
			name = c.DocumentID
		}
		if c.PageNumber != nil {
			name = fmt.Sprintf("%s p.%d", name, *c.PageNumber)
		}
		cmd.Printf("  [%d] %s\n", i+1, name)
		if c.ChunkText != "" {
			cmd.Printf("      %q\n", truncate(c.ChunkText, 120))
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
