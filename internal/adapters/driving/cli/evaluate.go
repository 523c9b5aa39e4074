package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compare answers with human ground truth",
}

var evaluateCompareCmd = &cobra.Command{
	Use:   "compare [answer-id] [human-answer]",
	Short: "Score one answer against a human answer",
	Args:  cobra.ExactArgs(2),
	RunE:  runEvaluateCompare,
}

var evaluateProjectCmd = &cobra.Command{
	Use:   "project [project-id]",
	Short: "Score a project against human answers",
	Long: `Score every answer of a project against human answers.

Human answers come from --answers, a JSON object mapping question IDs to
answer text. Without it, the manual overrides recorded by reviewers in this
session are used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluateProject,
}

var evaluateReportCmd = &cobra.Command{
	Use:   "report [project-id]",
	Short: "Show the latest evaluation report",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEvaluateReport,
}

var (
	evaluateAnswersFile string
	evaluateThreshold   float64
)

func init() {
	evaluateProjectCmd.Flags().StringVarP(&evaluateAnswersFile, "answers", "a", "", "JSON file of human answers keyed by question ID")
	for _, c := range []*cobra.Command{evaluateProjectCmd, evaluateReportCmd} {
		c.Flags().Float64Var(&evaluateThreshold, "threshold", 0.5, "Similarity below which a result is listed as a mismatch")
	}

	evaluateCmd.AddCommand(evaluateCompareCmd)
	evaluateCmd.AddCommand(evaluateProjectCmd)
	evaluateCmd.AddCommand(evaluateReportCmd)
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluateCompare(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}

	c, err := evaluationService.Compare(commandContext(cmd), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to compare answer: %w", err)
	}

	cmd.Printf("Answer %s\n", c.AnswerID)
	cmd.Printf("  Similarity:          %.2f\n", c.SimilarityScore)
	cmd.Printf("  Keyword overlap:     %.2f\n", c.KeywordOverlap)
	cmd.Printf("  Semantic similarity: %.2f\n", c.SemanticSimilarity)
	if c.Explanation != "" {
		cmd.Printf("  %s\n", c.Explanation)
	}
	return nil
}

func runEvaluateProject(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	var human map[string]string
	if evaluateAnswersFile != "" {
		human, err = readHumanAnswers(evaluateAnswersFile)
		if err != nil {
			return err
		}
	} else {
		if projectService == nil {
			return errors.New("project service not configured")
		}
		info, err := projectService.Get(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}
		var ids []string
		for _, q := range info.Questions() {
			ids = append(ids, q.ID)
		}
		human = evaluationService.GroundTruth(projectID, ids)
	}
	if len(human) == 0 {
		return errors.New("no human answers: pass --answers or record manual overrides first")
	}

	report, err := evaluationService.EvaluateProject(ctx, projectID, human)
	if err != nil {
		return fmt.Errorf("failed to evaluate project: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func runEvaluateReport(cmd *cobra.Command, args []string) error {
	if evaluationService == nil {
		return errors.New("evaluation service not configured")
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	report, err := evaluationService.Report(commandContext(cmd), projectID)
	if err != nil {
		return fmt.Errorf("failed to get evaluation report: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func readHumanAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read human answers: %w", err)
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse human answers %s: %w", path, err)
	}
	return out, nil
}

func printReport(cmd *cobra.Command, r *domain.EvaluationReport) {
	cmd.Printf("Evaluation of project %s\n", r.ProjectID)
	if r.EvaluatedAt != nil {
		cmd.Printf("  Evaluated: %s\n", r.EvaluatedAt.Format(timeLayout))
	}
	cmd.Printf("  Questions: %d\n", len(r.Results))
	cmd.Printf("  Mean similarity: %.2f\n", r.MeanSimilarity)

	mismatches := r.Mismatches(evaluateThreshold)
	if len(mismatches) == 0 {
		return
	}
	cmd.Printf("\n  Below %.2f:\n", evaluateThreshold)
	for _, m := range mismatches {
		cmd.Printf("    %.2f  %s\n", m.SimilarityScore, truncate(m.QuestionText, 80))
	}
}
