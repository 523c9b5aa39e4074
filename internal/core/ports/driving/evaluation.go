package driving

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// EvaluationService compares AI answers to human ground truth.
type EvaluationService interface {
	// Compare scores one answer against a human answer.
	Compare(ctx context.Context, answerID, humanAnswer string) (*domain.Comparison, error)

	// EvaluateProject scores a project against human answers keyed by
	// question ID.
	EvaluateProject(ctx context.Context, projectID string, humanAnswers map[string]string) (*domain.EvaluationReport, error)

	// GroundTruth collects reviewer overrides for the given questions,
	// keyed by question ID.
	GroundTruth(projectID string, questionIDs []string) map[string]string

	// Report fetches the latest evaluation report of a project.
	Report(ctx context.Context, projectID string) (*domain.EvaluationReport, error)
}
