package services

import (
	"context"
	"fmt"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationService compares generated answers with human answers.
type EvaluationService struct {
	backend driven.Backend
	review  driving.ReviewController
}

// NewEvaluationService creates a new evaluation service. review may be
// nil, in which case reviewer overrides are not used as ground truth.
func NewEvaluationService(backend driven.Backend, review driving.ReviewController) *EvaluationService {
	return &EvaluationService{backend: backend, review: review}
}

// Compare scores one answer against a human answer.
func (s *EvaluationService) Compare(ctx context.Context, answerID, humanAnswer string) (*domain.Comparison, error) {
	cmp, err := s.backend.CompareAnswer(ctx, answerID, humanAnswer)
	if err != nil {
		return nil, fmt.Errorf("compare answer %s: %w", answerID, err)
	}
	return cmp, nil
}

// EvaluateProject scores a project against human answers keyed by
// question ID.
func (s *EvaluationService) EvaluateProject(
	ctx context.Context,
	projectID string,
	humanAnswers map[string]string,
) (*domain.EvaluationReport, error) {
	report, err := s.backend.EvaluateProject(ctx, projectID, humanAnswers)
	if err != nil {
		return nil, fmt.Errorf("evaluate project %s: %w", projectID, err)
	}
	return report, nil
}

// GroundTruth collects the manual overrides reviewers recorded for the
// given questions, keyed by question ID.
func (s *EvaluationService) GroundTruth(projectID string, questionIDs []string) map[string]string {
	out := make(map[string]string)
	if s.review == nil {
		return out
	}
	for _, qid := range questionIDs {
		a, ok := s.review.Authoritative(projectID, qid)
		if ok && a.Status == domain.AnswerStatusManualUpdated {
			out[qid] = a.ManualAnswer
		}
	}
	return out
}

// Report fetches the latest evaluation report of a project.
func (s *EvaluationService) Report(ctx context.Context, projectID string) (*domain.EvaluationReport, error) {
	report, err := s.backend.GetEvaluationReport(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get evaluation report of project %s: %w", projectID, err)
	}
	return report, nil
}
