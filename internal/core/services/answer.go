package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService generates answers and hands them to the review
// controller as the new answers of record.
type AnswerService struct {
	backend driven.Backend
	store   driven.SnapshotStore
	review  driving.ReviewController
	log     *slog.Logger
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	backend driven.Backend,
	store driven.SnapshotStore,
	review driving.ReviewController,
) *AnswerService {
	return &AnswerService{
		backend: backend,
		store:   store,
		review:  review,
		log:     logger.For("answers"),
	}
}

// Generate generates an answer for a single question. An unanswerable
// question yields a MISSING_DATA answer, not an error.
func (s *AnswerService) Generate(ctx context.Context, projectID, question string) (*domain.Answer, error) {
	a, err := s.backend.GenerateAnswer(ctx, projectID, question)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	out := []domain.Answer{*a}
	s.link(projectID, out)
	s.review.Register(out...)
	return &out[0], nil
}

// GenerateAll generates one answer per question, in input order.
func (s *AnswerService) GenerateAll(ctx context.Context, projectID string, questions []string) ([]domain.Answer, error) {
	out, err := s.backend.GenerateAnswers(ctx, projectID, questions)
	if err != nil {
		return nil, fmt.Errorf("generate answers for project %s: %w", projectID, err)
	}

	var missing int
	for i := range out.Answers {
		if out.Answers[i].Status == domain.AnswerStatusMissingData {
			missing++
		}
	}
	s.link(projectID, out.Answers)
	s.review.Register(out.Answers...)
	s.log.Debug("answers generated", "project_id", projectID, "count", len(out.Answers), "missing_data", missing)
	return out.Answers, nil
}

// link fills question IDs from the cached questionnaire when the backend
// answered by question text only.
func (s *AnswerService) link(projectID string, answers []domain.Answer) {
	info, ok := s.store.Project(projectID)
	if !ok {
		return
	}
	byText := make(map[string]string)
	for _, q := range info.Questions() {
		byText[q.Text] = q.ID
	}
	for i := range answers {
		if answers[i].QuestionID != "" {
			continue
		}
		if id, ok := byText[answers[i].Question]; ok {
			answers[i].QuestionID = id
		}
	}
}
