package driving

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// QuestionnaireService parses and reads questionnaires.
type QuestionnaireService interface {
	// Parse extracts sections and questions from an uploaded file.
	Parse(ctx context.Context, upload domain.Upload) (*domain.ParsedQuestionnaire, error)

	// Get fetches the questionnaire attached to a project.
	Get(ctx context.Context, projectID string) ([]domain.Section, error)
}
