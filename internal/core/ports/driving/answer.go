package driving

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// AnswerService generates answers.
type AnswerService interface {
	// Generate generates an answer for a single question.
	Generate(ctx context.Context, projectID, question string) (*domain.Answer, error)

	// GenerateAll generates one answer per question, in input order. A
	// question whose generation failed yields an unanswerable MISSING_DATA
	// answer instead of failing the batch.
	GenerateAll(ctx context.Context, projectID string, questions []string) ([]domain.Answer, error)
}

// ReviewInput is a reviewer decision for one answer.
type ReviewInput struct {
	AnswerID   string
	Status     domain.AnswerStatus
	ManualText string
}

// ReviewController applies human review decisions to answers.
type ReviewController interface {
	// Review validates and applies a decision. A rejected decision leaves
	// the cached answer unchanged.
	Review(ctx context.Context, in ReviewInput) (*domain.Answer, error)

	// Register records answers as the current answers of their questions,
	// superseding earlier ones.
	Register(answers ...domain.Answer)

	// Current returns the answer of record for a question.
	Current(projectID, questionID string) (domain.Answer, bool)

	// Authoritative returns the answer of record when a reviewer has
	// confirmed or overridden it.
	Authoritative(projectID, questionID string) (domain.Answer, bool)
}
