package services

import (
	"context"
	"fmt"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// Ensure QuestionnaireService implements the interface.
var _ driving.QuestionnaireService = (*QuestionnaireService)(nil)

// QuestionnaireService parses questionnaire files and reads the
// questionnaire attached to a project.
type QuestionnaireService struct {
	backend driven.Backend
	store   driven.SnapshotStore
}

// NewQuestionnaireService creates a new questionnaire service.
func NewQuestionnaireService(backend driven.Backend, store driven.SnapshotStore) *QuestionnaireService {
	return &QuestionnaireService{backend: backend, store: store}
}

// Parse extracts sections and questions from an uploaded file.
func (s *QuestionnaireService) Parse(ctx context.Context, upload domain.Upload) (*domain.ParsedQuestionnaire, error) {
	parsed, err := s.backend.ParseQuestionnaire(ctx, upload)
	if err != nil {
		return nil, fmt.Errorf("parse questionnaire %s: %w", upload.Filename, err)
	}
	return parsed, nil
}

// Get fetches the questionnaire attached to a project. A cached project
// snapshot picks up the sections.
func (s *QuestionnaireService) Get(ctx context.Context, projectID string) ([]domain.Section, error) {
	sections, err := s.backend.GetQuestionnaire(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get questionnaire of project %s: %w", projectID, err)
	}
	if cached, ok := s.store.Project(projectID); ok {
		cached.Sections = make([]domain.Section, len(sections))
		for i := range sections {
			cached.Sections[i] = sections[i].Clone()
		}
		s.store.PutProject(cached)
	}
	return sections, nil
}
