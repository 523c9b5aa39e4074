package mcp

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	info     *domain.ProjectInfo
	err      error
}

func (m *mockProjectService) Create(_ context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error) {
	return domain.ProjectStatusInfo{ProjectID: "p-new", Status: domain.ProjectStatusCreated}, m.err
}

func (m *mockProjectService) Get(_ context.Context, _ string) (*domain.ProjectInfo, error) {
	return m.info, m.err
}

func (m *mockProjectService) Status(_ context.Context, projectID string) (domain.ProjectStatusInfo, error) {
	if m.info == nil {
		return domain.ProjectStatusInfo{}, m.err
	}
	return domain.ProjectStatusInfo{ProjectID: projectID, Status: m.info.Status}, m.err
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Update(_ context.Context, projectID string, _ domain.UpdateProjectInput) (domain.ProjectStatusInfo, error) {
	return domain.ProjectStatusInfo{ProjectID: projectID, Status: domain.ProjectStatusOutdated}, m.err
}

func (m *mockProjectService) Refresh(_ context.Context, _ string) error {
	return m.err
}

func (m *mockProjectService) Cached(_ string) (domain.ProjectInfo, bool) {
	if m.info == nil {
		return domain.ProjectInfo{}, false
	}
	return *m.info, true
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAnswerService) Generate(_ context.Context, _ string, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockAnswerService) GenerateAll(_ context.Context, _ string, _ []string) ([]domain.Answer, error) {
	if m.answer == nil {
		return nil, m.err
	}
	return []domain.Answer{*m.answer}, m.err
}

// mockReviewController is a mock implementation of driving.ReviewController.
type mockReviewController struct {
	last driving.ReviewInput
	err  error
}

func (m *mockReviewController) Review(_ context.Context, in driving.ReviewInput) (*domain.Answer, error) {
	m.last = in
	if m.err != nil {
		return nil, m.err
	}
	a := domain.Answer{ID: in.AnswerID, Status: in.Status, ManualAnswer: in.ManualText, Answerable: true}
	return &a, nil
}

func (m *mockReviewController) Register(_ ...domain.Answer) {}

func (m *mockReviewController) Current(_, _ string) (domain.Answer, bool) {
	return domain.Answer{}, false
}

func (m *mockReviewController) Authoritative(_, _ string) (domain.Answer, bool) {
	return domain.Answer{}, false
}

// mockTracker is a mock implementation of driving.JobTracker.
type mockTracker struct {
	req *domain.Request
	err error
}

func (m *mockTracker) Track(_ context.Context, _ domain.RequestHandle) driving.JobHandle {
	return nil
}

func (m *mockTracker) Get(_ context.Context, _ string) (*domain.Request, error) {
	return m.req, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	err       error
}

func (m *mockDocumentService) Index(_ context.Context, _ string, _ domain.Upload) (domain.RequestHandle, error) {
	return domain.RequestHandle{}, m.err
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

// mockQuestionnaireService is a mock implementation of driving.QuestionnaireService.
type mockQuestionnaireService struct {
	sections []domain.Section
	err      error
}

func (m *mockQuestionnaireService) Parse(_ context.Context, _ domain.Upload) (*domain.ParsedQuestionnaire, error) {
	return nil, m.err
}

func (m *mockQuestionnaireService) Get(_ context.Context, _ string) ([]domain.Section, error) {
	return m.sections, m.err
}
