package services

import (
	"context"
	"sync"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

var _ driven.Backend = (*mockBackend)(nil)

// mockBackend implements driven.Backend. Unset hooks fail with a
// validation error so an unexpected call is visible in the test.
type mockBackend struct {
	createProject   func(domain.CreateProjectInput) (domain.ProjectStatusInfo, error)
	getProjectInfo  func(string) (*domain.ProjectInfo, error)
	getStatus       func(string) (domain.ProjectStatusInfo, error)
	listProjects    func() ([]domain.Project, error)
	updateProject   func(string, domain.UpdateProjectInput) (domain.ProjectStatusInfo, error)
	indexDocument   func(string, domain.Upload) (domain.RequestHandle, error)
	listDocuments   func(string) ([]domain.Document, error)
	generateAnswer  func(string, string) (*domain.Answer, error)
	generateAnswers func(string, []string) (*domain.GeneratedAnswers, error)
	updateAnswer    func(domain.UpdateAnswerInput) (*domain.Answer, error)
	getRequest      func(string) (*domain.Request, error)
	compare         func(string, string) (*domain.Comparison, error)
	evaluate        func(string, map[string]string) (*domain.EvaluationReport, error)
	report          func(string) (*domain.EvaluationReport, error)
	parse           func(domain.Upload) (*domain.ParsedQuestionnaire, error)
	questionnaire   func(string) ([]domain.Section, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *mockBackend) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

func (m *mockBackend) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func unexpected(op string) error {
	return domain.Invalid("unexpected call to %s", op)
}

func (m *mockBackend) CreateProject(_ context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error) {
	m.record("CreateProject")
	if m.createProject == nil {
		return domain.ProjectStatusInfo{}, unexpected("CreateProject")
	}
	return m.createProject(in)
}

func (m *mockBackend) GetProjectInfo(_ context.Context, id string) (*domain.ProjectInfo, error) {
	m.record("GetProjectInfo")
	if m.getProjectInfo == nil {
		return nil, unexpected("GetProjectInfo")
	}
	return m.getProjectInfo(id)
}

func (m *mockBackend) GetProjectStatus(_ context.Context, id string) (domain.ProjectStatusInfo, error) {
	m.record("GetProjectStatus")
	if m.getStatus == nil {
		return domain.ProjectStatusInfo{}, unexpected("GetProjectStatus")
	}
	return m.getStatus(id)
}

func (m *mockBackend) ListProjects(_ context.Context) ([]domain.Project, error) {
	m.record("ListProjects")
	if m.listProjects == nil {
		return nil, unexpected("ListProjects")
	}
	return m.listProjects()
}

func (m *mockBackend) UpdateProject(
	_ context.Context,
	id string,
	in domain.UpdateProjectInput,
) (domain.ProjectStatusInfo, error) {
	m.record("UpdateProject")
	if m.updateProject == nil {
		return domain.ProjectStatusInfo{}, unexpected("UpdateProject")
	}
	return m.updateProject(id, in)
}

func (m *mockBackend) IndexDocument(_ context.Context, id string, up domain.Upload) (domain.RequestHandle, error) {
	m.record("IndexDocument")
	if m.indexDocument == nil {
		return domain.RequestHandle{}, unexpected("IndexDocument")
	}
	return m.indexDocument(id, up)
}

func (m *mockBackend) ListDocuments(_ context.Context, id string) ([]domain.Document, error) {
	m.record("ListDocuments")
	if m.listDocuments == nil {
		return nil, unexpected("ListDocuments")
	}
	return m.listDocuments(id)
}

func (m *mockBackend) GenerateAnswer(_ context.Context, id, question string) (*domain.Answer, error) {
	m.record("GenerateAnswer")
	if m.generateAnswer == nil {
		return nil, unexpected("GenerateAnswer")
	}
	return m.generateAnswer(id, question)
}

func (m *mockBackend) GenerateAnswers(_ context.Context, id string, qs []string) (*domain.GeneratedAnswers, error) {
	m.record("GenerateAnswers")
	if m.generateAnswers == nil {
		return nil, unexpected("GenerateAnswers")
	}
	return m.generateAnswers(id, qs)
}

func (m *mockBackend) UpdateAnswer(_ context.Context, in domain.UpdateAnswerInput) (*domain.Answer, error) {
	m.record("UpdateAnswer")
	if m.updateAnswer == nil {
		return nil, unexpected("UpdateAnswer")
	}
	return m.updateAnswer(in)
}

func (m *mockBackend) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	m.record("GetRequest")
	if err := ctx.Err(); err != nil {
		return nil, &domain.Error{Kind: domain.ErrorKindTransport, Message: "request cancelled", Cause: err}
	}
	if m.getRequest == nil {
		return nil, unexpected("GetRequest")
	}
	return m.getRequest(id)
}

func (m *mockBackend) CompareAnswer(_ context.Context, id, human string) (*domain.Comparison, error) {
	m.record("CompareAnswer")
	if m.compare == nil {
		return nil, unexpected("CompareAnswer")
	}
	return m.compare(id, human)
}

func (m *mockBackend) EvaluateProject(
	_ context.Context,
	id string,
	human map[string]string,
) (*domain.EvaluationReport, error) {
	m.record("EvaluateProject")
	if m.evaluate == nil {
		return nil, unexpected("EvaluateProject")
	}
	return m.evaluate(id, human)
}

func (m *mockBackend) GetEvaluationReport(_ context.Context, id string) (*domain.EvaluationReport, error) {
	m.record("GetEvaluationReport")
	if m.report == nil {
		return nil, unexpected("GetEvaluationReport")
	}
	return m.report(id)
}

func (m *mockBackend) ParseQuestionnaire(_ context.Context, up domain.Upload) (*domain.ParsedQuestionnaire, error) {
	m.record("ParseQuestionnaire")
	if m.parse == nil {
		return nil, unexpected("ParseQuestionnaire")
	}
	return m.parse(up)
}

func (m *mockBackend) GetQuestionnaire(_ context.Context, id string) ([]domain.Section, error) {
	m.record("GetQuestionnaire")
	if m.questionnaire == nil {
		return nil, unexpected("GetQuestionnaire")
	}
	return m.questionnaire(id)
}

func (m *mockBackend) Health(_ context.Context) error {
	m.record("Health")
	return nil
}

func ptr[T any](v T) *T { return &v }

func serverError(msg string) error {
	return &domain.Error{Kind: domain.ErrorKindServer, Message: msg, StatusCode: 503}
}
