package driven

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// Backend is the typed contract with the questionnaire backend.
// Every failure is returned as a *domain.Error.
type Backend interface {
	// CreateProject creates a project. The new project starts CREATED.
	CreateProject(ctx context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error)

	// GetProjectInfo fetches a full project snapshot.
	GetProjectInfo(ctx context.Context, projectID string) (*domain.ProjectInfo, error)

	// GetProjectStatus fetches only the project status.
	GetProjectStatus(ctx context.Context, projectID string) (domain.ProjectStatusInfo, error)

	// ListProjects lists project summaries in no particular order.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// UpdateProject changes mutable project fields. The backend marks the
	// project OUTDATED.
	UpdateProject(ctx context.Context, projectID string, in domain.UpdateProjectInput) (domain.ProjectStatusInfo, error)

	// IndexDocument uploads a document and starts an indexing job.
	IndexDocument(ctx context.Context, projectID string, upload domain.Upload) (domain.RequestHandle, error)

	// ListDocuments lists the documents of a project.
	ListDocuments(ctx context.Context, projectID string) ([]domain.Document, error)

	// GenerateAnswer generates an answer for one question. An unanswerable
	// question is a successful MISSING_DATA answer, not an error.
	GenerateAnswer(ctx context.Context, projectID, question string) (*domain.Answer, error)

	// GenerateAnswers generates one answer per question, in input order.
	GenerateAnswers(ctx context.Context, projectID string, questions []string) (*domain.GeneratedAnswers, error)

	// UpdateAnswer applies a review decision and returns the stored answer.
	UpdateAnswer(ctx context.Context, in domain.UpdateAnswerInput) (*domain.Answer, error)

	// GetRequest fetches the current snapshot of a job.
	GetRequest(ctx context.Context, requestID string) (*domain.Request, error)

	// CompareAnswer scores one answer against a human answer.
	CompareAnswer(ctx context.Context, answerID, humanAnswer string) (*domain.Comparison, error)

	// EvaluateProject scores a project's answers against human answers
	// keyed by question ID.
	EvaluateProject(ctx context.Context, projectID string, humanAnswers map[string]string) (*domain.EvaluationReport, error)

	// GetEvaluationReport fetches the latest evaluation report.
	GetEvaluationReport(ctx context.Context, projectID string) (*domain.EvaluationReport, error)

	// ParseQuestionnaire extracts sections and questions from a file.
	ParseQuestionnaire(ctx context.Context, upload domain.Upload) (*domain.ParsedQuestionnaire, error)

	// GetQuestionnaire fetches the questionnaire attached to a project.
	GetQuestionnaire(ctx context.Context, projectID string) ([]domain.Section, error)

	// Health checks the backend is reachable.
	Health(ctx context.Context) error
}
