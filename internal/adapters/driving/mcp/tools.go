package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// ListProjectsInput is the input schema for the list_projects tool.
type ListProjectsInput struct{}

// ListProjectsOutput is the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects []ProjectOutput `json:"projects"`
	Count    int             `json:"count"`
}

// ProjectOutput is a project summary.
type ProjectOutput struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Scope     string `json:"scope"`
}

// ProjectStatusInput is the input schema for the project_status tool.
type ProjectStatusInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project to inspect"`
}

// ProjectStatusOutput is the output schema for the project_status tool.
type ProjectStatusOutput struct {
	ProjectID string           `json:"project_id"`
	Name      string           `json:"name"`
	Status    string           `json:"status"`
	Documents []DocumentOutput `json:"documents"`
	Questions int              `json:"questions"`
}

// DocumentOutput is a document summary.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// GenerateAnswerInput is the input schema for the generate_answer tool.
type GenerateAnswerInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project whose documents are searched"`
	Question  string `json:"question" jsonschema:"the question to answer"`
}

// AnswerOutput is an answer with citations.
type AnswerOutput struct {
	AnswerID   string           `json:"answer_id"`
	QuestionID string           `json:"question_id,omitempty"`
	Question   string           `json:"question,omitempty"`
	Text       string           `json:"text"`
	Answerable bool             `json:"answerable"`
	Confidence float64          `json:"confidence"`
	Status     string           `json:"status"`
	Citations  []CitationOutput `json:"citations"`
}

// CitationOutput is one supporting excerpt.
type CitationOutput struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name,omitempty"`
	PageNumber   *int   `json:"page_number,omitempty"`
	Excerpt      string `json:"excerpt,omitempty"`
}

// ReviewAnswerInput is the input schema for the review_answer tool.
type ReviewAnswerInput struct {
	AnswerID   string `json:"answer_id" jsonschema:"the answer to review"`
	Status     string `json:"status" jsonschema:"CONFIRMED, REJECTED, MANUAL_UPDATED or PENDING"`
	ManualText string `json:"manual_text,omitempty" jsonschema:"replacement text, required for MANUAL_UPDATED"`
}

// RequestStatusInput is the input schema for the request_status tool.
type RequestStatusInput struct {
	RequestID string `json:"request_id" jsonschema:"the background job to inspect"`
}

// RequestStatusOutput is the output schema for the request_status tool.
type RequestStatusOutput struct {
	RequestID   string   `json:"request_id"`
	Kind        string   `json:"kind,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	Status      string   `json:"status"`
	Progress    *float64 `json:"progress,omitempty"`
	Error       string   `json:"error,omitempty"`
	CompletedAt string   `json:"completed_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List questionnaire projects and their status",
	}, s.handleListProjects)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "project_status",
		Description: "Show a project's status, documents and questionnaire size",
	}, s.handleProjectStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_answer",
		Description: "Answer a question from a project's indexed documents, with citations",
	}, s.handleGenerateAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "review_answer",
		Description: "Confirm, reject or override a generated answer",
	}, s.handleReviewAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "request_status",
		Description: "Show the state of a background job such as document indexing",
	}, s.handleRequestStatus)
}

func (s *Server) handleListProjects(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListProjectsInput,
) (*mcp.CallToolResult, ListProjectsOutput, error) {
	projects, err := s.ports.Projects.List(ctx)
	if err != nil {
		return nil, ListProjectsOutput{}, err
	}

	output := ListProjectsOutput{
		Projects: make([]ProjectOutput, len(projects)),
		Count:    len(projects),
	}
	for i := range projects {
		output.Projects[i] = ProjectOutput{
			ProjectID: projects[i].ID,
			Name:      projects[i].Name,
			Status:    string(projects[i].Status),
			Scope:     string(projects[i].Scope),
		}
	}
	return nil, output, nil
}

func (s *Server) handleProjectStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectStatusInput,
) (*mcp.CallToolResult, ProjectStatusOutput, error) {
	info, err := s.ports.Projects.Get(ctx, input.ProjectID)
	if err != nil {
		return nil, ProjectStatusOutput{}, err
	}

	output := ProjectStatusOutput{
		ProjectID: info.ID,
		Name:      info.Name,
		Status:    string(info.Status),
		Documents: make([]DocumentOutput, len(info.Documents)),
		Questions: len(info.Questions()),
	}
	for i := range info.Documents {
		d := &info.Documents[i]
		output.Documents[i] = DocumentOutput{
			DocumentID: d.ID,
			Name:       d.Name,
			Status:     string(d.Status),
			Error:      d.Error,
		}
	}
	return nil, output, nil
}

func (s *Server) handleGenerateAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateAnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	if s.ports.Answers == nil {
		return nil, AnswerOutput{}, errUnavailable
	}

	a, err := s.ports.Answers.Generate(ctx, input.ProjectID, input.Question)
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(a), nil
}

func (s *Server) handleReviewAnswer(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReviewAnswerInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	if s.ports.Review == nil {
		return nil, AnswerOutput{}, errUnavailable
	}

	a, err := s.ports.Review.Review(ctx, driving.ReviewInput{
		AnswerID:   input.AnswerID,
		Status:     domain.AnswerStatus(strings.ToUpper(input.Status)),
		ManualText: input.ManualText,
	})
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(a), nil
}

func (s *Server) handleRequestStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RequestStatusInput,
) (*mcp.CallToolResult, RequestStatusOutput, error) {
	if s.ports.Tracker == nil {
		return nil, RequestStatusOutput{}, errUnavailable
	}

	req, err := s.ports.Tracker.Get(ctx, input.RequestID)
	if err != nil {
		return nil, RequestStatusOutput{}, err
	}

	output := RequestStatusOutput{
		RequestID: req.ID,
		Kind:      string(req.Kind),
		ProjectID: req.ProjectID,
		Status:    string(req.Status),
		Progress:  req.Progress,
		Error:     req.Error,
	}
	if req.CompletedAt != nil {
		output.CompletedAt = req.CompletedAt.Format(time.RFC3339)
	}
	return nil, output, nil
}

func toAnswerOutput(a *domain.Answer) AnswerOutput {
	out := AnswerOutput{
		AnswerID:   a.ID,
		QuestionID: a.QuestionID,
		Question:   a.Question,
		Text:       a.DisplayText(),
		Answerable: a.Answerable,
		Confidence: a.Confidence,
		Status:     string(a.Status),
		Citations:  make([]CitationOutput, len(a.Citations)),
	}
	for i, c := range a.Citations {
		out.Citations[i] = CitationOutput{
			DocumentID:   c.DocumentID,
			DocumentName: c.DocumentName,
			PageNumber:   c.PageNumber,
			Excerpt:      c.ChunkText,
		}
	}
	return out
}
