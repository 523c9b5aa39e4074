package rest

import (
	"context"
	"strings"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// CompareAnswer scores one answer against a human answer.
func (c *Client) CompareAnswer(ctx context.Context, answerID, humanAnswer string) (*domain.Comparison, error) {
	if err := requireID("answer id", answerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(humanAnswer) == "" {
		return nil, domain.Invalid("human answer is required")
	}
	in := struct {
		AnswerID    string `json:"answer_id"`
		HumanAnswer string `json:"human_answer"`
	}{answerID, humanAnswer}

	var w evaluationWire
	if err := post(ctx, c, c.apipath(nil, "evaluation", "compare"), jsonPayload(in), &w); err != nil {
		return nil, err
	}
	cmp := &domain.Comparison{
		AnswerID:           firstNonEmpty(w.AnswerID, answerID),
		QuestionID:         w.QuestionID,
		AIAnswer:           w.AIAnswer,
		HumanAnswer:        firstNonEmpty(w.HumanAnswer, humanAnswer),
		SimilarityScore:    w.SimilarityScore,
		KeywordOverlap:     w.KeywordOverlap,
		SemanticSimilarity: w.SemanticSimilarity,
		Explanation:        w.Explanation,
	}
	if err := cmp.Validate(); err != nil {
		return nil, &domain.Error{Kind: domain.ErrorKindServer, Message: "backend returned an invalid comparison", Cause: err}
	}
	return cmp, nil
}

// EvaluateProject scores a project against human answers.
func (c *Client) EvaluateProject(
	ctx context.Context,
	projectID string,
	humanAnswers map[string]string,
) (*domain.EvaluationReport, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if len(humanAnswers) == 0 {
		return nil, domain.Invalid("at least one human answer is required")
	}
	in := struct {
		ProjectID    string            `json:"project_id"`
		HumanAnswers map[string]string `json:"human_answers"`
	}{projectID, humanAnswers}

	var w reportWire
	if err := post(ctx, c, c.apipath(nil, "evaluation", "evaluate-project"), jsonPayload(in), &w); err != nil {
		return nil, err
	}
	return c.checkedReport(&w, projectID)
}

// GetEvaluationReport fetches the latest evaluation report.
func (c *Client) GetEvaluationReport(ctx context.Context, projectID string) (*domain.EvaluationReport, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	var w reportWire
	if err := get(ctx, c, c.apipath(nil, "evaluation", "report", projectID), &w); err != nil {
		return nil, err
	}
	return c.checkedReport(&w, projectID)
}

func (c *Client) checkedReport(w *reportWire, projectID string) (*domain.EvaluationReport, error) {
	r := w.report()
	if r.ProjectID == "" {
		r.ProjectID = projectID
	}
	if err := r.Validate(); err != nil {
		return nil, &domain.Error{Kind: domain.ErrorKindServer, Message: "backend returned an invalid evaluation report", Cause: err}
	}
	return r, nil
}
