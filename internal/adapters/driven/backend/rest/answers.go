package rest

import (
	"context"
	"net/url"
	"strings"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// GenerateAnswer generates an answer for one question.
func (c *Client) GenerateAnswer(ctx context.Context, projectID, question string) (*domain.Answer, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.Invalid("question is required")
	}
	var w answerWire
	q := url.Values{"project_id": {projectID}, "question": {question}}
	if err := post(ctx, c, c.apipath(q, "answers", "generate-single-answer"), nil, &w); err != nil {
		return nil, err
	}
	a := w.answer()
	if a.ProjectID == "" {
		a.ProjectID = projectID
	}
	if a.Question == "" {
		a.Question = question
	}
	if err := checkedAnswer(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GenerateAnswers generates one answer per question. Entries the backend
// reports as failed, entries that fail validation, and positions it leaves
// out become unanswerable placeholders so the result always lines up with
// the input.
func (c *Client) GenerateAnswers(ctx context.Context, projectID string, questions []string) (*domain.GeneratedAnswers, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.Invalid("at least one question is required")
	}
	var out struct {
		ProjectID string       `json:"project_id"`
		Answers   []answerWire `json:"answers"`
	}
	q := url.Values{"project_id": {projectID}}
	if err := post(ctx, c, c.apipath(q, "answers", "generate-all-answers"), jsonPayload(questions), &out); err != nil {
		return nil, err
	}

	answers := make([]domain.Answer, len(questions))
	for i, question := range questions {
		if i >= len(out.Answers) || out.Answers[i].failed() {
			answers[i] = domain.UnanswerablePlaceholder(projectID, question)
			continue
		}
		a := out.Answers[i].answer()
		if a.ProjectID == "" {
			a.ProjectID = projectID
		}
		if a.Question == "" {
			a.Question = question
		}
		if err := checkedAnswer(&a); err != nil {
			c.log.Warn("discarding invalid answer", "project_id", projectID, "question", question, "error", err)
			answers[i] = domain.UnanswerablePlaceholder(projectID, question)
			continue
		}
		answers[i] = a
	}
	return &domain.GeneratedAnswers{ProjectID: projectID, Answers: answers}, nil
}

// UpdateAnswer applies a review decision.
func (c *Client) UpdateAnswer(ctx context.Context, in domain.UpdateAnswerInput) (*domain.Answer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{"answer_id": {in.AnswerID}, "status": {string(in.Status)}}
	if in.ManualText != "" {
		q.Set("manual_text", in.ManualText)
	}
	var w answerWire
	if err := post(ctx, c, c.apipath(q, "answers", "update-answer"), nil, &w); err != nil {
		return nil, err
	}
	a := w.answer()
	if a.ID == "" {
		a.ID = in.AnswerID
	}
	if err := checkedAnswer(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// checkedAnswer rejects a decoded answer whose confidence, citations or
// status fields are out of range.
func checkedAnswer(a *domain.Answer) error {
	if err := a.Validate(); err != nil {
		return &domain.Error{Kind: domain.ErrorKindServer, Message: "backend returned an invalid answer", Cause: err}
	}
	return nil
}
