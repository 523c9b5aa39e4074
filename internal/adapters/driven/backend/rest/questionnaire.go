package rest

import (
	"context"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// ParseQuestionnaire uploads a questionnaire file for parsing.
func (c *Client) ParseQuestionnaire(ctx context.Context, upload domain.Upload) (*domain.ParsedQuestionnaire, error) {
	if err := upload.Validate(); err != nil {
		return nil, err
	}
	body, err := multipartPayload(upload)
	if err != nil {
		return nil, &domain.Error{Kind: domain.ErrorKindValidation, Message: "cannot prepare upload", Cause: err}
	}
	var out struct {
		Filename string        `json:"filename"`
		Sections []sectionWire `json:"sections"`
	}
	if err := post(ctx, c, c.apipath(nil, "questionnaire", "parse"), body, &out); err != nil {
		return nil, err
	}
	parsed := &domain.ParsedQuestionnaire{
		Filename: firstNonEmpty(out.Filename, upload.Filename),
		Sections: make([]domain.Section, 0, len(out.Sections)),
	}
	for i := range out.Sections {
		parsed.Sections = append(parsed.Sections, out.Sections[i].section(i))
	}
	return parsed, nil
}

// GetQuestionnaire fetches the questionnaire attached to a project.
func (c *Client) GetQuestionnaire(ctx context.Context, projectID string) ([]domain.Section, error) {
	if err := requireID("project id", projectID); err != nil {
		return nil, err
	}
	var out struct {
		Sections []sectionWire `json:"sections"`
	}
	if err := get(ctx, c, c.apipath(nil, "questionnaire", projectID), &out); err != nil {
		return nil, err
	}
	sections := make([]domain.Section, 0, len(out.Sections))
	for i := range out.Sections {
		sections = append(sections, out.Sections[i].section(i))
	}
	return sections, nil
}
