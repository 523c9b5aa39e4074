package mcp

import (
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Projects lists and inspects projects.
	Projects driving.ProjectService

	// Documents lists project documents.
	Documents driving.DocumentService

	// Answers generates answers.
	Answers driving.AnswerService

	// Review records reviewer decisions.
	Review driving.ReviewController

	// Tracker reports job state.
	Tracker driving.JobTracker

	// Questionnaires reads project questionnaires.
	Questionnaires driving.QuestionnaireService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Projects == nil {
		return ErrMissingProjectService
	}
	// The rest are optional; their tools report errUnavailable.
	return nil
}
