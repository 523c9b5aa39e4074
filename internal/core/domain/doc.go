// Package domain defines the core entities of the DueDiligence client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types exchanged with the questionnaire backend:
//
//   - Project: A named corpus of documents plus a questionnaire
//   - Document: An uploaded file and its indexing lifecycle
//   - Answer: A generated response with confidence and citations
//   - Request: A handle on a long-running backend job
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse. Types here carry no I/O; they hold data and
// the predicates that keep that data consistent (status machines, range
// checks, derived project status).
//
// # Import Rules
//
//   - Can Import: Standard library, go-playground/validator for struct tags
//   - Cannot Import: Any internal/ package
package domain
