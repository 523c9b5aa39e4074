// Package mcp provides an MCP (Model Context Protocol) server adapter for
// DueDiligence. It lets AI assistants inspect projects, generate answers
// and record review decisions through the same services as the CLI.
package mcp

import "errors"

// ErrMissingProjectService is returned when the project service is not provided.
var ErrMissingProjectService = errors.New("mcp: project service is required")

// errUnavailable is returned by tools whose service was not wired.
var errUnavailable = errors.New("mcp: tool is not available in this configuration")
