package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/s-nishad/DueDiligence/internal/logger"
)

// serverName is the implementation name reported to MCP clients.
const serverName = "duediligence"

// shutdownTimeout bounds how long in-flight HTTP sessions may finish.
const shutdownTimeout = 5 * time.Second

// instructions tells the assistant how the tools fit together.
const instructions = `Tools operate on due diligence projects.
Call list_projects first and pass a project_id to the other tools.
generate_answer returns an answer with citations; review it with
review_answer (CONFIRMED, REJECTED, MANUAL_UPDATED with manual_text, or
PENDING). Long-running backend jobs are polled with request_status.`

// Server exposes the client services over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
	log    *slog.Logger
}

// NewServer creates an MCP server over ports. version is reported to
// clients during initialization; empty uses "dev".
func NewServer(ports *Ports, version string) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingProjectService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if version == "" {
		version = "dev"
	}

	impl := &mcp.Implementation{Name: serverName, Version: version}
	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		log:    logger.For("mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Debug("serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("http shutdown", "error", err)
		}
	}()

	s.log.Debug("serving over http", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
