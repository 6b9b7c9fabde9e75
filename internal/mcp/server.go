package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/privacykit/cohortd/internal/classifier"
	"github.com/privacykit/cohortd/internal/cohort"
	"github.com/privacykit/cohortd/internal/metrics"
	"github.com/privacykit/cohortd/internal/taxonomy"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes cohort and classification tools.
type Server struct {
	taxonomy   *taxonomy.Manager
	classifier *classifier.Classifier
	cohorts    *cohort.Engine
	metrics    *metrics.Engine
	mcp        *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(tax *taxonomy.Manager, cls *classifier.Classifier, cohorts *cohort.Engine, me *metrics.Engine) *Server {
	s := &Server{
		taxonomy:   tax,
		classifier: cls,
		cohorts:    cohorts,
		metrics:    me,
	}

	s.mcp = server.NewMCPServer(
		"cohortd",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(classifyDomainTool, s.handleClassifyDomain)
	s.mcp.AddTool(searchTopicsTool, s.handleSearchTopics)
	s.mcp.AddTool(getCohortsTool, s.handleGetCohorts)
	s.mcp.AddTool(getCohortMetricsTool, s.handleGetCohortMetrics)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
