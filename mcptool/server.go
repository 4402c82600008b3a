package mcptool

import (
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
var Version = "dev"

// New builds the MCP server. history may be nil when no store is configured.
func New(score *ScoreTool, history *HistoryTool) *server.MCPServer {
	s := server.NewMCPServer(
		"meeting-clarity",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Scores meeting jargon reports and lists past meeting clarity results."),
	)
	s.AddTool(score.Definition(), score.Handle)
	if history != nil {
		s.AddTool(history.Definition(), history.Handle)
	}
	return s
}

// ServeStdio runs s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
