package mcptool

import (
	"github.com/mark3labs/mcp-go/server"

	"deviation-analyzer/internal/service"
)

// Version is set at build time via ldflags.
var Version = "dev"

const instructions = "Conversation deviation analyzer. Call analyze_conversation with a JSON " +
	"array of user/model messages to get a report on where the model drifted from the user's intent."

// NewServer creates the MCP server with every tool registered.
func NewServer(svc service.AnalyzeService) *server.MCPServer {
	s := server.NewMCPServer(
		"deviation-analyzer",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	analyzeTool := NewAnalyzeTool(svc)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	return s
}
