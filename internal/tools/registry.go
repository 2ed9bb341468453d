// Package tools provides the MCP tool registry and the shared plumbing
// tool handlers are built on: context accessors for the intel client and
// logger, upstream response normalization, and result helpers.
//
// Tool packages register themselves from init via RegisterTool, so a
// blank import of a tool package is enough to make its tools available.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/metrics"
)

// ToolHandler is the function signature for MCP tool handlers
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// ToolRegistration holds a tool's metadata and handler
type ToolRegistration struct {
	Name           string
	Description    string
	Handler        ToolHandler
	Schema         mcp.Tool
	Profile        string
	RequiredScopes string // Falcon API scopes the tool needs, quoted in permission errors
}

// Global tool registry
var registry = make(map[string]*ToolRegistration)

// Profile definitions. "all" is not listed here; it is computed as the
// union of every profile.
var ProfileDefinitions = map[string][]string{
	"core": {
		"check_connectivity",
	},
	"intel": {
		"list_threat_actors",
		"get_actor_details",
		"search_iocs",
		"get_ioc_details",
		"get_actor_iocs",
		"get_recent_iocs",
	},
}

// RegisterTool adds a tool to the registry
func RegisterTool(reg *ToolRegistration) {
	registry[reg.Name] = reg
}

// GetTool retrieves a tool from the registry
func GetTool(name string) (*ToolRegistration, bool) {
	tool, ok := registry[name]
	return tool, ok
}

// GetAllRegisteredToolNames returns the names of every registered tool
func GetAllRegisteredToolNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// GetToolsForProfile returns all tool names for a given profile
func GetToolsForProfile(profile string) []string {
	if profile == "all" {
		// Return all tools from all profiles
		allTools := make(map[string]bool)
		for _, tools := range ProfileDefinitions {
			for _, tool := range tools {
				allTools[tool] = true
			}
		}
		result := make([]string, 0, len(allTools))
		for tool := range allTools {
			result = append(result, tool)
		}
		return result
	}

	tools, ok := ProfileDefinitions[profile]
	if !ok {
		return []string{}
	}
	return tools
}

// AddToolsToServer adds all tools for a profile to an MCP server
func AddToolsToServer(s *server.MCPServer, profile string) error {
	toolNames := GetToolsForProfile(profile)

	for _, name := range toolNames {
		reg, ok := GetTool(name)
		if !ok {
			// Tool not implemented yet - skip silently
			continue
		}

		// Wrap handler to convert between MCP request and our handler signature
		s.AddTool(reg.Schema, wrapHandler(reg))
	}

	return nil
}

// wrapHandler converts our ToolHandler to mcp-go's expected signature
// and layers in a per-invocation request ID, logging, and metrics.
func wrapHandler(reg *ToolRegistration) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Extract arguments using the method
		args := request.GetArguments()

		// Tag the invocation so server logs line up with CrowdStrike
		// audit trails via the X-Request-Id header
		requestID := uuid.NewString()
		ctx = falcon.WithRequestID(ctx, requestID)

		logger := GetLogger(ctx).With("tool", reg.Name, "request_id", requestID)
		logger.Debug("Tool call started")

		start := time.Now()
		result, err := reg.Handler(ctx, args)
		elapsed := time.Since(start)

		if err != nil {
			// Handlers report API failures through error results; a Go
			// error escaping here is a bug in the handler itself.
			logger.Error("Tool handler failed", "error", err, "duration", elapsed)
			return result, err
		}

		isError := result != nil && result.IsError
		if mgr := metrics.GetManager(ctx); mgr != nil {
			mgr.RecordToolCall(reg.Name, isError, elapsed)
		}

		logger.Debug("Tool call finished", "is_error", isError, "duration", elapsed)
		return result, nil
	}
}

// Helper functions for creating tool results

// ToJSON converts a value to JSON string without HTML escaping
func ToJSON(v interface{}) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false) // Prevent &, <, > from being escaped as \u0026, \u003c, \u003e

	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("{\"error\": \"failed to marshal JSON: %v\"}", err)
	}

	// encoder.Encode() adds a trailing newline, trim it
	return strings.TrimSuffix(buf.String(), "\n")
}

// SuccessResult creates a successful tool result
func SuccessResult(data interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(ToJSON(data))
}

// TextResult creates a plain text tool result. Empty query results are
// reported this way rather than as errors.
func TextResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultText(message)
}

// TextResultf creates a plain text tool result with formatting
func TextResultf(format string, args ...interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf(format, args...))
}

// ErrorResult creates an error tool result
func ErrorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorResultf creates an error tool result with formatting
func ErrorResultf(format string, args ...interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}
