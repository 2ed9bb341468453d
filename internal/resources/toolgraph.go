// Package resources provides MCP resources for the Falcon Intel MCP server.
package resources

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolGraphURI is the URI for the tool graph resource.
const ToolGraphURI = "falcon-intel://tool-graph"

// ToolRelationship describes a relationship between two tools.
type ToolRelationship struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
}

// ToolGraph contains the tool relationships and entry points
// for LLM orchestration.
type ToolGraph struct {
	Version       string             `json:"version"`
	Relationships []ToolRelationship `json:"relationships"`
	EntryPoints   []string           `json:"entryPoints"`
}

// toolGraphData contains the predefined relationships between tools
// that help LLMs understand how to chain tool calls.
var toolGraphData = ToolGraph{
	Version: "1.0",
	Relationships: []ToolRelationship{
		// list_threat_actors provides actor_name to the actor drill-down tools
		{From: "list_threat_actors", To: "get_actor_details", Type: "provides", Field: "actor_name"},
		{From: "list_threat_actors", To: "get_actor_iocs", Type: "provides", Field: "actor_name"},
		{From: "get_actor_details", To: "get_actor_iocs", Type: "provides", Field: "actor_name"},
		// IOC listings provide indicator_value for detail lookups
		{From: "search_iocs", To: "get_ioc_details", Type: "provides", Field: "indicator_value"},
		{From: "get_recent_iocs", To: "get_ioc_details", Type: "provides", Field: "indicator_value"},
		{From: "get_actor_iocs", To: "get_ioc_details", Type: "provides", Field: "indicator_value"},
		// IOC details name the actors attributed to an indicator
		{From: "get_ioc_details", To: "get_actor_details", Type: "provides", Field: "actor_name"},
		// Chain relationships
		{From: "check_connectivity", To: "list_threat_actors", Type: "chains"},
		{From: "get_recent_iocs", To: "search_iocs", Type: "chains"},
	},
	EntryPoints: []string{
		"check_connectivity",
		"list_threat_actors",
		"get_recent_iocs",
	},
}

// NewToolGraphResource creates the tool graph resource definition.
func NewToolGraphResource() mcp.Resource {
	return mcp.NewResource(
		ToolGraphURI,
		"Tool Relationship Graph",
		mcp.WithResourceDescription("Describes relationships between Falcon Intel MCP tools to help LLMs understand how to chain tool calls effectively."),
		mcp.WithMIMEType("application/json"),
	)
}

// ToolGraphHandler handles requests for the tool graph resource.
func ToolGraphHandler(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonData, err := json.Marshal(toolGraphData)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ToolGraphURI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// AddResourcesToServer adds all resources to the MCP server.
func AddResourcesToServer(s *server.MCPServer) {
	s.AddResource(NewToolGraphResource(), ToolGraphHandler)
}
