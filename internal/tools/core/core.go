// Package core provides baseline MCP tools for verifying the server and
// its connection to the Falcon API.
package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/tools"
)

func init() {
	// Register all core tools
	RegisterCheckConnectivity()
}

// RegisterCheckConnectivity registers the check_connectivity tool
func RegisterCheckConnectivity() {
	tools.RegisterTool(&tools.ToolRegistration{
		Name:           "check_connectivity",
		Description:    "Verify connectivity and authorization against the Falcon API",
		Profile:        "core",
		RequiredScopes: tools.ActorsReadScope,
		Schema: mcp.NewTool("check_connectivity",
			mcp.WithDescription("Verify the server can reach and is authorized against the CrowdStrike Falcon API"),
		),
		Handler: func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
			client, err := tools.GetIntelClient(ctx)
			if err != nil {
				return tools.ErrorResultf("Error: %v", err), nil
			}

			// A one-actor query is the cheapest authorized probe
			resp, err := client.QueryActorEntities(ctx, falcon.QueryOptions{Limit: 1})
			if err != nil {
				tools.GetLogger(ctx).Error("Connectivity check failed", "error", err)
				return tools.ErrorResultf("Error: %v", err), nil
			}

			outcome := tools.Normalize(resp, tools.ActorsReadScope)
			if !outcome.OK() {
				return tools.ErrorResult(outcome.Err), nil
			}

			return tools.SuccessResult(map[string]interface{}{
				"status":  "connected",
				"message": "CrowdStrike Falcon Intel API is reachable and authorized",
			}), nil
		},
	})
}
