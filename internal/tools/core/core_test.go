package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/tools"
	"github.com/carlosmmatos/falcon-mcp-go/internal/tools/testutil"
)

// getTextContent extracts text from MCP Content interface
func getTextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "Content should be TextContent")
	return textContent.Text
}

func TestCheckConnectivity(t *testing.T) {
	t.Run("reports a reachable API", func(t *testing.T) {
		var captured falcon.QueryOptions
		mock := &testutil.MockIntelClient{
			QueryActorEntitiesFunc: func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
				captured = opts
				return &falcon.Response{
					StatusCode: 200,
					Body: falcon.Dict{
						"resources": []interface{}{map[string]interface{}{"name": "FANCY BEAR"}},
					},
				}, nil
			},
		}
		ctx := tools.WithIntelClient(context.Background(), mock)

		reg, ok := tools.GetTool("check_connectivity")
		require.True(t, ok, "check_connectivity should be registered")

		result, err := reg.Handler(ctx, map[string]interface{}{})

		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, 1, captured.Limit, "the probe should ask for a single actor")

		var data map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(getTextContent(t, result)), &data))
		assert.Equal(t, "connected", data["status"])
		assert.Equal(t, "CrowdStrike Falcon Intel API is reachable and authorized", data["message"])
	})

	t.Run("surfaces scope guidance when the probe is denied", func(t *testing.T) {
		mock := &testutil.MockIntelClient{
			QueryActorEntitiesFunc: func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
				return &falcon.Response{
					StatusCode: 403,
					Body: falcon.Dict{
						"errors": []interface{}{
							map[string]interface{}{"code": float64(403), "message": "access denied"},
						},
					},
				}, nil
			},
		}
		ctx := tools.WithIntelClient(context.Background(), mock)

		reg, ok := tools.GetTool("check_connectivity")
		require.True(t, ok)

		result, err := reg.Handler(ctx, map[string]interface{}{})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		content := getTextContent(t, result)
		assert.Contains(t, content, "API Access Denied (403)")
		assert.Contains(t, content, tools.ActorsReadScope)
	})

	t.Run("surfaces generic API errors", func(t *testing.T) {
		mock := &testutil.MockIntelClient{
			QueryActorEntitiesFunc: func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
				return &falcon.Response{StatusCode: 503, Body: falcon.Dict{}}, nil
			},
		}
		ctx := tools.WithIntelClient(context.Background(), mock)

		reg, ok := tools.GetTool("check_connectivity")
		require.True(t, ok)

		result, err := reg.Handler(ctx, map[string]interface{}{})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "API Error: 503 - [Unknown error]", getTextContent(t, result))
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		mock := &testutil.MockIntelClient{
			QueryActorEntitiesFunc: func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
				return nil, errors.New("connection refused")
			},
		}
		ctx := tools.WithIntelClient(context.Background(), mock)

		reg, ok := tools.GetTool("check_connectivity")
		require.True(t, ok)

		result, err := reg.Handler(ctx, map[string]interface{}{})

		require.NoError(t, err, "transport failures must not escape the handler")
		assert.True(t, result.IsError)
		assert.Contains(t, getTextContent(t, result), "Error: connection refused")
	})

	t.Run("reports a missing client", func(t *testing.T) {
		reg, ok := tools.GetTool("check_connectivity")
		require.True(t, ok)

		result, err := reg.Handler(context.Background(), map[string]interface{}{})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, getTextContent(t, result), "Error: intel client not found in context")
	})
}
