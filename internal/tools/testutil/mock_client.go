package testutil

import (
	"context"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
	"github.com/carlosmmatos/falcon-mcp-go/internal/tools"
)

// MockIntelClient is a mock implementation of tools.IntelClient for testing
// It allows tests to specify behavior for each method via function fields
type MockIntelClient struct {
	QueryActorEntitiesFunc     func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error)
	QueryIndicatorEntitiesFunc func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error)
}

// Compile-time check that the mock satisfies the interface it stands in for
var _ tools.IntelClient = (*MockIntelClient)(nil)

// QueryActorEntities calls QueryActorEntitiesFunc if set, otherwise returns
// an empty successful response
func (m *MockIntelClient) QueryActorEntities(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
	if m.QueryActorEntitiesFunc != nil {
		return m.QueryActorEntitiesFunc(ctx, opts)
	}
	return emptyResponse(), nil
}

// QueryIndicatorEntities calls QueryIndicatorEntitiesFunc if set, otherwise
// returns an empty successful response
func (m *MockIntelClient) QueryIndicatorEntities(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
	if m.QueryIndicatorEntitiesFunc != nil {
		return m.QueryIndicatorEntitiesFunc(ctx, opts)
	}
	return emptyResponse(), nil
}

func emptyResponse() *falcon.Response {
	return &falcon.Response{
		StatusCode: 200,
		Body:       falcon.Dict{"resources": []interface{}{}},
	}
}
