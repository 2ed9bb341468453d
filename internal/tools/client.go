package tools

import (
	"context"

	"github.com/carlosmmatos/falcon-mcp-go/internal/falcon"
)

// IntelClient defines the interface for querying the CrowdStrike Falcon
// Intel API. It is the surface tool handlers consume; they receive an
// implementation from the request context (see GetIntelClient), which
// lets tests substitute a mock without real API credentials.
//
// A ready-made mock with function fields lives in internal/tools/testutil:
//
//	mock := &testutil.MockIntelClient{
//	    QueryActorEntitiesFunc: func(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error) {
//	        return &falcon.Response{StatusCode: 200, Body: falcon.Dict{/* test data */}}, nil
//	    },
//	}
//	ctx := tools.WithIntelClient(context.Background(), mock)
//
// Note: the real *falcon.Client automatically implements this
// interface. The compile-time check at the bottom of this file ensures
// compatibility.
type IntelClient interface {
	// QueryActorEntities runs a combined threat actor query returning
	// full actor records.
	QueryActorEntities(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error)

	// QueryIndicatorEntities runs a combined indicator query returning
	// full IOC records.
	QueryIndicatorEntities(ctx context.Context, opts falcon.QueryOptions) (*falcon.Response, error)
}

// Compile-time check that *falcon.Client implements IntelClient.
// If the client's API changes incompatibly, this will fail to compile.
var _ IntelClient = (*falcon.Client)(nil)
