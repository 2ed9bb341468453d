package falcon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClient stands up a fake Falcon API that issues tokens for the
// test credentials and routes everything else to apiHandler.
func testClient(t *testing.T, apiHandler http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("client_id") != "test-id" || r.FormValue("client_secret") != "test-secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"errors": [{"code": 403, "message": "access denied, authorization failed"}]}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "test-token", "token_type": "bearer", "expires_in": 1799}`)
	})
	if apiHandler != nil {
		mux.HandleFunc("/", apiHandler)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(client.base.CloseIdleConnections)

	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{ClientID: "id-only"}, testLogger())
	assert.Error(t, err)

	_, err = NewClient(Config{ClientSecret: "secret-only"}, testLogger())
	assert.Error(t, err)
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client, err := NewClient(Config{ClientID: "id", ClientSecret: "secret"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
}

func TestLogin(t *testing.T) {
	client := testClient(t, nil)
	require.NoError(t, client.Login(context.Background()))
}

func TestLoginBadCredentials(t *testing.T) {
	client := testClient(t, nil)
	client.oauth.ClientSecret = "wrong"

	err := client.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "falcon authentication failed")
}

func TestQuerySendsBearerToken(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"resources": []}`)
	})

	resp, err := client.QueryActorEntities(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestQueryParamEncoding(t *testing.T) {
	tests := []struct {
		name string
		opts QueryOptions
		want url.Values
	}{
		{
			name: "zero options omit every parameter",
			opts: QueryOptions{},
			want: url.Values{},
		},
		{
			name: "populated options are all encoded",
			opts: QueryOptions{
				Filter: "type:'domain'",
				Sort:   "published_date.desc",
				Limit:  25,
				Offset: 50,
			},
			want: url.Values{
				"filter": {"type:'domain'"},
				"sort":   {"published_date.desc"},
				"limit":  {"25"},
				"offset": {"50"},
			},
		},
		{
			name: "negative limit is passed through for the API to reject",
			opts: QueryOptions{Limit: -999},
			want: url.Values{"limit": {"-999"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery url.Values
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"resources": []}`)
			})

			_, err := client.QueryIndicatorEntities(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotQuery)
		})
	}
}

func TestQueryErrorStatusIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"errors": [{"code": 403, "message": "access denied"}]}`)
	})

	resp, err := client.QueryActorEntities(context.Background(), QueryOptions{Limit: 1})
	require.NoError(t, err, "HTTP error statuses are responses, not Go errors")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	errs := resp.Body.GetDicts("errors")
	require.Len(t, errs, 1)
	assert.Equal(t, "access denied", errs[0].GetString("message"))
}

func TestQueryMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>definitely not JSON</html>`)
	})

	_, err := client.QueryActorEntities(context.Background(), QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response body")
}

func TestQueryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		BaseURL:      srv.URL,
		Timeout:      time.Second,
	}, testLogger())
	require.NoError(t, err)
	srv.Close()

	_, err = client.QueryIndicatorEntities(context.Background(), QueryOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "falcon request failed")
}

func TestQueryForwardsRequestID(t *testing.T) {
	var gotRequestID string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"resources": []}`)
	})

	ctx := WithRequestID(context.Background(), "req-123")
	_, err := client.QueryActorEntities(ctx, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "req-123", gotRequestID)
}

type captureRecorder struct {
	operation  string
	statusCode int
}

func (c *captureRecorder) RecordUpstreamRequest(operation string, statusCode int) {
	c.operation = operation
	c.statusCode = statusCode
}

func TestQueryRecordsUpstreamRequest(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"errors": [{"code": 500, "message": "upstream exploded"}]}`)
	})

	rec := &captureRecorder{}
	client.SetRecorder(rec)

	_, err := client.QueryIndicatorEntities(context.Background(), QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "query_indicator_entities", rec.operation)
	assert.Equal(t, http.StatusInternalServerError, rec.statusCode)
}
