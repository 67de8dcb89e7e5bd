package schoology

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgyexport/pkg/config"
	errs "sgyexport/pkg/errors"
	"sgyexport/pkg/logger"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

// Helper function to create a response
func newResponse(req *http.Request, statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	return cfg
}

func newTestClient(handler func(req *http.Request) (*http.Response, error)) *Client {
	client := NewClient(Credentials{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
	}, testConfig(), logger.NewTestLogger())
	client.SetHTTPClient(&http.Client{
		Transport: &mockRoundTripper{handler: handler},
	})
	return client
}

func TestClientGetNode(t *testing.T) {
	var gotAuth string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		return newResponse(req, http.StatusOK, `{"id": 42, "title": "Algebra"}`), nil
	})

	node, err := client.GetNode(context.Background(), BaseURL+"/sections/42")
	require.NoError(t, err)

	id, err := node.Int("id", "section record")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.Contains(t, gotAuth, `oauth_consumer_key="ckey"`)
}

func TestClientStatusClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		errType    errs.ErrorType
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, errType: errs.ErrorTypeAuth},
		{name: "forbidden", statusCode: http.StatusForbidden, errType: errs.ErrorTypeAuth},
		{name: "not found", statusCode: http.StatusNotFound, errType: errs.ErrorTypeNotFound},
		{name: "teapot", statusCode: http.StatusTeapot, errType: errs.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				return newResponse(req, tt.statusCode, ""), nil
			})

			_, err := client.GetNode(context.Background(), BaseURL+"/app-user-info")
			require.Error(t, err)

			var typed *errs.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tt.errType, typed.Type)
			assert.Equal(t, tt.statusCode, typed.Code)
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	requests := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		requests++
		if requests < 3 {
			return newResponse(req, http.StatusInternalServerError, ""), nil
		}
		return newResponse(req, http.StatusOK, `{"id": 1}`), nil
	})

	_, err := client.GetNode(context.Background(), BaseURL+"/app-user-info")
	require.NoError(t, err)
	assert.Equal(t, 3, requests)
}

func TestClientDoesNotRetryNotFound(t *testing.T) {
	requests := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		requests++
		return newResponse(req, http.StatusNotFound, ""), nil
	})

	_, err := client.GetNode(context.Background(), BaseURL+"/users/999")
	require.Error(t, err)
	assert.Equal(t, 1, requests)
}

func TestClientResignsEachAttempt(t *testing.T) {
	var headers []string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		headers = append(headers, req.Header.Get("Authorization"))
		return newResponse(req, http.StatusInternalServerError, ""), nil
	})

	_, err := client.GetNode(context.Background(), BaseURL+"/app-user-info")
	require.Error(t, err)
	require.Len(t, headers, 3)
	assert.NotEqual(t, headers[0], headers[1])
	assert.NotEqual(t, headers[1], headers[2])
}

func TestClientParseError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "<html>maintenance</html>"), nil
	})

	_, err := client.GetNode(context.Background(), BaseURL+"/app-user-info")
	require.Error(t, err)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.ErrorTypeParsing, typed.Type)
}

func TestClientGetText(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "oauth_token=abc&oauth_token_secret=def"), nil
	})

	text, err := client.GetText(context.Background(), BaseURL+"/oauth/request_token")
	require.NoError(t, err)
	assert.Equal(t, "oauth_token=abc&oauth_token_secret=def", text)
}
