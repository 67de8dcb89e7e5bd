package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgyexport/pkg/config"
	"sgyexport/pkg/logger"
	"sgyexport/pkg/schoology"
)

func TestParseTokenResponse(t *testing.T) {
	token, secret, err := parseTokenResponse("oauth_token=abc&oauth_token_secret=def", "request token")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "def", secret)
}

func TestParseTokenResponseExtraFields(t *testing.T) {
	token, secret, err := parseTokenResponse(
		"oauth_token=abc&oauth_token_secret=def&xoauth_token_ttl=3600", "access token")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "def", secret)
}

func TestParseTokenResponseMissingParts(t *testing.T) {
	_, _, err := parseTokenResponse("oauth_token_secret=def", "request token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request token")

	_, _, err = parseTokenResponse("oauth_token=abc", "access token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret")
}

// recordingTransport answers the two OAuth token endpoints and records the
// Authorization header of every request.
type recordingTransport struct {
	headers []string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.headers = append(rt.headers, req.Header.Get("Authorization"))

	var body string
	switch {
	case strings.HasSuffix(req.URL.Path, "/oauth/request_token"):
		body = "oauth_token=reqtoken&oauth_token_secret=reqsecret"
	case strings.HasSuffix(req.URL.Path, "/oauth/access_token"):
		body = "oauth_token=usertoken&oauth_token_secret=usersecret"
	default:
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewBufferString("")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestAuthorize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Retry.BaseDelay = time.Millisecond

	transport := &recordingTransport{}
	client := schoology.NewClient(schoology.Credentials{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
	}, cfg, logger.NewTestLogger())
	client.SetHTTPClient(&http.Client{Transport: transport})

	log := logger.NewTestLogger()
	token, secret, err := Authorize(context.Background(), client, "myschool.schoology.com", strings.NewReader("\n"), log)
	require.NoError(t, err)

	assert.Equal(t, "usertoken", token)
	assert.Equal(t, "usersecret", secret)

	// Request token call signs with the consumer secret alone; the access
	// token call signs with the request token pair
	require.Len(t, transport.headers, 2)
	assert.Contains(t, transport.headers[0], `oauth_token=""`)
	assert.Contains(t, transport.headers[0], `oauth_signature="csecret%26"`)
	assert.Contains(t, transport.headers[1], `oauth_token="reqtoken"`)
	assert.Contains(t, transport.headers[1], `oauth_signature="csecret%26reqsecret"`)

	// The client is left signing with the user token pair
	assert.Equal(t, "usertoken", client.Credentials().Token)
	assert.Equal(t, "usersecret", client.Credentials().TokenSecret)

	// The authorize URL was surfaced to the user
	found := false
	for _, msg := range log.Messages() {
		if strings.Contains(msg.Message, "myschool.schoology.com/oauth/authorize") &&
			strings.Contains(msg.Message, "oauth_token=reqtoken") {
			found = true
		}
	}
	assert.True(t, found, "authorize URL not logged")
}
