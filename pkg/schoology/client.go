package schoology

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"sgyexport/pkg/config"
	errs "sgyexport/pkg/errors"
	"sgyexport/pkg/logger"
	"sgyexport/pkg/ratelimit"
	"sgyexport/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is an authenticated Schoology API client. Every request carries a
// freshly signed OAuth1 header and an Accept: application/json header, is
// throttled by the rate limiter and retried on transient failures per the
// configured backoff policy.
type Client struct {
	httpClient *http.Client
	creds      Credentials
	limiter    ratelimit.Limiter
	retrier    *retry.Retrier
	logger     logger.Logger
}

// NewClient creates a new Schoology API client
func NewClient(creds Credentials, cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	retryCfg := &retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    cfg.Retry.BaseDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Multiplier:   cfg.Retry.Multiplier,
			JitterFactor: cfg.Retry.JitterFactor,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: context.Background(),
		Logger:  log,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Schoology.Timeout,
		},
		creds:   creds,
		limiter: ratelimit.NewSlidingWindow(cfg.RateLimit.RequestsPerMinute, time.Minute),
		retrier: retry.NewRetrier(retryCfg),
		logger:  log,
	}
}

// Credentials returns the credentials the client signs with.
func (c *Client) Credentials() Credentials {
	return c.creds
}

// SetCredentials swaps the signing credentials, e.g. once the first-run
// authorization flow has produced a user token pair.
func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

// SetHTTPClient replaces the underlying HTTP client, for callers that need
// custom transport settings.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// fetch performs a single signed GET and returns the response body.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	c.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Authorization", AuthorizationHeader(c.creds))
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"size":     len(body),
		"duration": time.Since(start),
	})

	return body, nil
}

// get performs a signed GET with retries on transient failures.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.retrier.WithContext(ctx).Do(func() error {
		var fetchErr error
		body, fetchErr = c.fetch(ctx, url)
		return fetchErr
	})
	return body, err
}

// GetNode performs a GET request and decodes the JSON response into a Node
func (c *Client) GetNode(ctx context.Context, url string) (Node, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var node Node
	if err := json.Unmarshal(body, &node); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
		}
	}

	return node, nil
}

// GetBytes performs a GET request and returns the raw response body. Used
// for pictures, banners and file attachment downloads.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

// GetText performs a GET request and returns the body as text. The OAuth
// token endpoints answer with form-encoded text rather than JSON.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "authentication failed",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 400:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return nil
	}
}
