package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	withCode := &Error{Type: ErrorTypeAuth, Message: "authentication failed", Code: 401}
	assert.Equal(t, "auth error (code 401): authentication failed", withCode.Error())

	withoutCode := &Error{Type: ErrorTypeParsing, Message: "failed to parse JSON"}
	assert.Equal(t, "parsing error: failed to parse JSON", withoutCode.Error())
}

func TestNewMissingField(t *testing.T) {
	err := NewMissingField("api_uid", "app user info")

	assert.Equal(t, ErrorTypeMissingField, err.Type)
	assert.Contains(t, err.Error(), `"api_uid"`)
	assert.Contains(t, err.Error(), "app user info")
}

func TestNewProtocol(t *testing.T) {
	err := NewProtocol(`unrecognized folder item type "quiz"`)

	assert.Equal(t, ErrorTypeProtocol, err.Type)
	assert.Contains(t, err.Error(), "quiz")
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorType{ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError}
	for _, et := range retryable {
		assert.True(t, IsRetryable(et), "expected %s to be retryable", et)
	}

	permanent := []ErrorType{
		ErrorTypeAuth, ErrorTypeParsing, ErrorTypeNotFound,
		ErrorTypeMissingField, ErrorTypeProtocol, ErrorTypeFilesystem, ErrorTypeUnknown,
	}
	for _, et := range permanent {
		assert.False(t, IsRetryable(et), "expected %s not to be retryable", et)
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{code: 0, retryable: true},
		{code: 429, retryable: true},
		{code: 500, retryable: true},
		{code: 502, retryable: true},
		{code: 503, retryable: true},
		{code: 504, retryable: true},
		{code: 511, retryable: true},
		{code: 401, retryable: false},
		{code: 403, retryable: false},
		{code: 404, retryable: false},
		{code: 400, retryable: false},
		{code: 200, retryable: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.retryable, IsRetryableStatusCode(tt.code), "status %d", tt.code)
	}
}
