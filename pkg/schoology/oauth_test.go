package schoology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizationHeaderTwoLegged(t *testing.T) {
	creds := Credentials{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
	}

	header := AuthorizationHeader(creds)

	assert.Contains(t, header, `OAuth realm="Schoology API"`)
	assert.Contains(t, header, `oauth_consumer_key="ckey"`)
	assert.Contains(t, header, `oauth_token=""`)
	assert.Contains(t, header, `oauth_signature_method="PLAINTEXT"`)
	assert.Contains(t, header, `oauth_version="1.0"`)
	// PLAINTEXT signature is "<consumer secret>%26<token secret>"
	assert.Contains(t, header, `oauth_signature="csecret%26"`)
}

func TestAuthorizationHeaderThreeLegged(t *testing.T) {
	creds := Credentials{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
	}.WithUserToken("utoken", "usecret")

	header := AuthorizationHeader(creds)

	assert.Contains(t, header, `oauth_token="utoken"`)
	assert.Contains(t, header, `oauth_signature="csecret%26usecret"`)
}

func TestAuthorizationHeaderFreshNonce(t *testing.T) {
	creds := Credentials{ConsumerKey: "ckey", ConsumerSecret: "csecret"}

	first := AuthorizationHeader(creds)
	second := AuthorizationHeader(creds)

	assert.NotEqual(t, first, second)
}

func TestCredentialsHasUserToken(t *testing.T) {
	creds := Credentials{ConsumerKey: "ckey", ConsumerSecret: "csecret"}
	assert.False(t, creds.HasUserToken())

	assert.False(t, creds.WithUserToken("token", "").HasUserToken())
	assert.True(t, creds.WithUserToken("token", "secret").HasUserToken())

	// WithUserToken does not mutate the receiver
	assert.False(t, creds.HasUserToken())
}
