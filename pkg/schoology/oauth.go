package schoology

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Credentials holds the OAuth1 credentials for a run. Token and TokenSecret
// are empty during the two-legged request-token phase and set once the user
// has authorized the application.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
}

// HasUserToken reports whether a user token pair is present.
func (c Credentials) HasUserToken() bool {
	return c.Token != "" && c.TokenSecret != ""
}

// WithUserToken returns a copy of the credentials carrying the given user
// token pair.
func (c Credentials) WithUserToken(token, secret string) Credentials {
	c.Token = token
	c.TokenSecret = secret
	return c
}

// AuthorizationHeader produces the OAuth1 PLAINTEXT authorization header for
// one request. Each call uses a fresh nonce and timestamp, so a retried
// request re-signs rather than replaying the previous header.
func AuthorizationHeader(c Credentials) string {
	nonce := uuid.NewString()
	timestamp := time.Now().Unix()
	return fmt.Sprintf(
		`OAuth realm="Schoology API",oauth_consumer_key="%s",oauth_token="%s",oauth_nonce="%s",oauth_timestamp="%d",oauth_signature_method="PLAINTEXT",oauth_version="1.0",oauth_signature="%s%%26%s"`,
		c.ConsumerKey, c.Token, nonce, timestamp, c.ConsumerSecret, c.TokenSecret,
	)
}
