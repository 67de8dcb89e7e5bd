package auth

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
)

// FileCredentials is the content of the credentials file passed on the
// command line: the school's Schoology domain, the API consumer key pair,
// and optionally a previously authorized user token pair. When the user
// lines are absent the first-run authorization flow obtains them.
type FileCredentials struct {
	Domain         string
	ConsumerKey    string
	ConsumerSecret string
	UserToken      string
	UserSecret     string
}

// HasUserToken reports whether the file already carries a user token pair.
func (c *FileCredentials) HasUserToken() bool {
	return c.UserToken != "" && c.UserSecret != ""
}

// Credentials converts the file content into API signing credentials.
func (c *FileCredentials) Credentials() schoology.Credentials {
	return schoology.Credentials{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		Token:          c.UserToken,
		TokenSecret:    c.UserSecret,
	}
}

// LoadCredentialsFile parses a newline-separated credentials file:
// domain, consumer key, consumer secret, then optionally user token and
// user secret.
func LoadCredentialsFile(path string) (*FileCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read creds file")
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	get := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}

	creds := &FileCredentials{
		Domain:         get(0),
		ConsumerKey:    get(1),
		ConsumerSecret: get(2),
		UserToken:      get(3),
		UserSecret:     get(4),
	}

	if creds.Domain == "" {
		return nil, errors.New("no schoology domain")
	}
	if creds.ConsumerKey == "" {
		return nil, errors.New("no app token")
	}
	if creds.ConsumerSecret == "" {
		return nil, errors.New("no app secret")
	}

	return creds, nil
}
