package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"sgyexport/pkg/logger"
	"sgyexport/pkg/schoology"
)

// Authorize runs the three-legged OAuth1 flow: obtain a request token with
// the consumer credentials alone, have the user approve it in the browser,
// then trade it for an access token pair. The client is left signing with
// the obtained user tokens.
func Authorize(ctx context.Context, client *schoology.Client, domain string, in io.Reader, log logger.Logger) (string, string, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	consumer := client.Credentials()
	client.SetCredentials(schoology.Credentials{
		ConsumerKey:    consumer.ConsumerKey,
		ConsumerSecret: consumer.ConsumerSecret,
	})

	body, err := client.GetText(ctx, schoology.APIURL("oauth/request_token"))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to obtain request token")
	}
	requestToken, requestSecret, err := parseTokenResponse(body, "request token")
	if err != nil {
		return "", "", err
	}

	log.Info(fmt.Sprintf("https://%s/oauth/authorize?oauth_callback=example.com&oauth_token=%s", domain, requestToken))
	log.Info("open the above url and press ENTER once authorized")
	waitForConfirmation(in)

	client.SetCredentials(consumer.WithUserToken(requestToken, requestSecret))

	body, err = client.GetText(ctx, schoology.APIURL("oauth/access_token"))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to obtain access token")
	}
	userToken, userSecret, err := parseTokenResponse(body, "access token")
	if err != nil {
		return "", "", err
	}

	client.SetCredentials(consumer.WithUserToken(userToken, userSecret))
	return userToken, userSecret, nil
}

// waitForConfirmation blocks until the user presses ENTER. When input is
// not a terminal (tests, piped runs) there is nobody to wait for.
func waitForConfirmation(in io.Reader) {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return
	}
	_, _ = bufio.NewReader(in).ReadString('\n')
}

// parseTokenResponse extracts the token pair from a form-encoded OAuth
// token endpoint response.
func parseTokenResponse(body, context string) (string, string, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to parse %s response", context)
	}

	token := values.Get("oauth_token")
	if token == "" {
		return "", "", errors.Errorf("failed to get %s from answer", context)
	}
	secret := values.Get("oauth_token_secret")
	if secret == "" {
		return "", "", errors.Errorf("failed to get %s secret from answer", context)
	}

	return token, secret, nil
}
