package schoology

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerWalksAllPages(t *testing.T) {
	const pageCount = 3
	var requested []string

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		url := req.URL.String()
		requested = append(requested, url)

		page := len(requested)
		if page < pageCount {
			body := fmt.Sprintf(`{"page": %d, "links": {"next": "%s/feed?page=%d"}}`, page, BaseURL, page+1)
			return newResponse(req, http.StatusOK, body), nil
		}
		return newResponse(req, http.StatusOK, fmt.Sprintf(`{"page": %d, "links": {"self": "x"}}`, page)), nil
	})

	pager := NewPager(client, BaseURL+"/feed?page=1")

	var pages []Node
	for pager.HasNext() {
		page, err := pager.Next(context.Background())
		require.NoError(t, err)
		pages = append(pages, page)
	}

	require.Len(t, pages, pageCount)
	// The next URL is used exactly as the server supplied it
	assert.Equal(t, []string{
		BaseURL + "/feed?page=1",
		BaseURL + "/feed?page=2",
		BaseURL + "/feed?page=3",
	}, requested)
}

func TestPagerSinglePage(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, `{"update": []}`), nil
	})

	pager := NewPager(client, BaseURL+"/feed")
	require.True(t, pager.HasNext())

	_, err := pager.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, pager.HasNext())
}

func TestPagerStopsOnError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusNotFound, ""), nil
	})

	pager := NewPager(client, BaseURL+"/feed")

	_, err := pager.Next(context.Background())
	require.Error(t, err)
	assert.False(t, pager.HasNext())
}
