package export

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgyexport/pkg/config"
	"sgyexport/pkg/logger"
	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// scriptedTransport serves canned responses by exact request URL and
// records every request it sees.
type scriptedTransport struct {
	responses map[string]string
	requests  []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	s.requests = append(s.requests, url)

	body, ok := s.responses[url]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (s *scriptedTransport) count(url string) int {
	n := 0
	for _, r := range s.requests {
		if r == url {
			n++
		}
	}
	return n
}

// newTestExporter builds an exporter over a scripted HTTP transport and a
// run rooted in a temp dir with the category layout in place.
func newTestExporter(t *testing.T, responses map[string]string) (*Exporter, *storage.Run, *scriptedTransport) {
	t.Helper()

	root := t.TempDir()
	for _, category := range storage.Categories {
		require.NoError(t, os.Mkdir(filepath.Join(root, category), 0755))
	}
	run := storage.OpenRun(root)

	cfg := config.DefaultConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Retry.BaseDelay = time.Millisecond

	transport := &scriptedTransport{responses: responses}
	client := schoology.NewClient(schoology.Credentials{
		ConsumerKey:    "ckey",
		ConsumerSecret: "csecret",
	}, cfg, logger.NewTestLogger())
	client.SetHTTPClient(&http.Client{Transport: transport})

	return New(client, run, cfg, logger.NewTestLogger()), run, transport
}

func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "expected file %s", path)
	assert.Contains(t, string(content), substr)
}

func assertFileEquals(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "expected file %s", path)
	assert.Equal(t, expected, string(content))
}

func TestRunFullExport(t *testing.T) {
	base := schoology.BaseURL

	exporter, run, _ := newTestExporter(t, map[string]string{
		base + "/app-user-info": `{"api_uid": 5}`,
		base + "/users/5":       `{"name_display": "Test Student", "picture_url": "https://cdn.example.com/5.png", "school_id": 100, "building_id": 101}`,
		"https://cdn.example.com/5.png":   "selfpng",
		base + "/schools/100":             `{"title": "Test High", "picture_url": "https://cdn.example.com/school.png"}`,
		base + "/schools/101":             `{"title": "Main Building", "picture_url": "https://cdn.example.com/building.png"}`,
		"https://cdn.example.com/school.png":   "schoolpng",
		"https://cdn.example.com/building.png": "buildingpng",
		schoology.RecentFeedURL(50):            `{"update": []}`,
		schoology.MessagesURL("inbox", 50):     `{"message": []}`,
		schoology.MessagesURL("sent", 50):      `{"message": []}`,
		base + "/users/5/sections?include_past=1": `{"section": []}`,
	})

	require.NoError(t, exporter.Run(context.Background()))

	assertFileEquals(t, run.Path("users", "self"), "5")
	assertFileContains(t, run.Path("users", "5", "user_info.json"), "Test Student")
	assertFileEquals(t, run.Path("users", "5", "user_image.png"), "selfpng")
	assertFileContains(t, run.Path("school", "info.json"), "Test High")
	assertFileEquals(t, run.Path("school", "picture.png"), "schoolpng")
	assertFileContains(t, run.Path("building", "info.json"), "Main Building")
	assertFileEquals(t, run.Path("building", "picture.png"), "buildingpng")
	assertFileContains(t, run.Path("updates", "updates_0.json"), "update")
	assertFileContains(t, run.Path("messages", "messages_0.json"), "message")
	assertFileContains(t, run.Path("messages", "messages_1.json"), "message")
	assertFileContains(t, run.Path("courses", "info.json"), "section")
}

func TestRunFailsWithoutUID(t *testing.T) {
	exporter, _, _ := newTestExporter(t, map[string]string{
		schoology.BaseURL + "/app-user-info": `{"web_uid": 5}`,
	})

	err := exporter.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get uid")
}

func TestRunAbortsOnSchoolFailure(t *testing.T) {
	base := schoology.BaseURL

	exporter, _, transport := newTestExporter(t, map[string]string{
		base + "/app-user-info": `{"api_uid": 5}`,
		base + "/users/5":       `{"picture_url": "https://cdn.example.com/5.png", "school_id": 100, "building_id": 101}`,
		"https://cdn.example.com/5.png": "selfpng",
		// schools/100 missing: 404 aborts the run
	})

	err := exporter.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to request school info")

	// Nothing past the school step was attempted
	assert.Zero(t, transport.count(schoology.RecentFeedURL(50)))
}
