package preview_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/preview"
)

func previewDocument() *config.Document {
	return &config.Document{
		Views: []config.View{
			{
				Title: "Home",
				Layout: &config.Layout{
					TemplateAreas: `"main sidebar"`,
					CustomCSS:     "#root { color: {{ states('sensor.theme') }}; }",
				},
				Sections: []config.Section{
					{Type: "grid", Title: "Main", GridArea: "main", Cards: []any{}},
				},
			},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(preview.NewServer(previewDocument(), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getBody(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexServesHTMLShell(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	resp, body := getBody(t, srv.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `href="/css"`)
}

func TestCSSEndpointRendersStylesheet(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	resp, body := getBody(t, srv.URL+"/css")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.Contains(t, body, "--layout-margin: 0px 4px 0px 4px")
	// No snapshot posted yet: the template stays literal.
	assert.Contains(t, body, "{{ states('sensor.theme') }}")
}

func TestStateEndpointDrivesCSSEvaluation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/state", "application/json",
		strings.NewReader(`{"sensor.theme": {"state": "tomato"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := getBody(t, srv.URL+"/css")
	assert.Contains(t, body, "color: tomato")
	assert.NotContains(t, body, "states('sensor.theme')")
}

func TestStateEndpointRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/state", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAreasEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	resp, body := getBody(t, srv.URL+"/areas")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Areas []string `json:"areas"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, []string{"main", "sidebar"}, payload.Areas)
}

func TestSectionsEndpointReturnsReconciledList(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	resp, body := getBody(t, srv.URL+"/sections")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Sections []config.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Len(t, payload.Sections, 2)
	assert.Equal(t, "main", payload.Sections[0].GridArea)
	assert.Equal(t, "sidebar", payload.Sections[1].GridArea)
	assert.Equal(t, "Sidebar", payload.Sections[1].Title)
}

func TestViewIndexOutOfRange(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	for _, path := range []string{"/css?view=5", "/areas?view=-1", "/sections?view=bogus"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}
