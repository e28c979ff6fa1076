package scrapbox

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// importTestServer fakes the CSRF and import endpoints, capturing the
// import request for inspection.
type importTestServer struct {
	*httptest.Server

	csrfCalls   int
	importCalls int

	gotToken    string
	gotFileName string
	gotPayload  importPayload
	gotName     string

	importStatus int
}

func newImportTestServer(t *testing.T) *importTestServer {
	t.Helper()

	its := &importTestServer{importStatus: http.StatusOK}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/users/me", func(w http.ResponseWriter, _ *http.Request) {
		its.csrfCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u1","name":"tester","csrfToken":"csrf-123"}`))
	})

	mux.HandleFunc("/api/page-data/import/", func(w http.ResponseWriter, r *http.Request) {
		its.importCalls++
		its.gotToken = r.Header.Get(csrfHeader)

		require.NoError(t, r.ParseMultipartForm(1<<20))

		its.gotName = r.FormValue(importNameField)

		file, header, err := r.FormFile(importFileField)
		require.NoError(t, err)
		defer file.Close()

		its.gotFileName = header.Filename

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &its.gotPayload))

		w.WriteHeader(its.importStatus)
	})

	its.Server = httptest.NewServer(mux)
	t.Cleanup(its.Close)

	return its
}

func TestClient_Import(t *testing.T) {
	t.Parallel()

	its := newImportTestServer(t)
	c, _ := newTestClient(t, its.Server)

	pages := []Page{
		{
			Title:   "First page",
			Updated: 1745842022,
			Lines: []Line{
				{Text: "First page"},
				{Text: "body line", Created: 1745842010, Updated: 1745842022},
			},
		},
	}

	require.NoError(t, c.Import(context.Background(), "dest-project", pages))

	assert.Equal(t, 1, its.csrfCalls)
	assert.Equal(t, 1, its.importCalls)
	assert.Equal(t, "csrf-123", its.gotToken)
	assert.Equal(t, importFileName, its.gotFileName)
	assert.Equal(t, importNameValue, its.gotName)

	require.Len(t, its.gotPayload.Pages, 1)
	got := its.gotPayload.Pages[0]
	assert.Equal(t, "First page", got.Title)

	// Line order is the content; it must survive the upload verbatim.
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "First page", got.Lines[0].Text)
	assert.Equal(t, "body line", got.Lines[1].Text)
	assert.Equal(t, int64(1745842022), got.Lines[1].Updated)
}

func TestClient_Import_Forbidden(t *testing.T) {
	t.Parallel()

	its := newImportTestServer(t)
	its.importStatus = http.StatusForbidden

	c, _ := newTestClient(t, its.Server)

	err := c.Import(context.Background(), "dest-project", []Page{{Title: "x"}})
	require.Error(t, err)

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Equal(t, "dest-project", importErr.Project)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClient_Import_MissingCSRFToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/users/me" {
			w.Write([]byte(`{"id":"u1","name":"tester"}`))
			return
		}

		t.Errorf("unexpected request to %s — import must not proceed without a CSRF token", r.URL.Path)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	err := c.Import(context.Background(), "dest-project", []Page{{Title: "x"}})
	require.Error(t, err)

	var importErr *ImportError
	assert.ErrorAs(t, err, &importErr)
	assert.Contains(t, err.Error(), "CSRF")
}

func TestBuildImportBody_EncodesPagesWrapper(t *testing.T) {
	t.Parallel()

	body, contentType, err := buildImportBody([]Page{{Title: "a", Updated: 1}})
	require.NoError(t, err)

	assert.Contains(t, contentType, "multipart/form-data; boundary=")
	assert.Contains(t, string(body), `"pages":[{"title":"a","updated":1,"lines":null}]`)
}
