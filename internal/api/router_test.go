package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beamlak/srts/internal/client"
	"github.com/beamlak/srts/internal/config"
	"github.com/beamlak/srts/internal/models"
	"github.com/beamlak/srts/internal/services"
	"github.com/beamlak/srts/internal/storage"
	"github.com/beamlak/srts/internal/testutil"
)

var testClock = func() time.Time { return time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC) }

type testEnv struct {
	router http.Handler
	store  storage.HistoryStore
	index  *httptest.Server
}

// newTestEnv wires the real services against an in-process index server and a temporary SQLite database.
func newTestEnv(t *testing.T, indexHandler http.HandlerFunc) *testEnv {
	t.Helper()

	index := httptest.NewServer(indexHandler)
	t.Cleanup(index.Close)

	cfg := &config.Config{ClientTimeout: "5s"}
	cfg.Index.BaseURL = index.URL
	cfg.Index.DownloadBaseURL = index.URL + "/download"
	c := client.NewClient(cfg)

	store, err := storage.OpenHistoryStore("sqlite3", filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	router := NewRouter(Dependencies{
		Search:  services.NewSearchGateway(c, cfg.Index.DownloadBaseURL, testClock),
		History: services.NewHistoryService(store, testClock),
		Relay:   services.NewSubtitleRelay(c, nil, services.RelayOptions{}),
		Health:  store,
		UI:      http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ui")) }),
	}, cfg)

	return &testEnv{router: router, store: store, index: index}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func indexFixture(t *testing.T) http.HandlerFunc {
	body := testutil.IndexSearchJSON(t,
		testutil.IndexItemOptions{ID: "1", Title: "Dune", Year: 2021, Language: "English", FileID: 77, FileName: "Dune.2021.srt"},
	)
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search/"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		case r.URL.Path == "/download/77":
			_, _ = w.Write([]byte(testutil.SampleSRT))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	for _, target := range []string{"/api/subtitles/search?query=", "/api/subtitles/search"} {
		rec := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.JSONEq(t, `{"error":"Query parameter is required"}`, rec.Body.String(), target)
	}
}

func TestSearch_Live(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodGet, "/api/subtitles/search?query=Dune", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var results []models.SubtitleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, env.index.URL+"/download/77", results[0].DownloadURL)
	assert.Equal(t, "Dune.2021.srt", results[0].FileName)
}

func TestSearch_FallbackOnUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	rec := env.do(t, http.MethodGet, "/api/subtitles/search?query=Arrival", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var results []models.SubtitleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "mock-1", results[0].ID)
	assert.Equal(t, "Arrival", results[0].Title)
	require.NotNil(t, results[0].Year)
	assert.Equal(t, 2026, *results[0].Year)
	assert.Equal(t, "Spanish", results[1].Language)
}

func TestHistory_AppendWithStringYear(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodPost, "/api/subtitles/history",
		`{"title":"Dune","year":"2021","language":"English","downloadUrl":"https://x/y.srt","fileName":"Dune.srt"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.HistoryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Year)
	assert.Equal(t, 2021, *created.Year)
	assert.True(t, created.CreatedAt.Equal(testClock()))

	stored, err := env.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].Year)
	assert.Equal(t, 2021, *stored[0].Year)
}

func TestHistory_AppendMissingTitle(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodPost, "/api/subtitles/history",
		`{"language":"English","downloadUrl":"https://x/y.srt","fileName":"Dune.srt"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())

	stored, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestHistory_AppendMalformedBody(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodPost, "/api/subtitles/history", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
}

func TestHistory_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodGet, "/api/subtitles/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, title := range []string{"First", "Second"} {
		body := `{"title":"` + title + `","language":"English","downloadUrl":"https://x/y.srt","fileName":"f.srt"}`
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/subtitles/history", body).Code)
	}

	rec = env.do(t, http.MethodGet, "/api/subtitles/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.HistoryRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Second", records[0].Title)
	assert.Equal(t, "First", records[1].Title)
	assert.Nil(t, records[0].Year)
}

func TestHistory_StoreFailure(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))
	require.NoError(t, env.store.Close())

	rec := env.do(t, http.MethodGet, "/api/subtitles/history", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch history"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/subtitles/history",
		`{"title":"Dune","language":"English","downloadUrl":"https://x/y.srt","fileName":"Dune.srt"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to save to history"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	target := "/api/subtitles/download?url=" + url.QueryEscape(env.index.URL+"/download/77") + "&fileName=" + url.QueryEscape("Dune 2021.srt")
	rec := env.do(t, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testutil.SampleSRT, rec.Body.String())
	assert.Equal(t, "application/x-subrip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Dune 2021.srt"`, rec.Header().Get("Content-Disposition"))
}

func TestDownload_Errors(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{name: "missing url", target: "/api/subtitles/download", status: http.StatusBadRequest, body: `{"error":"URL parameter is required"}`},
		{name: "bad scheme", target: "/api/subtitles/download?url=" + url.QueryEscape("ftp://x/y.srt"), status: http.StatusBadRequest, body: `{"error":"Invalid download URL"}`},
		{name: "not found", target: "/api/subtitles/download?url=" + url.QueryEscape(env.index.URL+"/download/404"), status: http.StatusNotFound, body: `{"error":"Subtitle not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUIMounted(t *testing.T) {
	env := newTestEnv(t, indexFixture(t))

	rec := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ui", rec.Body.String())
}

type failingSearch struct{}

func (failingSearch) Search(context.Context, string) ([]models.SubtitleResult, error) {
	return nil, errors.New("boom")
}

func TestSearch_UnexpectedError(t *testing.T) {
	router := NewRouter(Dependencies{Search: failingSearch{}}, &config.Config{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subtitles/search?query=x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
