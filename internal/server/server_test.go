package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtsim/internal/options"
	"courtsim/internal/progress"
	"courtsim/internal/store"
)

// startTestServer runs a server on an ephemeral port against a fresh store.
func startTestServer(t *testing.T, cfg Config) string {
	t.Helper()

	if cfg.Store == nil {
		st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		cfg.Store = st
	}
	cfg.Port = 0

	srv, err := NewServer(&cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()
	t.Cleanup(func() {
		require.NoError(t, srv.Stop())
		cancel()
		require.NoError(t, <-errCh)
	})

	require.Eventually(t, func() bool {
		return srv.ListenAddr() != ""
	}, 5*time.Second, 5*time.Millisecond)

	return "http://" + srv.ListenAddr()
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func TestServer_Health(t *testing.T) {
	base := startTestServer(t, Config{})

	resp, body := doJSON(t, http.MethodGet, base+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestServer_Options(t *testing.T) {
	base := startTestServer(t, Config{})

	resp, body := doJSON(t, http.MethodGet, base+"/api/options", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload options.Payload
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, options.SourceLocal, payload.Source)
	require.Len(t, payload.Options, 3)
	assert.Equal(t, "opt-acc", payload.Options[0].ID)
	assert.Equal(t, 24000, payload.Options[0].Bias.AlertCadenceMs)
}

func TestServer_ProgressCRUD(t *testing.T) {
	base := startTestServer(t, Config{})

	resp, body := doJSON(t, http.MethodPost, base+"/api/progress",
		`{"verdictCategory":"accessibility","notes":"lost on alt text"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created progress.Record
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "accessibility", created.VerdictCategory)

	resp, body = doJSON(t, http.MethodGet, base+"/api/progress/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got progress.Record
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created.ID, got.ID)

	resp, body = doJSON(t, http.MethodPut, base+"/api/progress/"+created.ID,
		`{"verdictCategory":"accessibility","notes":"appealed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated progress.Record
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "appealed", updated.Notes)

	resp, body = doJSON(t, http.MethodGet, base+"/api/progress", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []progress.Record
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)

	resp, _ = doJSON(t, http.MethodDelete, base+"/api/progress/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/api/progress/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_MalformedBodyMeansEmptyObject(t *testing.T) {
	base := startTestServer(t, Config{})

	// Garbage bodies create an empty record rather than erroring.
	resp, body := doJSON(t, http.MethodPost, base+"/api/progress", `{not json at all`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created progress.Record
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.VerdictCategory)
}

func TestServer_EmptyListsAreArrays(t *testing.T) {
	base := startTestServer(t, Config{})

	_, body := doJSON(t, http.MethodGet, base+"/api/progress", "")
	assert.JSONEq(t, `[]`, string(body))

	_, body = doJSON(t, http.MethodGet, base+"/api/output", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestServer_OutputCRUD(t *testing.T) {
	base := startTestServer(t, Config{})

	resp, body := doJSON(t, http.MethodPost, base+"/api/output",
		`{"html":"<img id=\"img1\" alt=\"done\">","summaryJson":"{\"won\":true}"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created store.Output
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	resp, body = doJSON(t, http.MethodGet, base+"/api/output/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got store.Output
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got.HTML, "img1")

	resp, _ = doJSON(t, http.MethodDelete, base+"/api/output/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/api/output/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_UnknownIDs(t *testing.T) {
	base := startTestServer(t, Config{})

	resp, _ := doJSON(t, http.MethodGet, base+"/api/progress/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, base+"/api/output/nope", `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, base+"/api/output/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_WriteRateLimit(t *testing.T) {
	base := startTestServer(t, Config{
		RateLimit: RateLimitConfig{MaxRequests: 2, Window: time.Minute},
	})

	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, http.MethodPost, base+"/api/progress", `{}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode, "request %d", i)
	}

	resp, _ := doJSON(t, http.MethodPost, base+"/api/progress", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Reads are not limited.
	resp, _ = doJSON(t, http.MethodGet, base+"/api/progress", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RequiresStore(t *testing.T) {
	_, err := NewServer(&Config{})
	require.Error(t, err)

	_, err = NewServer(nil)
	require.Error(t, err)
}

func TestServer_DoubleStart(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	srv, err := NewServer(&Config{Port: 0, Store: st})
	require.NoError(t, err)
	assert.Equal(t, 0, srv.Port())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(context.Background()) }()
	require.Eventually(t, func() bool { return srv.ListenAddr() != "" },
		5*time.Second, 5*time.Millisecond)

	err = srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")

	require.NoError(t, srv.Stop())
	require.NoError(t, <-errCh)
	// Stop after stop is a no-op.
	require.NoError(t, srv.Stop())
}
