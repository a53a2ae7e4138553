package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/texttopdf/pkg/texttopdf"
	memorystorage "github.com/tendant/texttopdf/pkg/texttopdf/storage/memory"
)

func newTestServer(t *testing.T, token string) (*httptest.Server, *memorystorage.Backend) {
	t.Helper()
	buckets := memorystorage.NewBuckets(false, "docs")
	docs := buckets.Create("docs")
	require.NoError(t, docs.Upload(context.Background(), "notes.txt", strings.NewReader("hello\nworld\n")))

	converter, err := texttopdf.New(
		texttopdf.WithBuckets(buckets),
		texttopdf.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/", NewEventHandler(converter, token).Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, docs
}

func postEvent(t *testing.T, url, token, body string) (*http.Response, texttopdf.Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/events", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out texttopdf.Response
	if resp.StatusCode != http.StatusUnauthorized {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestEventHandler(t *testing.T) {
	server, docs := newTestServer(t, "")

	t.Run("Health", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Converts", func(t *testing.T) {
		body := `{"EventName":"s3:ObjectCreated:Put","Records":[{"s3":{"bucket":{"name":"docs"},"object":{"key":"notes.txt"}}}]}`
		resp, out := postEvent(t, server.URL, "", body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, texttopdf.NewSuccessResponse(), out)

		meta, err := docs.GetObjectMeta(context.Background(), "notes.pdf")
		require.NoError(t, err)
		assert.Equal(t, texttopdf.PDFMimeType, meta.ContentType)
	})

	t.Run("MalformedEvent", func(t *testing.T) {
		resp, out := postEvent(t, server.URL, "", `{"Records":[]}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, http.StatusInternalServerError, out.StatusCode)
		assert.Contains(t, out.Body, "malformed event")
	})

	t.Run("MissingObject", func(t *testing.T) {
		body := `{"Records":[{"s3":{"bucket":{"name":"docs"},"object":{"key":"nope.txt"}}}]}`
		resp, out := postEvent(t, server.URL, "", body)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, out.Body, "retrieval failed")
	})

	t.Run("TooLarge", func(t *testing.T) {
		body := `{"pad":"` + strings.Repeat("x", MaxEventSize) + `"}`
		resp, _ := postEvent(t, server.URL, "", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})
}

func TestEventHandler_Token(t *testing.T) {
	server, _ := newTestServer(t, "s3cret")
	body := `{"Records":[{"s3":{"bucket":{"name":"docs"},"object":{"key":"notes.txt"}}}]}`

	resp, _ := postEvent(t, server.URL, "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postEvent(t, server.URL, "wrong", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out := postEvent(t, server.URL, "s3cret", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, texttopdf.SuccessBody, out.Body)

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}
