package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `{"eventid":"ptg2023"}`

func TestFetch_CachesWithETag(t *testing.T) {
	var hits, conditional atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "ptg", URL: srv.URL + "/ptg.json"}

	first, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, http.StatusOK, first.Status)
	assert.Equal(t, body, string(first.Body))

	second, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, http.StatusNotModified, second.Status)
	assert.Equal(t, body, string(second.Body))

	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, int32(1), conditional.Load())
}

func TestFetch_LastModified(t *testing.T) {
	const stamp = "Mon, 12 Jun 2023 09:00:00 GMT"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Modified-Since") == stamp {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", stamp)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{URL: srv.URL}
	_, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	res, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

func TestFetch_NotModifiedWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	_, err := NewFetcher(t.TempDir()).Fetch(context.Background(), Source{URL: srv.URL})
	assert.ErrorIs(t, err, ErrNotModifiedWithoutCache)
}

func TestFetch_ServerErrorFallsBackToCache(t *testing.T) {
	var broken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if broken.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{URL: srv.URL}
	_, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)

	broken.Store(true)
	res, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Equal(t, body, string(res.Body))
}

func TestFetch_ServerErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(t.TempDir()).Fetch(context.Background(), Source{URL: srv.URL + "/x?token=secret"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestFetch_NetworkErrorFallsBackToCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	f := NewFetcher(t.TempDir())
	src := Source{URL: srv.URL}
	_, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	srv.Close()

	res, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

func TestFetch_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptg.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	f := NewFetcher(t.TempDir())
	for _, u := range []string{path, "file://" + path} {
		res, err := f.Fetch(context.Background(), Source{URL: u})
		require.NoError(t, err, u)
		assert.Equal(t, body, string(res.Body))
		assert.False(t, res.FromCache)
		assert.Zero(t, res.Status)
	}

	_, err := f.Fetch(context.Background(), Source{URL: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestFetch_EmptyURL(t *testing.T) {
	_, err := NewFetcher("").Fetch(context.Background(), Source{})
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/path/ptg.json?token=abcd": "https://example.com/...(redacted)",
		"http://127.0.0.1:8080":                        "http://127.0.0.1:8080/...(redacted)",
		"https://example.com?token=abcd":               "https://example.com/...(redacted)",
		"/srv/ptg.json":                                "file://...(redacted)",
	}
	for in, want := range tests {
		assert.Equal(t, want, RedactURL(in), in)
	}
}

func TestSourceRemote(t *testing.T) {
	assert.True(t, Source{URL: "HTTPS://example.com"}.Remote())
	assert.False(t, Source{URL: "file:///tmp/x"}.Remote())
	assert.False(t, Source{URL: "ptg.json"}.Remote())
}
