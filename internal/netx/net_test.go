package netx

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadPresignedURL(t *testing.T) {
	body := []byte(`[{"id":1,"action":"login"}]`)

	t.Run("success 200 OK", func(t *testing.T) {
		var gotMethod, gotQuery string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotQuery = r.URL.RawQuery
			_, _ = w.Write(body)
		}))
		defer ts.Close()

		var buf bytes.Buffer
		n, err := DownloadPresignedURL(context.Background(), ts.URL+"/audit/a.json?X-Amz-Signature=abc", &buf)
		require.NoError(t, err)

		assert.Equal(t, http.MethodGet, gotMethod)
		assert.Equal(t, "X-Amz-Signature=abc", gotQuery)
		assert.Equal(t, int64(len(body)), n)
		assert.Equal(t, body, buf.Bytes())
	})

	t.Run("non-200 -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<Error>expired</Error>"))
		}))
		defer ts.Close()

		_, err := DownloadPresignedURL(context.Background(), ts.URL, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download failed: 403")
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		_, err := DownloadPresignedURL(context.Background(), ts.URL, &bytes.Buffer{})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "download failed")
	})
}

func TestDownloadToFile(t *testing.T) {
	dir := t.TempDir()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))
	defer ok.Close()

	path := filepath.Join(dir, "audit.json")
	n, err := DownloadToFile(context.Background(), ok.URL, path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	_, err = DownloadToFile(context.Background(), bad.URL, filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the first download remains")
}
