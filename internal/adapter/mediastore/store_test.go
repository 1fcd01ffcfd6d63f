package mediastore

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/cityguide-bot/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(config.MediaConfig{
		Dir:       t.TempDir(),
		PublicURL: "https://bot.example/",
		MaxBytes:  16,
	}, slog.New(slog.DiscardHandler))
}

func TestUpload(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	url, err := s.Upload(context.Background(), "3f2a.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example/media/3f2a.jpg", url)

	data, err := os.ReadFile(filepath.Join(s.dir, "3f2a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestUpload_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data string
	}{
		{"traversal", "../etc.jpg", "x"},
		{"nested", "a/b.jpg", "x"},
		{"hidden", ".jpg", "x"},
		{"temp marker", "a.jpg.tmp.123", "x"},
		{"too large", "big.jpg", "0123456789abcdefg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestStore(t)

			_, err := s.Upload(context.Background(), tt.file, []byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestServe(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := s.Upload(context.Background(), "p1.png", []byte("png"))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/media/{name}", s.Serve)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/media/p1.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png", string(body))

	for _, path := range []string{"/media/missing.png", "/media/..%2Fsecret"} {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}
