// Package mediastore keeps uploaded photos on local disk and serves them
// over HTTP.
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/cityguide-bot/internal/adapter/filestore"
	"github.com/heartmarshall/cityguide-bot/internal/config"
)

// RoutePrefix is where the HTTP server mounts Serve.
const RoutePrefix = "/media/"

// ErrBadName is returned for file names that could escape the media dir.
var ErrBadName = errors.New("invalid media file name")

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*(\.[A-Za-z0-9]{1,8})?$`)

// Store writes files into a flat directory.
type Store struct {
	dir       string
	publicURL string
	maxBytes  int64
	log       *slog.Logger
}

// New creates a store for cfg.
func New(cfg config.MediaConfig, log *slog.Logger) *Store {
	return &Store{
		dir:       cfg.Dir,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		maxBytes:  cfg.MaxBytes,
		log:       log.With("adapter", "mediastore"),
	}
}

// Upload stores data under name and returns its public URL.
func (s *Store) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("mediastore: %w: %q", ErrBadName, name)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("mediastore: %s is %d bytes, limit %d", name, len(data), s.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := filestore.WriteAtomic(filepath.Join(s.dir, name), data); err != nil {
		return "", fmt.Errorf("mediastore: %w", err)
	}
	s.log.DebugContext(ctx, "media stored", slog.String("name", name), slog.Int("bytes", len(data)))
	return s.publicURL + RoutePrefix + name, nil
}

// Serve returns the file named by the {name} route parameter.
func (s *Store) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validName(name) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, filepath.Join(s.dir, name))
}

func validName(name string) bool {
	return nameRe.MatchString(name) && !filestore.IsTempFile(name)
}
