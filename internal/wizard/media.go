package wizard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Fetcher downloads a picture held by the chat transport.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Uploader stores picture bytes and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Media copies chat pictures into media storage.
type Media struct {
	fetcher  Fetcher
	uploader Uploader
	timeout  time.Duration
	log      *slog.Logger
}

// NewMedia creates a Media. A non-positive timeout means no limit beyond
// the caller's context.
func NewMedia(log *slog.Logger, fetcher Fetcher, uploader Uploader, timeout time.Duration) *Media {
	return &Media{
		fetcher:  fetcher,
		uploader: uploader,
		timeout:  timeout,
		log:      log.With("service", "media"),
	}
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Ingest copies the picture and returns its URL and stored file name.
// Failures are logged and yield empty strings; the caller keeps the file id.
func (m *Media) Ingest(ctx context.Context, fileID string) (url, fileName string) {
	if m == nil {
		return "", ""
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	data, err := m.fetcher.Fetch(ctx, fileID)
	if err != nil {
		m.log.WarnContext(ctx, "photo fetch failed", slog.String("file_id", fileID), slog.String("error", err.Error()))
		return "", ""
	}

	ext, ok := extensions[http.DetectContentType(data)]
	if !ok {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	url, err = m.uploader.Upload(ctx, name, data)
	if err != nil {
		m.log.WarnContext(ctx, "photo upload failed", slog.String("file_id", fileID), slog.String("error", err.Error()))
		return "", ""
	}
	return url, name
}
