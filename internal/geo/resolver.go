package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrTooManyRedirects is returned when a short link does not settle.
var ErrTooManyRedirects = errors.New("too many redirects")

// Resolver expands share links by following HTTP redirects.
type Resolver struct {
	httpClient   *http.Client
	maxRedirects int
	log          *slog.Logger
}

// NewResolver creates a Resolver with the given per-request timeout.
func NewResolver(logger *slog.Logger, timeout time.Duration, maxRedirects int) *Resolver {
	return &Resolver{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxRedirects: maxRedirects,
		log:          logger.With("adapter", "geo"),
	}
}

// Resolve returns the final URL after following redirects. Responses other
// than 3xx end the chain; their URL is the result.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	current := rawURL
	for hop := 0; hop <= r.maxRedirects; hop++ {
		next, err := r.step(ctx, current)
		if err != nil {
			r.log.WarnContext(ctx, "resolve short link", slog.String("url", rawURL), slog.String("error", err.Error()))
			return "", err
		}
		if next == "" {
			if current != rawURL {
				r.log.DebugContext(ctx, "short link resolved", slog.String("from", rawURL), slog.String("to", current), slog.Int("hops", hop))
			}
			return current, nil
		}
		current = next
	}
	return "", fmt.Errorf("geo: %s: %w", rawURL, ErrTooManyRedirects)
}

// Locate resolves short links when needed and extracts coordinates.
func (r *Resolver) Locate(ctx context.Context, rawURL string) (Point, bool) {
	if p, ok := Extract(rawURL); ok {
		return p, true
	}
	if !IsShortLink(rawURL) {
		return Point{}, false
	}
	final, err := r.Resolve(ctx, rawURL)
	if err != nil {
		return Point{}, false
	}
	return Extract(final)
}

// step issues one request and returns the redirect target, or "" when the
// response is final.
func (r *Resolver) step(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("geo: create request: %w", err)
	}
	req.Header.Set("User-Agent", "cityguide-bot/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", nil
	}
	loc, err := resp.Location()
	if err != nil {
		return "", nil
	}
	return loc.String(), nil
}
