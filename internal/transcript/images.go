package transcript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".avif": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".webm": true, ".mov": true, ".m4v": true, ".mkv": true, ".avi": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true, ".flac": true, ".aac": true,
}

func stripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return strings.ToLower(u)
}

func ext(u string) string {
	return path.Ext(stripQuery(u))
}

// IsImage reports whether the URL or filename looks like an image by
// extension.
func IsImage(u string) bool {
	return imageExts[ext(u)]
}

// IsVideo reports whether the URL looks like a video by extension.
func IsVideo(u string) bool {
	return videoExts[ext(u)]
}

// IsAudio reports whether the URL looks like an audio file by extension.
func IsAudio(u string) bool {
	return audioExts[ext(u)]
}

// SafeImageExt returns the image extension of the URL or name, or
// ".png" when it is not a recognized image extension.
func SafeImageExt(u string) string {
	if e := ext(u); imageExts[e] {
		return e
	}
	return ".png"
}

// GuessMIME maps a URL extension to a media type.
func GuessMIME(u, fallback string) string {
	switch ext(u) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return fallback
	}
}

// ImageFetcher retrieves remote image bytes. Injectable so the
// renderer and collector stay deterministic under test.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over plain HTTP with a bounded timeout.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher builds the default fetcher.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch downloads the URL, failing on any non-200 status.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
