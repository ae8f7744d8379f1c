// Package publisher uploads archive documents and mirrored images to
// the remote file store and shapes their public URLs.
package publisher

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Publisher copies a local file to the remote store. A failed upload
// returns an error; callers treat it as "archival unavailable" and
// proceed without a link. Single attempt, no retry.
type Publisher interface {
	Upload(ctx context.Context, localPath, remoteName string) (string, error)
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeName reduces a channel name to letters, digits, underscore
// and dash.
func SanitizeName(name string) string {
	out := unsafeNameRe.ReplaceAllString(name, "_")
	if out == "" {
		return "transcript"
	}
	return out
}

// CleanFilename strips any directory components from a remote name.
func CleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

// ArchiveName builds the canonical archive document name for a
// channel: "{sanitized-channel-name}_{yyyy-mm-dd_HH-mm-ss}.html".
func ArchiveName(channelName string, at time.Time) string {
	return SanitizeName(channelName) + "_" + at.Format("2006-01-02_15-04-05") + ".html"
}
